package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

const tableMembers = "members"

var memberColumns = []interface{}{"id", "full_name", "email", "membership_date",
	"membership_status", "user_id", "created_at", "updated_at"}

func memberRecord(m *models.Member) goqu.Record {
	return goqu.Record{
		"full_name":         m.FullName,
		"email":             m.Email,
		"membership_date":   m.MembershipDate,
		"membership_status": m.MembershipStatus,
		"user_id":           m.UserID,
		"updated_at":        m.UpdatedAt,
	}
}

func (s *Store) CreateMember(ctx context.Context, member *models.Member) error {
	now := s.now()
	member.ID = newID()
	member.CreatedAt = now
	member.UpdatedAt = now

	rec := memberRecord(member)
	rec["id"] = member.ID
	rec["created_at"] = member.CreatedAt

	if _, err := exec(ctx, s.pool, builder.Insert(tableMembers).Rows(rec), store.ErrNotFound); err != nil {
		return fmt.Errorf("błąd zapisywania członka: %w", err)
	}
	return nil
}

func (s *Store) GetMember(ctx context.Context, id string) (*models.Member, error) {
	return selectOne[models.Member](ctx, s.pool,
		builder.From(tableMembers).Select(memberColumns...).Where(goqu.C("id").Eq(id)))
}

func (s *Store) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return selectOne[models.Member](ctx, s.pool,
		builder.From(tableMembers).Select(memberColumns...).
			Where(goqu.Func("lower", goqu.C("email")).Eq(strings.ToLower(email))).
			Limit(1))
}

func (s *Store) UpdateMember(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = s.now()

	ds := builder.Update(tableMembers).
		Set(memberRecord(member)).
		Where(goqu.C("id").Eq(member.ID)).
		Returning("created_at")

	rows, err := query(ctx, s.pool, ds)
	if err != nil {
		return fmt.Errorf("błąd aktualizacji członka: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("błąd aktualizacji członka: %w", mapError(err, store.ErrNotFound))
		}
		return store.ErrNotFound
	}
	return rows.Scan(&member.CreatedAt)
}

// DeleteMember usuwa członka; wypożyczenia i rezerwacje usuwa ON DELETE CASCADE
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	n, err := exec(ctx, s.pool, builder.Delete(tableMembers).Where(goqu.C("id").Eq(id)), store.ErrReferenced)
	if err != nil {
		return fmt.Errorf("błąd usuwania członka: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListMembers(ctx context.Context, page models.PageRequest) ([]*models.Member, int, error) {
	page = page.Normalize()
	base := builder.From(tableMembers)

	total, err := count(ctx, s.pool, base)
	if err != nil {
		return nil, 0, fmt.Errorf("błąd liczenia członków: %w", err)
	}
	members, err := selectAll[models.Member](ctx, s.pool, base.Select(memberColumns...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Offset(uint(page.Offset())).
		Limit(uint(page.PerPage)))
	if err != nil {
		return nil, 0, fmt.Errorf("błąd pobierania członków: %w", err)
	}
	return members, total, nil
}
