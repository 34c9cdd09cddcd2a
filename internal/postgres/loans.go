package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

const (
	tableLoans        = "loans"
	tableReservations = "reservations"
)

var (
	loanColumns = []interface{}{"id", "issued_date", "due_date", "return_date", "is_returned",
		"fine_amount", "member_id", "book_id", "created_at", "updated_at"}
	reservationColumns = []interface{}{"id", "reservation_date", "notification_sent",
		"member_id", "book_id", "created_at", "updated_at"}
)

func loanRecord(l *models.Loan) goqu.Record {
	rec := goqu.Record{
		"issued_date": l.IssuedDate,
		"due_date":    l.DueDate,
		"return_date": nil,
		"is_returned": l.IsReturned,
		"fine_amount": l.FineAmount.StringFixed(2),
		"member_id":   l.MemberID,
		"book_id":     l.BookID,
		"updated_at":  l.UpdatedAt,
	}
	if l.ReturnDate != nil {
		rec["return_date"] = *l.ReturnDate
	}
	return rec
}

// CreateLoan zapisuje wypożyczenie; brak członka lub książki zgłasza klucz obcy
func (s *Store) CreateLoan(ctx context.Context, loan *models.Loan) error {
	now := s.now()
	loan.ID = newID()
	loan.CreatedAt = now
	loan.UpdatedAt = now

	rec := loanRecord(loan)
	rec["id"] = loan.ID
	rec["created_at"] = loan.CreatedAt

	if _, err := exec(ctx, s.pool, builder.Insert(tableLoans).Rows(rec), store.ErrNotFound); err != nil {
		return fmt.Errorf("błąd zapisywania wypożyczenia: %w", err)
	}
	return nil
}

func (s *Store) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	return selectOne[models.Loan](ctx, s.pool,
		builder.From(tableLoans).Select(loanColumns...).Where(goqu.C("id").Eq(id)))
}

func (s *Store) ListLoans(ctx context.Context) ([]*models.Loan, error) {
	loans, err := selectAll[models.Loan](ctx, s.pool,
		builder.From(tableLoans).Select(loanColumns...).Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()))
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania wypożyczeń: %w", err)
	}
	return loans, nil
}

// UpdateLoan blokuje wiersz (SELECT ... FOR UPDATE) na czas wywołania fn.
// Drugi równoległy zwrot czeka na blokadę i widzi już zamknięte wypożyczenie.
func (s *Store) UpdateLoan(ctx context.Context, id string, fn store.LoanMutator) (*models.Loan, error) {
	var updated *models.Loan

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		loan, err := selectOne[models.Loan](ctx, tx, builder.From(tableLoans).
			Select(loanColumns...).
			Where(goqu.C("id").Eq(id)).
			ForUpdate(exp.Wait))
		if err != nil {
			return err
		}

		if err := fn(loan); err != nil {
			return err
		}

		loan.ID = id
		loan.UpdatedAt = s.now()
		ds := builder.Update(tableLoans).Set(loanRecord(loan)).Where(goqu.C("id").Eq(id))
		if _, err := exec(ctx, tx, ds, store.ErrNotFound); err != nil {
			return fmt.Errorf("błąd aktualizacji wypożyczenia: %w", err)
		}
		updated = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) DeleteLoan(ctx context.Context, id string) error {
	n, err := exec(ctx, s.pool, builder.Delete(tableLoans).Where(goqu.C("id").Eq(id)), store.ErrReferenced)
	if err != nil {
		return fmt.Errorf("błąd usuwania wypożyczenia: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- rezerwacje ---

func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	now := s.now()
	r.ID = newID()
	r.CreatedAt = now
	r.UpdatedAt = now

	ds := builder.Insert(tableReservations).Rows(goqu.Record{
		"id":                r.ID,
		"reservation_date":  r.ReservationDate,
		"notification_sent": r.NotificationSent,
		"member_id":         r.MemberID,
		"book_id":           r.BookID,
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	})
	if _, err := exec(ctx, s.pool, ds, store.ErrNotFound); err != nil {
		return fmt.Errorf("błąd zapisywania rezerwacji: %w", err)
	}
	return nil
}

func (s *Store) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	return selectOne[models.Reservation](ctx, s.pool,
		builder.From(tableReservations).Select(reservationColumns...).Where(goqu.C("id").Eq(id)))
}

func (s *Store) ListReservations(ctx context.Context) ([]*models.Reservation, error) {
	reservations, err := selectAll[models.Reservation](ctx, s.pool,
		builder.From(tableReservations).Select(reservationColumns...).Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()))
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania rezerwacji: %w", err)
	}
	return reservations, nil
}

func (s *Store) UpdateReservation(ctx context.Context, id string, fn store.ReservationMutator) (*models.Reservation, error) {
	var updated *models.Reservation

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		r, err := selectOne[models.Reservation](ctx, tx, builder.From(tableReservations).
			Select(reservationColumns...).
			Where(goqu.C("id").Eq(id)).
			ForUpdate(exp.Wait))
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}

		r.ID = id
		r.UpdatedAt = s.now()
		ds := builder.Update(tableReservations).Set(goqu.Record{
			"reservation_date":  r.ReservationDate,
			"notification_sent": r.NotificationSent,
			"updated_at":        r.UpdatedAt,
		}).Where(goqu.C("id").Eq(id))
		if _, err := exec(ctx, tx, ds, store.ErrNotFound); err != nil {
			return fmt.Errorf("błąd aktualizacji rezerwacji: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
