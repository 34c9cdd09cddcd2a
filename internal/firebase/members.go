package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// memberDoc to postać członka biblioteki w Firestore
type memberDoc struct {
	FullName         string    `firestore:"full_name"`
	Email            string    `firestore:"email"`
	EmailKey         string    `firestore:"email_key"`
	MembershipDate   time.Time `firestore:"membership_date"`
	MembershipStatus string    `firestore:"membership_status"`
	UserID           string    `firestore:"user_id"`
	CreatedAt        time.Time `firestore:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

func toMemberDoc(m *models.Member) memberDoc {
	return memberDoc{
		FullName:         m.FullName,
		Email:            m.Email,
		EmailKey:         key(m.Email),
		MembershipDate:   m.MembershipDate.Time,
		MembershipStatus: m.MembershipStatus,
		UserID:           m.UserID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fromMemberDoc(id string, d *memberDoc) (*models.Member, error) {
	return &models.Member{
		ID:               id,
		FullName:         d.FullName,
		Email:            d.Email,
		MembershipDate:   models.DateOf(d.MembershipDate),
		MembershipStatus: d.MembershipStatus,
		UserID:           d.UserID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

func (s *Store) memberEmailQuery(email string) firestore.Query {
	return s.fs.Collection(membersCollection).Where("email_key", "==", key(email))
}

// CreateMember tworzy członka o unikalnym adresie email
func (s *Store) CreateMember(ctx context.Context, member *models.Member) error {
	now := s.now()
	member.CreatedAt = now
	member.UpdatedAt = now

	ref := s.fs.Collection(membersCollection).NewDoc()
	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := txTaken(tx, s.memberEmailQuery(member.Email), "")
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicate
		}
		return tx.Create(ref, toMemberDoc(member))
	})
	if err != nil {
		return fmt.Errorf("błąd zapisywania członka: %w", err)
	}

	member.ID = ref.ID
	return nil
}

// GetMember pobiera członka po ID
func (s *Store) GetMember(ctx context.Context, id string) (*models.Member, error) {
	ref, err := s.ref(membersCollection, id)
	if err != nil {
		return nil, err
	}
	d, err := getDoc[memberDoc](ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromMemberDoc(id, d)
}

// GetMemberByEmail wyszukuje członka po adresie email
func (s *Store) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return findOne(ctx, s.memberEmailQuery(email), fromMemberDoc)
}

// UpdateMember nadpisuje dane członka
func (s *Store) UpdateMember(ctx context.Context, member *models.Member) error {
	ref, err := s.ref(membersCollection, member.ID)
	if err != nil {
		return err
	}

	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := txGetDoc[memberDoc](tx, ref)
		if err != nil {
			return err
		}
		taken, err := txTaken(tx, s.memberEmailQuery(member.Email), member.ID)
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicate
		}

		member.CreatedAt = existing.CreatedAt
		member.UpdatedAt = s.now()
		return tx.Set(ref, toMemberDoc(member))
	})
	if err != nil {
		return fmt.Errorf("błąd aktualizacji członka: %w", err)
	}
	return nil
}

// DeleteMember usuwa członka wraz z jego wypożyczeniami i rezerwacjami
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	if err := s.txDeleteCascade(ctx, membersCollection, "member_id", id); err != nil {
		return fmt.Errorf("błąd usuwania członka: %w", err)
	}
	return nil
}

// ListMembers zwraca stronę członków w kolejności dodania
func (s *Store) ListMembers(ctx context.Context, page models.PageRequest) ([]*models.Member, int, error) {
	members, err := listDocs(ctx, s.byCreation(membersCollection), fromMemberDoc)
	if err != nil {
		return nil, 0, fmt.Errorf("błąd pobierania członków: %w", err)
	}
	return paginate(members, page)
}
