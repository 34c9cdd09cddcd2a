package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// reservationDoc to postać rezerwacji w Firestore
type reservationDoc struct {
	ReservationDate  time.Time `firestore:"reservation_date"`
	NotificationSent bool      `firestore:"notification_sent"`
	MemberID         string    `firestore:"member_id"`
	BookID           string    `firestore:"book_id"`
	CreatedAt        time.Time `firestore:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

func toReservationDoc(r *models.Reservation) reservationDoc {
	return reservationDoc{
		ReservationDate:  r.ReservationDate.Time,
		NotificationSent: r.NotificationSent,
		MemberID:         r.MemberID,
		BookID:           r.BookID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func fromReservationDoc(id string, d *reservationDoc) (*models.Reservation, error) {
	return &models.Reservation{
		ID:               id,
		ReservationDate:  models.DateOf(d.ReservationDate),
		NotificationSent: d.NotificationSent,
		MemberID:         d.MemberID,
		BookID:           d.BookID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

// CreateReservation zapisuje rezerwację dla istniejącego członka i książki
func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	memberRef, err := s.ref(membersCollection, r.MemberID)
	if err != nil {
		return fmt.Errorf("członek %q: %w", r.MemberID, err)
	}
	bookRef, err := s.ref(booksCollection, r.BookID)
	if err != nil {
		return fmt.Errorf("książka %q: %w", r.BookID, err)
	}

	now := s.now()
	r.CreatedAt = now
	r.UpdatedAt = now

	ref := s.fs.Collection(reservationsCollection).NewDoc()
	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := txRequire(tx, memberRef, "członek"); err != nil {
			return err
		}
		if err := txRequire(tx, bookRef, "książka"); err != nil {
			return err
		}
		return tx.Create(ref, toReservationDoc(r))
	})
	if err != nil {
		return fmt.Errorf("błąd zapisywania rezerwacji: %w", err)
	}

	r.ID = ref.ID
	return nil
}

// GetReservation pobiera rezerwację po ID
func (s *Store) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	ref, err := s.ref(reservationsCollection, id)
	if err != nil {
		return nil, err
	}
	d, err := getDoc[reservationDoc](ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromReservationDoc(id, d)
}

// ListReservations zwraca wszystkie rezerwacje w kolejności dodania
func (s *Store) ListReservations(ctx context.Context) ([]*models.Reservation, error) {
	reservations, err := listDocs(ctx, s.byCreation(reservationsCollection), fromReservationDoc)
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania rezerwacji: %w", err)
	}
	return reservations, nil
}

// UpdateReservation modyfikuje rezerwację w transakcji
func (s *Store) UpdateReservation(ctx context.Context, id string, fn store.ReservationMutator) (*models.Reservation, error) {
	ref, err := s.ref(reservationsCollection, id)
	if err != nil {
		return nil, err
	}

	var updated *models.Reservation
	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		d, err := txGetDoc[reservationDoc](tx, ref)
		if err != nil {
			return err
		}
		r, err := fromReservationDoc(id, d)
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}

		r.ID = id
		r.UpdatedAt = s.now()
		updated = r
		return tx.Set(ref, toReservationDoc(r))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
