package library

import (
	"context"
	"errors"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// ReservationInput to dane nowej rezerwacji
type ReservationInput struct {
	ReservationDate  models.Date
	NotificationSent bool
	MemberID         string
	BookID           string
}

// CreateReservation rezerwuje książkę dla członka. Rezerwacje nie blokują wypożyczeń.
func (s *Service) CreateReservation(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	ve := &ValidationError{}
	if in.ReservationDate.IsZero() {
		ve.Add("reservation_date", "pole jest wymagane")
	}
	if in.MemberID == "" {
		ve.Add("member_id", "pole jest wymagane")
	}
	if in.BookID == "" {
		ve.Add("book_id", "pole jest wymagane")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	if err := s.requireExists(ctx, store.EntityMember, in.MemberID); err != nil {
		return nil, err
	}
	if err := s.requireExists(ctx, store.EntityBook, in.BookID); err != nil {
		return nil, err
	}

	r := &models.Reservation{
		ReservationDate:  in.ReservationDate,
		NotificationSent: in.NotificationSent,
		MemberID:         in.MemberID,
		BookID:           in.BookID,
	}
	if err := s.store.CreateReservation(ctx, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.missingReference(ctx, "tworzenie rezerwacji", in.MemberID, in.BookID, err)
		}
		return nil, storeError("tworzenie rezerwacji", store.EntityReservation, "", err)
	}
	return r, nil
}

// ListReservations zwraca rezerwacje z osadzonymi danymi członka i książki
func (s *Service) ListReservations(ctx context.Context) ([]models.ReservationView, error) {
	reservations, err := s.store.ListReservations(ctx)
	if err != nil {
		return nil, &UnexpectedError{Op: "pobieranie rezerwacji", Err: err}
	}

	refs := newRefCache(s.store)
	views := make([]models.ReservationView, 0, len(reservations))
	for _, r := range reservations {
		member, book, err := refs.memberAndBook(ctx, r.MemberID, r.BookID)
		if errors.Is(err, store.ErrNotFound) {
			s.log.WarnContext(ctx, "pominięto rezerwację z brakującym powiązaniem", "reservation_id", r.ID)
			continue
		}
		if err != nil {
			return nil, &UnexpectedError{Op: "pobieranie powiązań rezerwacji", Err: err}
		}
		views = append(views, models.NewReservationView(r, member, book))
	}
	return views, nil
}

// NotifyReservation oznacza, że członek został powiadomiony o dostępności książki
func (s *Service) NotifyReservation(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.store.UpdateReservation(ctx, id, func(r *models.Reservation) error {
		r.NotificationSent = true
		return nil
	})
	if err != nil {
		return nil, storeError("powiadamianie o rezerwacji", store.EntityReservation, id, err)
	}
	s.log.InfoContext(ctx, "wysłano powiadomienie o rezerwacji", "reservation_id", id)
	return r, nil
}
