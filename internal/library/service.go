// Package library zawiera logikę domenową biblioteki: katalog, członków,
// rezerwacje oraz cykl życia wypożyczenia z naliczaniem kar.
package library

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"library-management-api/internal/store"
)

const maxTextLength = 255

// Service obsługuje operacje biblioteki na dowolnym backendzie danych
type Service struct {
	store store.Store
	log   *slog.Logger
}

// Option konfiguruje Service
type Option func(*Service)

// WithLogger ustawia logger serwisu
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New tworzy serwis biblioteki
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// requireExists zwraca NotFoundError, gdy rekord nie istnieje
func (s *Service) requireExists(ctx context.Context, entity store.Entity, id string) error {
	ok, err := s.store.Exists(ctx, entity, id)
	if err != nil {
		return &UnexpectedError{Op: "sprawdzanie istnienia " + string(entity), Err: err}
	}
	if !ok {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// missingReference ustala, który rekord zniknął, gdy zapis zgłosił store.ErrNotFound
// po wcześniejszym sprawdzeniu istnienia członka i książki
func (s *Service) missingReference(ctx context.Context, op string, memberID, bookID string, err error) error {
	if refErr := s.requireExists(ctx, store.EntityMember, memberID); refErr != nil {
		return refErr
	}
	if refErr := s.requireExists(ctx, store.EntityBook, bookID); refErr != nil {
		return refErr
	}
	return &UnexpectedError{Op: op, Err: err}
}

// checkText sprawdza wymagane pole tekstowe
func checkText(ve *ValidationError, field, value string) {
	switch {
	case value == "":
		ve.Add(field, "pole jest wymagane")
	case len([]rune(value)) > maxTextLength:
		ve.Add(field, "pole może mieć najwyżej 255 znaków")
	}
}

// taken sprawdza unikalność wartości przez wyszukanie istniejącego rekordu
func taken[T any](ctx context.Context, lookup func(context.Context, string) (*T, error), value string, id func(*T) string, exceptID string) (bool, error) {
	existing, err := lookup(ctx, value)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return id(existing) != exceptID, nil
}
