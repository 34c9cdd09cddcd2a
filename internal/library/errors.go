package library

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"library-management-api/internal/store"
)

// FieldError opisuje jedno naruszone ograniczenie pola wejściowego
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError zbiera wszystkie błędy walidacji jednego żądania
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "błąd walidacji: " + strings.Join(parts, "; ")
}

// Add dopisuje błąd pola
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Has sprawdza czy pole ma już zgłoszony błąd
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Merge dopisuje błędy z innego ValidationError dla pól, które nie mają jeszcze błędu
func (e *ValidationError) Merge(err error) {
	var other *ValidationError
	if !errors.As(err, &other) {
		return
	}
	for _, f := range other.Fields {
		if !e.Has(f.Field) {
			e.Fields = append(e.Fields, f)
		}
	}
}

// ByField grupuje powody po nazwie pola (format odpowiedzi API)
func (e *ValidationError) ByField() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Reason)
	}
	return out
}

// FieldNames zwraca posortowane nazwy pól z błędami
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.ByField() {
		names = append(names, field)
	}
	sort.Strings(names)
	return names
}

// Err zwraca nil, gdy nie zgłoszono żadnego błędu
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NotFoundError zwracany, gdy rekord (lub rekord, do którego się odwołujemy) nie istnieje
type NotFoundError struct {
	Entity store.Entity
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("nie znaleziono rekordu %s o ID %q", e.Entity, e.ID)
}

// ConflictError oznacza naruszenie maszyny stanów, np. ponowny zwrot wypożyczenia
type ConflictError struct {
	Entity store.Entity
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("konflikt stanu %s %q: %s", e.Entity, e.ID, e.Reason)
}

// UnexpectedError opakowuje awarie infrastruktury; szczegóły trafiają tylko do logów
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// IsValidation, IsNotFound i IsConflict ułatwiają sprawdzanie rodzaju błędu
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// storeError tłumaczy błąd warstwy danych na błąd domenowy
func storeError(op string, entity store.Entity, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Entity: entity, ID: id}
	case errors.Is(err, store.ErrReferenced):
		return &ConflictError{Entity: entity, ID: id, Reason: "rekord jest używany przez inne rekordy"}
	default:
		var ve *ValidationError
		var ce *ConflictError
		var nf *NotFoundError
		if errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &nf) {
			return err
		}
		return &UnexpectedError{Op: op, Err: err}
	}
}
