// Package store definiuje kontrakt warstwy danych wspólny dla wszystkich backendów
// (pamięć, Firestore, PostgreSQL).
package store

import (
	"context"
	"errors"

	"library-management-api/internal/models"
)

var (
	// ErrNotFound zwracany, gdy rekord o podanym ID nie istnieje
	ErrNotFound = errors.New("nie znaleziono rekordu")
	// ErrDuplicate zwracany przy naruszeniu unikalności (ISBN, email, nazwa gatunku)
	ErrDuplicate = errors.New("rekord o tej wartości już istnieje")
	// ErrReferenced zwracany przy próbie usunięcia rekordu, do którego odwołują się inne
	ErrReferenced = errors.New("rekord jest używany przez inne rekordy")
)

// Entity to nazwa kolekcji/tabeli
type Entity string

const (
	EntityGenre       Entity = "genres"
	EntityUser        Entity = "users"
	EntityMember      Entity = "members"
	EntityBook        Entity = "books"
	EntityLoan        Entity = "loans"
	EntityReservation Entity = "reservations"
)

// BookFilter opisuje wyszukiwanie książek
type BookFilter struct {
	Search  string // tytuł, autor lub nazwa gatunku
	GenreID string
	models.PageRequest
}

// LoanMutator modyfikuje wypożyczenie w ramach jednej atomowej operacji odczyt-zapis.
// Zwrócenie błędu przerywa operację bez zapisu.
type LoanMutator func(loan *models.Loan) error

// ReservationMutator działa jak LoanMutator dla rezerwacji
type ReservationMutator func(r *models.Reservation) error

type GenreStore interface {
	CreateGenre(ctx context.Context, genre *models.Genre) error
	GetGenre(ctx context.Context, id string) (*models.Genre, error)
	GetGenreByName(ctx context.Context, name string) (*models.Genre, error)
	UpdateGenre(ctx context.Context, genre *models.Genre) error
	DeleteGenre(ctx context.Context, id string) error
	ListGenres(ctx context.Context, page models.PageRequest) ([]*models.Genre, int, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type MemberStore interface {
	CreateMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, id string) (*models.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	UpdateMember(ctx context.Context, member *models.Member) error
	// DeleteMember usuwa członka razem z jego wypożyczeniami i rezerwacjami
	DeleteMember(ctx context.Context, id string) error
	ListMembers(ctx context.Context, page models.PageRequest) ([]*models.Member, int, error)
}

type BookStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBook(ctx context.Context, id string) (*models.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	// DeleteBook usuwa książkę razem z jej wypożyczeniami i rezerwacjami
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter BookFilter) ([]*models.Book, int, error)
}

type LoanStore interface {
	CreateLoan(ctx context.Context, loan *models.Loan) error
	GetLoan(ctx context.Context, id string) (*models.Loan, error)
	ListLoans(ctx context.Context) ([]*models.Loan, error)
	// UpdateLoan odczytuje wypożyczenie, wywołuje fn i zapisuje wynik atomowo.
	// Równoległe wywołania dla tego samego ID są serializowane.
	UpdateLoan(ctx context.Context, id string, fn LoanMutator) (*models.Loan, error)
	DeleteLoan(ctx context.Context, id string) error
}

type ReservationStore interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservations(ctx context.Context) ([]*models.Reservation, error)
	UpdateReservation(ctx context.Context, id string, fn ReservationMutator) (*models.Reservation, error)
}

// Store łączy wszystkie kolekcje
type Store interface {
	GenreStore
	UserStore
	MemberStore
	BookStore
	LoanStore
	ReservationStore

	// Exists sprawdza czy rekord o podanym ID istnieje w kolekcji
	Exists(ctx context.Context, entity Entity, id string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
