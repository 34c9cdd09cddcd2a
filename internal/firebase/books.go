package firebase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// bookDoc to postać książki w Firestore; kwoty trzymane jako napisy dziesiętne
type bookDoc struct {
	Title           string    `firestore:"title"`
	Author          string    `firestore:"author"`
	ISBN            string    `firestore:"isbn"`
	PublishedYear   int       `firestore:"published_year"`
	AvailableCopies int       `firestore:"available_copies"`
	LoanFee         string    `firestore:"loan_fee"`
	GenreID         string    `firestore:"genre_id"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

func toBookDoc(b *models.Book) bookDoc {
	return bookDoc{
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublishedYear:   b.PublishedYear,
		AvailableCopies: b.AvailableCopies,
		LoanFee:         b.LoanFee.String(),
		GenreID:         b.GenreID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func fromBookDoc(id string, d *bookDoc) (*models.Book, error) {
	fee, err := parseMoney(d.LoanFee)
	if err != nil {
		return nil, fmt.Errorf("książka %s: nieprawidłowa opłata: %w", id, err)
	}
	return &models.Book{
		ID:              id,
		Title:           d.Title,
		Author:          d.Author,
		ISBN:            d.ISBN,
		PublishedYear:   d.PublishedYear,
		AvailableCopies: d.AvailableCopies,
		LoanFee:         fee,
		GenreID:         d.GenreID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (s *Store) isbnQuery(isbn string) firestore.Query {
	return s.fs.Collection(booksCollection).Where("isbn", "==", isbn)
}

// CreateBook tworzy książkę o unikalnym ISBN
func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	now := s.now()
	book.CreatedAt = now
	book.UpdatedAt = now

	ref := s.fs.Collection(booksCollection).NewDoc()
	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := txTaken(tx, s.isbnQuery(book.ISBN), "")
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicate
		}
		return tx.Create(ref, toBookDoc(book))
	})
	if err != nil {
		return fmt.Errorf("błąd zapisywania książki: %w", err)
	}

	book.ID = ref.ID
	return nil
}

// GetBook pobiera książkę po ID
func (s *Store) GetBook(ctx context.Context, id string) (*models.Book, error) {
	ref, err := s.ref(booksCollection, id)
	if err != nil {
		return nil, err
	}
	d, err := getDoc[bookDoc](ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromBookDoc(id, d)
}

// GetBookByISBN wyszukuje książkę po ISBN
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	return findOne(ctx, s.isbnQuery(isbn), fromBookDoc)
}

// UpdateBook aktualizuje istniejącą książkę
func (s *Store) UpdateBook(ctx context.Context, book *models.Book) error {
	ref, err := s.ref(booksCollection, book.ID)
	if err != nil {
		return err
	}

	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := txGetDoc[bookDoc](tx, ref)
		if err != nil {
			return err
		}
		taken, err := txTaken(tx, s.isbnQuery(book.ISBN), book.ID)
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicate
		}

		book.CreatedAt = existing.CreatedAt
		book.UpdatedAt = s.now()
		return tx.Set(ref, toBookDoc(book))
	})
	if err != nil {
		return fmt.Errorf("błąd aktualizacji książki: %w", err)
	}
	return nil
}

// DeleteBook usuwa książkę wraz z jej wypożyczeniami i rezerwacjami
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := s.txDeleteCascade(ctx, booksCollection, "book_id", id); err != nil {
		return fmt.Errorf("błąd usuwania książki: %w", err)
	}
	return nil
}

// ListBooks pobiera książki i filtruje je po stronie aplikacji.
// Firestore nie obsługuje wyszukiwania po fragmencie tekstu.
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter) ([]*models.Book, int, error) {
	query := s.byCreation(booksCollection)
	if filter.GenreID != "" {
		query = s.fs.Collection(booksCollection).Where("genre_id", "==", filter.GenreID).OrderBy("created_at", firestore.Asc)
	}

	books, err := listDocs(ctx, query, fromBookDoc)
	if err != nil {
		return nil, 0, fmt.Errorf("błąd pobierania książek: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return paginate(books, filter.PageRequest)
	}

	genres, err := listDocs(ctx, s.fs.Collection(genresCollection).Query, fromGenreDoc)
	if err != nil {
		return nil, 0, fmt.Errorf("błąd pobierania gatunków: %w", err)
	}
	genreNames := make(map[string]string, len(genres))
	for _, g := range genres {
		genreNames[g.ID] = strings.ToLower(g.Name)
	}

	filtered := books[:0]
	for _, book := range books {
		if strings.Contains(strings.ToLower(book.Title), search) ||
			strings.Contains(strings.ToLower(book.Author), search) ||
			strings.Contains(genreNames[book.GenreID], search) {
			filtered = append(filtered, book)
		}
	}
	return paginate(filtered, filter.PageRequest)
}
