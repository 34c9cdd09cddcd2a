package library

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// BookInput to dane książki przy tworzeniu i edycji
type BookInput struct {
	Title           string
	Author          string
	ISBN            string
	PublishedYear   int
	AvailableCopies int
	LoanFee         decimal.Decimal
	GenreID         string
}

// BookQuery opisuje wyszukiwanie w katalogu
type BookQuery struct {
	Search  string
	GenreID string
	models.PageRequest
}

func (s *Service) validateBook(ctx context.Context, in BookInput, exceptID string) error {
	ve := &ValidationError{}
	checkText(ve, "title", in.Title)
	checkText(ve, "author", in.Author)
	checkText(ve, "isbn", in.ISBN)
	if in.PublishedYear == 0 {
		ve.Add("published_year", "pole jest wymagane")
	}
	if in.AvailableCopies < 0 {
		ve.Add("available_copies", "liczba egzemplarzy nie może być ujemna")
	}
	if in.LoanFee.IsNegative() {
		ve.Add("loan_fee", "opłata nie może być ujemna")
	}
	if in.GenreID == "" {
		ve.Add("genre_id", "pole jest wymagane")
	}
	if !ve.Has("isbn") {
		dup, err := taken(ctx, s.store.GetBookByISBN, in.ISBN, func(b *models.Book) string { return b.ID }, exceptID)
		if err != nil {
			return &UnexpectedError{Op: "sprawdzanie unikalności ISBN", Err: err}
		}
		if dup {
			ve.Add("isbn", "książka o tym numerze ISBN już istnieje")
		}
	}
	if err := ve.Err(); err != nil {
		return err
	}
	return s.requireExists(ctx, store.EntityGenre, in.GenreID)
}

func trimBook(in BookInput) BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	return in
}

// CreateBook dodaje książkę do katalogu
func (s *Service) CreateBook(ctx context.Context, in BookInput) (*models.Book, error) {
	in = trimBook(in)
	if err := s.validateBook(ctx, in, ""); err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		PublishedYear:   in.PublishedYear,
		AvailableCopies: in.AvailableCopies,
		LoanFee:         in.LoanFee.Round(FineScale),
		GenreID:         in.GenreID,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, duplicateAs(err, "isbn", "książka o tym numerze ISBN już istnieje",
			storeError("tworzenie książki", store.EntityBook, "", err))
	}
	s.log.InfoContext(ctx, "książka dodana", "book_id", book.ID, "isbn", book.ISBN)
	return book, nil
}

// GetBook zwraca książkę z danymi gatunku
func (s *Service) GetBook(ctx context.Context, id string) (*models.BookView, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, storeError("pobieranie książki", store.EntityBook, id, err)
	}
	genre, err := s.lookupGenre(ctx, book.GenreID)
	if err != nil {
		return nil, err
	}
	view := models.NewBookView(book, genre)
	return &view, nil
}

// UpdateBook nadpisuje dane książki
func (s *Service) UpdateBook(ctx context.Context, id string, in BookInput) (*models.Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, storeError("pobieranie książki", store.EntityBook, id, err)
	}

	in = trimBook(in)
	if err := s.validateBook(ctx, in, id); err != nil {
		return nil, err
	}

	book.Title = in.Title
	book.Author = in.Author
	book.ISBN = in.ISBN
	book.PublishedYear = in.PublishedYear
	book.AvailableCopies = in.AvailableCopies
	book.LoanFee = in.LoanFee.Round(FineScale)
	book.GenreID = in.GenreID
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, duplicateAs(err, "isbn", "książka o tym numerze ISBN już istnieje",
			storeError("aktualizacja książki", store.EntityBook, id, err))
	}
	return book, nil
}

// DeleteBook usuwa książkę razem z jej wypożyczeniami i rezerwacjami
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.store.DeleteBook(ctx, id); err != nil {
		return storeError("usuwanie książki", store.EntityBook, id, err)
	}
	s.log.InfoContext(ctx, "książka usunięta", "book_id", id)
	return nil
}

// ListBooks wyszukuje książki po tytule, autorze lub nazwie gatunku
func (s *Service) ListBooks(ctx context.Context, q BookQuery) (models.Page[models.BookView], error) {
	page := q.PageRequest.Normalize()
	books, total, err := s.store.ListBooks(ctx, store.BookFilter{
		Search:      strings.TrimSpace(q.Search),
		GenreID:     q.GenreID,
		PageRequest: page,
	})
	if err != nil {
		return models.Page[models.BookView]{}, &UnexpectedError{Op: "pobieranie książek", Err: err}
	}

	genres := make(map[string]*models.Genre)
	views := make([]models.BookView, 0, len(books))
	for _, b := range books {
		genre, ok := genres[b.GenreID]
		if !ok {
			if genre, err = s.lookupGenre(ctx, b.GenreID); err != nil {
				return models.Page[models.BookView]{}, err
			}
			genres[b.GenreID] = genre
		}
		views = append(views, models.NewBookView(b, genre))
	}
	return models.NewPage(page, views, total), nil
}

func (s *Service) lookupGenre(ctx context.Context, id string) (*models.Genre, error) {
	genre, err := s.store.GetGenre(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &UnexpectedError{Op: "pobieranie gatunku", Err: err}
	}
	return genre, nil
}
