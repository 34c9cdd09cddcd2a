package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

const (
	tableGenres = "genres"
	tableUsers  = "users"
	tableBooks  = "books"
)

var (
	genreColumns = []interface{}{"id", "name", "created_at", "updated_at"}
	userColumns  = []interface{}{"id", "name", "email", "role", "created_at", "updated_at"}
	bookColumns  = col(tableBooks, "id", "title", "author", "isbn", "published_year",
		"available_copies", "loan_fee", "genre_id", "created_at", "updated_at")
)

// --- gatunki ---

func (s *Store) CreateGenre(ctx context.Context, genre *models.Genre) error {
	now := s.now()
	genre.ID = newID()
	genre.CreatedAt = now
	genre.UpdatedAt = now

	ds := builder.Insert(tableGenres).Rows(goqu.Record{
		"id":         genre.ID,
		"name":       genre.Name,
		"created_at": genre.CreatedAt,
		"updated_at": genre.UpdatedAt,
	})
	if _, err := exec(ctx, s.pool, ds, store.ErrNotFound); err != nil {
		return fmt.Errorf("błąd zapisywania gatunku: %w", err)
	}
	return nil
}

func (s *Store) GetGenre(ctx context.Context, id string) (*models.Genre, error) {
	return selectOne[models.Genre](ctx, s.pool,
		builder.From(tableGenres).Select(genreColumns...).Where(goqu.C("id").Eq(id)))
}

func (s *Store) GetGenreByName(ctx context.Context, name string) (*models.Genre, error) {
	return selectOne[models.Genre](ctx, s.pool,
		builder.From(tableGenres).Select(genreColumns...).
			Where(goqu.Func("lower", goqu.C("name")).Eq(strings.ToLower(name))).
			Limit(1))
}

func (s *Store) UpdateGenre(ctx context.Context, genre *models.Genre) error {
	genre.UpdatedAt = s.now()

	ds := builder.Update(tableGenres).
		Set(goqu.Record{"name": genre.Name, "updated_at": genre.UpdatedAt}).
		Where(goqu.C("id").Eq(genre.ID)).
		Returning("created_at")

	rows, err := query(ctx, s.pool, ds)
	if err != nil {
		return fmt.Errorf("błąd aktualizacji gatunku: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("błąd aktualizacji gatunku: %w", mapError(err, store.ErrNotFound))
		}
		return store.ErrNotFound
	}
	return rows.Scan(&genre.CreatedAt)
}

func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	n, err := exec(ctx, s.pool, builder.Delete(tableGenres).Where(goqu.C("id").Eq(id)), store.ErrReferenced)
	if err != nil {
		return fmt.Errorf("błąd usuwania gatunku: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListGenres(ctx context.Context, page models.PageRequest) ([]*models.Genre, int, error) {
	page = page.Normalize()
	base := builder.From(tableGenres)

	total, err := count(ctx, s.pool, base)
	if err != nil {
		return nil, 0, fmt.Errorf("błąd liczenia gatunków: %w", err)
	}
	genres, err := selectAll[models.Genre](ctx, s.pool, base.Select(genreColumns...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Offset(uint(page.Offset())).
		Limit(uint(page.PerPage)))
	if err != nil {
		return nil, 0, fmt.Errorf("błąd pobierania gatunków: %w", err)
	}
	return genres, total, nil
}

// --- użytkownicy ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := s.now()
	if user.ID == "" {
		user.ID = newID()
	}
	if user.Role == "" {
		user.Role = models.RoleReader
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	ds := builder.Insert(tableUsers).Rows(goqu.Record{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       string(user.Role),
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	})
	if _, err := exec(ctx, s.pool, ds, store.ErrNotFound); err != nil {
		return fmt.Errorf("błąd zapisywania użytkownika: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return selectOne[models.User](ctx, s.pool,
		builder.From(tableUsers).Select(userColumns...).Where(goqu.C("id").Eq(id)))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return selectOne[models.User](ctx, s.pool,
		builder.From(tableUsers).Select(userColumns...).
			Where(goqu.Func("lower", goqu.C("email")).Eq(strings.ToLower(email))).
			Limit(1))
}

// --- książki ---

func bookRecord(b *models.Book) goqu.Record {
	return goqu.Record{
		"title":            b.Title,
		"author":           b.Author,
		"isbn":             b.ISBN,
		"published_year":   b.PublishedYear,
		"available_copies": b.AvailableCopies,
		"loan_fee":         b.LoanFee.StringFixed(2),
		"genre_id":         b.GenreID,
		"updated_at":       b.UpdatedAt,
	}
}

func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	now := s.now()
	book.ID = newID()
	book.CreatedAt = now
	book.UpdatedAt = now

	rec := bookRecord(book)
	rec["id"] = book.ID
	rec["created_at"] = book.CreatedAt

	// Brak gatunku zgłaszany jako ErrNotFound
	if _, err := exec(ctx, s.pool, builder.Insert(tableBooks).Rows(rec), store.ErrNotFound); err != nil {
		return fmt.Errorf("błąd zapisywania książki: %w", err)
	}
	return nil
}

func (s *Store) GetBook(ctx context.Context, id string) (*models.Book, error) {
	return selectOne[models.Book](ctx, s.pool,
		builder.From(tableBooks).Select(bookColumns...).Where(goqu.T(tableBooks).Col("id").Eq(id)))
}

func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	return selectOne[models.Book](ctx, s.pool,
		builder.From(tableBooks).Select(bookColumns...).Where(goqu.C("isbn").Eq(isbn)).Limit(1))
}

func (s *Store) UpdateBook(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = s.now()

	ds := builder.Update(tableBooks).
		Set(bookRecord(book)).
		Where(goqu.C("id").Eq(book.ID)).
		Returning("created_at")

	rows, err := query(ctx, s.pool, ds)
	if err != nil {
		return fmt.Errorf("błąd aktualizacji książki: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("błąd aktualizacji książki: %w", mapError(err, store.ErrNotFound))
		}
		return store.ErrNotFound
	}
	return rows.Scan(&book.CreatedAt)
}

// DeleteBook usuwa książkę; wypożyczenia i rezerwacje usuwa ON DELETE CASCADE
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	n, err := exec(ctx, s.pool, builder.Delete(tableBooks).Where(goqu.C("id").Eq(id)), store.ErrReferenced)
	if err != nil {
		return fmt.Errorf("błąd usuwania książki: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListBooks wyszukuje po tytule, autorze i nazwie gatunku (ILIKE)
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter) ([]*models.Book, int, error) {
	page := filter.PageRequest.Normalize()

	base := builder.From(tableBooks).
		LeftJoin(goqu.T(tableGenres), goqu.On(goqu.T(tableGenres).Col("id").Eq(goqu.T(tableBooks).Col("genre_id"))))

	if filter.GenreID != "" {
		base = base.Where(goqu.T(tableBooks).Col("genre_id").Eq(filter.GenreID))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		base = base.Where(goqu.Or(
			goqu.T(tableBooks).Col("title").ILike(pattern),
			goqu.T(tableBooks).Col("author").ILike(pattern),
			goqu.T(tableGenres).Col("name").ILike(pattern),
		))
	}

	total, err := count(ctx, s.pool, base)
	if err != nil {
		return nil, 0, fmt.Errorf("błąd liczenia książek: %w", err)
	}
	books, err := selectAll[models.Book](ctx, s.pool, base.Select(bookColumns...).
		Order(goqu.T(tableBooks).Col("created_at").Asc(), goqu.T(tableBooks).Col("id").Asc()).
		Offset(uint(page.Offset())).
		Limit(uint(page.PerPage)))
	if err != nil {
		return nil, 0, fmt.Errorf("błąd pobierania książek: %w", err)
	}
	return books, total, nil
}
