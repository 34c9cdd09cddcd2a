package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// genreDoc to postać gatunku zapisywana w Firestore
type genreDoc struct {
	Name      string    `firestore:"name"`
	NameKey   string    `firestore:"name_key"` // nazwa małymi literami do sprawdzania unikalności
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toGenreDoc(g *models.Genre) genreDoc {
	return genreDoc{Name: g.Name, NameKey: key(g.Name), CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

func fromGenreDoc(id string, d *genreDoc) (*models.Genre, error) {
	return &models.Genre{ID: id, Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

// CreateGenre tworzy gatunek o unikalnej nazwie
func (s *Store) CreateGenre(ctx context.Context, genre *models.Genre) error {
	now := s.now()
	genre.CreatedAt = now
	genre.UpdatedAt = now

	ref := s.fs.Collection(genresCollection).NewDoc()
	err := s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := txTaken(tx, s.fs.Collection(genresCollection).Where("name_key", "==", key(genre.Name)), "")
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicate
		}
		return tx.Create(ref, toGenreDoc(genre))
	})
	if err != nil {
		return fmt.Errorf("błąd zapisywania gatunku: %w", err)
	}

	genre.ID = ref.ID
	return nil
}

// GetGenre pobiera gatunek po ID
func (s *Store) GetGenre(ctx context.Context, id string) (*models.Genre, error) {
	ref, err := s.ref(genresCollection, id)
	if err != nil {
		return nil, err
	}
	d, err := getDoc[genreDoc](ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromGenreDoc(id, d)
}

// GetGenreByName wyszukuje gatunek po nazwie bez rozróżniania wielkości liter
func (s *Store) GetGenreByName(ctx context.Context, name string) (*models.Genre, error) {
	return findOne(ctx, s.fs.Collection(genresCollection).Where("name_key", "==", key(name)), fromGenreDoc)
}

// UpdateGenre zmienia nazwę gatunku
func (s *Store) UpdateGenre(ctx context.Context, genre *models.Genre) error {
	ref, err := s.ref(genresCollection, genre.ID)
	if err != nil {
		return err
	}

	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := txGetDoc[genreDoc](tx, ref)
		if err != nil {
			return err
		}
		taken, err := txTaken(tx, s.fs.Collection(genresCollection).Where("name_key", "==", key(genre.Name)), genre.ID)
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicate
		}

		genre.CreatedAt = existing.CreatedAt
		genre.UpdatedAt = s.now()
		return tx.Set(ref, toGenreDoc(genre))
	})
	if err != nil {
		return fmt.Errorf("błąd aktualizacji gatunku: %w", err)
	}
	return nil
}

// DeleteGenre usuwa gatunek, o ile żadna książka go nie używa
func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	ref, err := s.ref(genresCollection, id)
	if err != nil {
		return err
	}

	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := txGetDoc[genreDoc](tx, ref); err != nil {
			return err
		}
		used, err := txRefs(tx, s.fs.Collection(booksCollection).Where("genre_id", "==", id).Limit(1))
		if err != nil {
			return err
		}
		if len(used) > 0 {
			return store.ErrReferenced
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("błąd usuwania gatunku: %w", err)
	}
	return nil
}

// ListGenres zwraca stronę gatunków w kolejności dodania
func (s *Store) ListGenres(ctx context.Context, page models.PageRequest) ([]*models.Genre, int, error) {
	genres, err := listDocs(ctx, s.byCreation(genresCollection), fromGenreDoc)
	if err != nil {
		return nil, 0, fmt.Errorf("błąd pobierania gatunków: %w", err)
	}
	return paginate(genres, page)
}

// paginate wycina stronę z listy pobranej w całości
func paginate[T any](items []*T, page models.PageRequest) ([]*T, int, error) {
	start, end := page.Normalize().Window(len(items))
	return items[start:end], len(items), nil
}
