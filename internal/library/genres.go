package library

import (
	"context"
	"errors"
	"strings"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// GenreInput to dane gatunku przy tworzeniu i edycji
type GenreInput struct {
	Name string
}

func (s *Service) validateGenre(ctx context.Context, in GenreInput, exceptID string) error {
	ve := &ValidationError{}
	checkText(ve, "name", in.Name)
	if !ve.Has("name") {
		dup, err := taken(ctx, s.store.GetGenreByName, in.Name, func(g *models.Genre) string { return g.ID }, exceptID)
		if err != nil {
			return &UnexpectedError{Op: "sprawdzanie unikalności gatunku", Err: err}
		}
		if dup {
			ve.Add("name", "gatunek o tej nazwie już istnieje")
		}
	}
	return ve.Err()
}

// CreateGenre tworzy gatunek o unikalnej nazwie
func (s *Service) CreateGenre(ctx context.Context, in GenreInput) (*models.Genre, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateGenre(ctx, in, ""); err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: in.Name}
	if err := s.store.CreateGenre(ctx, genre); err != nil {
		return nil, duplicateAs(err, "name", "gatunek o tej nazwie już istnieje",
			storeError("tworzenie gatunku", store.EntityGenre, "", err))
	}
	return genre, nil
}

// GetGenre pobiera gatunek po ID
func (s *Service) GetGenre(ctx context.Context, id string) (*models.Genre, error) {
	genre, err := s.store.GetGenre(ctx, id)
	if err != nil {
		return nil, storeError("pobieranie gatunku", store.EntityGenre, id, err)
	}
	return genre, nil
}

// UpdateGenre zmienia nazwę gatunku
func (s *Service) UpdateGenre(ctx context.Context, id string, in GenreInput) (*models.Genre, error) {
	genre, err := s.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := s.validateGenre(ctx, in, id); err != nil {
		return nil, err
	}

	genre.Name = in.Name
	if err := s.store.UpdateGenre(ctx, genre); err != nil {
		return nil, duplicateAs(err, "name", "gatunek o tej nazwie już istnieje",
			storeError("aktualizacja gatunku", store.EntityGenre, id, err))
	}
	return genre, nil
}

// DeleteGenre usuwa gatunek; gatunek z przypisanymi książkami nie może zostać usunięty
func (s *Service) DeleteGenre(ctx context.Context, id string) error {
	if err := s.store.DeleteGenre(ctx, id); err != nil {
		return storeError("usuwanie gatunku", store.EntityGenre, id, err)
	}
	return nil
}

// ListGenres zwraca stronę gatunków, domyślnie po models.GenresPerPage
func (s *Service) ListGenres(ctx context.Context, page models.PageRequest) (models.Page[*models.Genre], error) {
	page = page.NormalizeWith(models.GenresPerPage)
	genres, total, err := s.store.ListGenres(ctx, page)
	if err != nil {
		return models.Page[*models.Genre]{}, &UnexpectedError{Op: "pobieranie gatunków", Err: err}
	}
	return models.NewPage(page, genres, total), nil
}

// duplicateAs zamienia store.ErrDuplicate na błąd walidacji pola, w innym wypadku zwraca fallback
func duplicateAs(err error, field, reason string, fallback error) error {
	if errors.Is(err, store.ErrDuplicate) {
		ve := &ValidationError{}
		ve.Add(field, reason)
		return ve
	}
	return fallback
}
