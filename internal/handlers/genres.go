package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-management-api/internal/library"
)

// GenresHandler obsługuje gatunki
type GenresHandler struct {
	svc *library.Service
	log *slog.Logger
}

func NewGenresHandler(svc *library.Service, log *slog.Logger) *GenresHandler {
	return &GenresHandler{svc: svc, log: log}
}

type genreRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *GenresHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListGenres(r.Context(), pageFromQuery(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Wszystkie gatunki", page)
}

func (h *GenresHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req genreRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	genre, err := h.svc.CreateGenre(r.Context(), library.GenreInput{Name: req.Name})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Gatunek utworzony", genre)
}

func (h *GenresHandler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	var req genreRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	genre, err := h.svc.UpdateGenre(r.Context(), chi.URLParam(r, "id"), library.GenreInput{Name: req.Name})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Gatunek zaktualizowany", genre)
}

func (h *GenresHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGenre(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Gatunek usunięty", nil)
}
