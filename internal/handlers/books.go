package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"library-management-api/internal/library"
)

// BooksHandler obsługuje operacje na książkach
type BooksHandler struct {
	svc *library.Service
	log *slog.Logger
}

// NewBooksHandler tworzy nowy handler dla książek
func NewBooksHandler(svc *library.Service, log *slog.Logger) *BooksHandler {
	return &BooksHandler{svc: svc, log: log}
}

type bookRequest struct {
	Title           string           `json:"title" validate:"required,max=255"`
	Author          string           `json:"author" validate:"required,max=255"`
	ISBN            string           `json:"isbn" validate:"required,max=255"`
	PublishedYear   *int             `json:"published_year" validate:"required"`
	AvailableCopies *int             `json:"available_copies" validate:"required,gte=0"`
	LoanFee         *decimal.Decimal `json:"loan_fee" validate:"required"`
	GenreID         string           `json:"genre_id" validate:"required"`
}

func (req bookRequest) input() library.BookInput {
	return library.BookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublishedYear:   *req.PublishedYear,
		AvailableCopies: *req.AvailableCopies,
		LoanFee:         *req.LoanFee,
		GenreID:         req.GenreID,
	}
}

// ListBooksHandler zwraca stronę katalogu (GET /books?search=&genre_id=&page=&per_page=)
func (h *BooksHandler) ListBooksHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListBooks(r.Context(), library.BookQuery{
		Search:      q.Get("search"),
		GenreID:     q.Get("genre_id"),
		PageRequest: pageFromQuery(r),
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Wszystkie książki", page)
}

// ShowBookHandler zwraca szczegóły książki (GET /books/{id})
func (h *BooksHandler) ShowBookHandler(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Szczegóły książki", book)
}

// CreateBookHandler tworzy nową książkę (POST /books)
func (h *BooksHandler) CreateBookHandler(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	book, err := h.svc.CreateBook(r.Context(), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Książka utworzona", book)
}

// UpdateBookHandler aktualizuje książkę (PUT /books/{id})
func (h *BooksHandler) UpdateBookHandler(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	book, err := h.svc.UpdateBook(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Książka zaktualizowana", book)
}

// DeleteBookHandler usuwa książkę (DELETE /books/{id})
func (h *BooksHandler) DeleteBookHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBook(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Książka usunięta", nil)
}
