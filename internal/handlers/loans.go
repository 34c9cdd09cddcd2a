package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"library-management-api/internal/library"
)

// LoansHandler obsługuje wypożyczenia
type LoansHandler struct {
	svc *library.Service
	log *slog.Logger
}

func NewLoansHandler(svc *library.Service, log *slog.Logger) *LoansHandler {
	return &LoansHandler{svc: svc, log: log}
}

type createLoanRequest struct {
	IssuedDate string           `json:"issued_date" validate:"required,datetime=2006-01-02"`
	DueDate    string           `json:"due_date" validate:"required,datetime=2006-01-02"`
	ReturnDate *string          `json:"return_date" validate:"omitempty,datetime=2006-01-02"`
	IsReturned *bool            `json:"is_returned"`
	FineAmount *decimal.Decimal `json:"fine_amount"`
	MemberID   string           `json:"member_id" validate:"required"`
	BookID     string           `json:"book_id" validate:"required"`
}

func (req createLoanRequest) input() library.IssueLoanInput {
	in := library.IssueLoanInput{
		IssuedDate: parseDate(req.IssuedDate),
		DueDate:    parseDate(req.DueDate),
		MemberID:   req.MemberID,
		BookID:     req.BookID,
	}
	if req.FineAmount != nil {
		in.InitialFine = *req.FineAmount
	}
	if req.IsReturned != nil {
		in.IsReturned = *req.IsReturned
	}
	if req.ReturnDate != nil && *req.ReturnDate != "" {
		in.ReturnDate = parseDate(*req.ReturnDate).Ptr()
	}
	return in
}

type returnLoanRequest struct {
	ReturnDate string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

// CreateLoan wydaje książkę członkowi (POST /loans)
func (h *LoansHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		// Reguły domenowe dopisują pola, których nie zgłosił walidator tagów
		var ve *library.ValidationError
		if errors.As(err, &ve) {
			ve.Merge(req.input().Validate())
		}
		respondError(w, r, h.log, err)
		return
	}

	loan, err := h.svc.IssueLoan(r.Context(), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Wypożyczenie utworzone", loan)
}

// ListLoans zwraca wszystkie wypożyczenia z danymi członka i książki (GET /loans)
func (h *LoansHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLoans(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Wszystkie wypożyczenia", loans)
}

// ShowLoan zwraca jedno wypożyczenie (GET /loans/{id})
func (h *LoansHandler) ShowLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.svc.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Szczegóły wypożyczenia", loan)
}

// ReturnLoan obsługuje zwrot książki (PUT /loans/{id}/return)
func (h *LoansHandler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "id")

	var req returnLoanRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		// Brak wypożyczenia ma pierwszeństwo przed błędami body
		if _, lookupErr := h.svc.GetLoan(r.Context(), loanID); library.IsNotFound(lookupErr) {
			err = lookupErr
		}
		respondError(w, r, h.log, err)
		return
	}

	loan, err := h.svc.ReturnLoan(r.Context(), loanID, parseDate(req.ReturnDate))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Książka zwrócona", loan)
}

// DeleteLoan usuwa wypożyczenie (DELETE /loans/{id})
func (h *LoansHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLoan(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Wypożyczenie usunięte", nil)
}
