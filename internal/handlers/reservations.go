package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-management-api/internal/library"
)

// ReservationsHandler obsługuje rezerwacje
type ReservationsHandler struct {
	svc *library.Service
	log *slog.Logger
}

func NewReservationsHandler(svc *library.Service, log *slog.Logger) *ReservationsHandler {
	return &ReservationsHandler{svc: svc, log: log}
}

type reservationRequest struct {
	ReservationDate  string `json:"reservation_date" validate:"required,datetime=2006-01-02"`
	NotificationSent *bool  `json:"notification_sent" validate:"required"`
	MemberID         string `json:"member_id" validate:"required"`
	BookID           string `json:"book_id" validate:"required"`
}

func (h *ReservationsHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	reservation, err := h.svc.CreateReservation(r.Context(), library.ReservationInput{
		ReservationDate:  parseDate(req.ReservationDate),
		NotificationSent: *req.NotificationSent,
		MemberID:         req.MemberID,
		BookID:           req.BookID,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Rezerwacja utworzona", reservation)
}

func (h *ReservationsHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.svc.ListReservations(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Wszystkie rezerwacje", reservations)
}

// NotifyReservation oznacza powiadomienie członka (PUT /reservations/{id}/notify)
func (h *ReservationsHandler) NotifyReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := h.svc.NotifyReservation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Powiadomienie wysłane", reservation)
}
