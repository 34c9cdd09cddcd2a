package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-management-api/internal/library"
)

// MembersHandler obsługuje członków biblioteki
type MembersHandler struct {
	svc *library.Service
	log *slog.Logger
}

func NewMembersHandler(svc *library.Service, log *slog.Logger) *MembersHandler {
	return &MembersHandler{svc: svc, log: log}
}

type memberRequest struct {
	FullName         string `json:"full_name" validate:"required,max=255"`
	Email            string `json:"email" validate:"required,email,max=255"`
	MembershipDate   string `json:"membership_date" validate:"required,datetime=2006-01-02"`
	MembershipStatus string `json:"membership_status" validate:"required,max=255"`
	UserID           string `json:"user_id" validate:"required"`
}

func (req memberRequest) input() library.MemberInput {
	return library.MemberInput{
		FullName:         req.FullName,
		Email:            req.Email,
		MembershipDate:   parseDate(req.MembershipDate),
		MembershipStatus: req.MembershipStatus,
		UserID:           req.UserID,
	}
}

func (h *MembersHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListMembers(r.Context(), pageFromQuery(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Wszyscy członkowie", page)
}

func (h *MembersHandler) ShowMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.svc.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Szczegóły członka", member)
}

func (h *MembersHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	member, err := h.svc.CreateMember(r.Context(), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Członek utworzony", member)
}

func (h *MembersHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	member, err := h.svc.UpdateMember(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Członek zaktualizowany", member)
}

func (h *MembersHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, "Członek usunięty", nil)
}
