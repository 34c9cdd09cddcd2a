package library

import (
	"context"
	"errors"
	"strings"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// MemberInput to dane członka przy tworzeniu i edycji
type MemberInput struct {
	FullName         string
	Email            string
	MembershipDate   models.Date
	MembershipStatus string
	UserID           string
}

func (s *Service) validateMember(ctx context.Context, in MemberInput, exceptID string) error {
	ve := &ValidationError{}
	checkText(ve, "full_name", in.FullName)
	checkEmail(ve, in.Email)
	if in.MembershipDate.IsZero() {
		ve.Add("membership_date", "pole jest wymagane")
	}
	checkText(ve, "membership_status", in.MembershipStatus)
	if in.UserID == "" {
		ve.Add("user_id", "pole jest wymagane")
	}
	if !ve.Has("email") {
		dup, err := taken(ctx, s.store.GetMemberByEmail, in.Email, func(m *models.Member) string { return m.ID }, exceptID)
		if err != nil {
			return &UnexpectedError{Op: "sprawdzanie unikalności emaila", Err: err}
		}
		if dup {
			ve.Add("email", "adres email jest już zajęty")
		}
	}
	if err := ve.Err(); err != nil {
		return err
	}
	return s.requireExists(ctx, store.EntityUser, in.UserID)
}

func trimMember(in MemberInput) MemberInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.MembershipStatus = strings.TrimSpace(in.MembershipStatus)
	return in
}

// CreateMember rejestruje członka biblioteki należącego do istniejącego użytkownika
func (s *Service) CreateMember(ctx context.Context, in MemberInput) (*models.Member, error) {
	in = trimMember(in)
	if err := s.validateMember(ctx, in, ""); err != nil {
		return nil, err
	}

	member := &models.Member{
		FullName:         in.FullName,
		Email:            in.Email,
		MembershipDate:   in.MembershipDate,
		MembershipStatus: in.MembershipStatus,
		UserID:           in.UserID,
	}
	if err := s.store.CreateMember(ctx, member); err != nil {
		return nil, duplicateAs(err, "email", "adres email jest już zajęty",
			storeError("tworzenie członka", store.EntityMember, "", err))
	}
	return member, nil
}

// GetMember zwraca członka z danymi użytkownika-właściciela
func (s *Service) GetMember(ctx context.Context, id string) (*models.MemberView, error) {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, storeError("pobieranie członka", store.EntityMember, id, err)
	}
	user, err := s.lookupUser(ctx, member.UserID)
	if err != nil {
		return nil, err
	}
	view := models.NewMemberView(member, user)
	return &view, nil
}

// UpdateMember nadpisuje dane członka
func (s *Service) UpdateMember(ctx context.Context, id string, in MemberInput) (*models.Member, error) {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		return nil, storeError("pobieranie członka", store.EntityMember, id, err)
	}

	in = trimMember(in)
	if err := s.validateMember(ctx, in, id); err != nil {
		return nil, err
	}

	member.FullName = in.FullName
	member.Email = in.Email
	member.MembershipDate = in.MembershipDate
	member.MembershipStatus = in.MembershipStatus
	member.UserID = in.UserID
	if err := s.store.UpdateMember(ctx, member); err != nil {
		return nil, duplicateAs(err, "email", "adres email jest już zajęty",
			storeError("aktualizacja członka", store.EntityMember, id, err))
	}
	return member, nil
}

// DeleteMember usuwa członka razem z jego wypożyczeniami i rezerwacjami
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return storeError("usuwanie członka", store.EntityMember, id, err)
	}
	s.log.InfoContext(ctx, "członek usunięty", "member_id", id)
	return nil
}

// ListMembers zwraca stronę członków z danymi użytkowników
func (s *Service) ListMembers(ctx context.Context, page models.PageRequest) (models.Page[models.MemberView], error) {
	page = page.Normalize()
	members, total, err := s.store.ListMembers(ctx, page)
	if err != nil {
		return models.Page[models.MemberView]{}, &UnexpectedError{Op: "pobieranie członków", Err: err}
	}

	users := make(map[string]*models.User)
	views := make([]models.MemberView, 0, len(members))
	for _, m := range members {
		user, ok := users[m.UserID]
		if !ok {
			if user, err = s.lookupUser(ctx, m.UserID); err != nil {
				return models.Page[models.MemberView]{}, err
			}
			users[m.UserID] = user
		}
		views = append(views, models.NewMemberView(m, user))
	}
	return models.NewPage(page, views, total), nil
}

// lookupUser zwraca nil bez błędu, gdy użytkownik został usunięty
func (s *Service) lookupUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &UnexpectedError{Op: "pobieranie użytkownika", Err: err}
	}
	return user, nil
}
