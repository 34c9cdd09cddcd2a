package library

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// UserInput to dane konta użytkownika
type UserInput struct {
	Name  string
	Email string
	Role  models.UserRole
}

// CreateUser zakłada konto użytkownika (narzędzia administracyjne i seed)
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	ve := &ValidationError{}
	checkText(ve, "name", in.Name)
	checkEmail(ve, in.Email)
	switch in.Role {
	case "", models.RoleReader, models.RoleAdmin:
	default:
		ve.Add("role", "nieznana rola")
	}
	if !ve.Has("email") {
		dup, err := taken(ctx, s.store.GetUserByEmail, in.Email, func(u *models.User) string { return u.ID }, "")
		if err != nil {
			return nil, &UnexpectedError{Op: "sprawdzanie unikalności emaila", Err: err}
		}
		if dup {
			ve.Add("email", "adres email jest już zajęty")
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	user := &models.User{Name: in.Name, Email: in.Email, Role: in.Role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, duplicateAs(err, "email", "adres email jest już zajęty",
			storeError("tworzenie użytkownika", store.EntityUser, "", err))
	}
	return user, nil
}

// GetUser pobiera użytkownika po ID
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError("pobieranie użytkownika", store.EntityUser, id, err)
	}
	return user, nil
}

var emailValidator = validator.New()

func checkEmail(ve *ValidationError, email string) {
	checkText(ve, "email", email)
	if ve.Has("email") {
		return
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		ve.Add("email", "nieprawidłowy adres email")
	}
}
