package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Klucze do przechowywania wartości w context
type contextKey string

const (
	UserUIDKey contextKey = "user_uid"
)

// ErrInvalidToken zwracany przez weryfikatory dla nieprawidłowych tokenów
var ErrInvalidToken = errors.New("nieprawidłowy token")

// TokenVerifier weryfikuje token Bearer i zwraca ID użytkownika
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// TokenVerifierFunc pozwala użyć funkcji jako TokenVerifier
type TokenVerifierFunc func(ctx context.Context, token string) (string, error)

func (f TokenVerifierFunc) VerifyToken(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// AnonymousUID to identyfikator nadawany żądaniom, gdy uwierzytelnianie jest wyłączone
const AnonymousUID = "anonymous"

type noAuth struct{}

func (noAuth) VerifyToken(context.Context, string) (string, error) {
	return AnonymousUID, nil
}

// NoAuth przepuszcza każde żądanie, także bez nagłówka Authorization (tryb deweloperski)
var NoAuth TokenVerifier = noAuth{}

// AuthMiddleware weryfikuje token z nagłówka Authorization i dodaje UID do kontekstu
func AuthMiddleware(verifier TokenVerifier, onError func(w http.ResponseWriter, status int, msg string)) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, status int, msg string) {
			http.Error(w, msg, status)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if _, open := verifier.(noAuth); err != nil && !open {
				onError(w, http.StatusUnauthorized, err.Error())
				return
			}

			uid, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				onError(w, http.StatusUnauthorized, "Nieprawidłowy token")
				return
			}

			ctx := context.WithValue(r.Context(), UserUIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken wyciąga token z nagłówka "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("Brak nagłówka Authorization")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("Nieprawidłowy format Authorization")
	}
	return parts[1], nil
}

// GetUserUIDFromContext pobiera UID użytkownika z kontekstu
func GetUserUIDFromContext(ctx context.Context) (string, error) {
	uid, ok := ctx.Value(UserUIDKey).(string)
	if !ok {
		return "", fmt.Errorf("brak UID użytkownika w kontekście")
	}
	return uid, nil
}
