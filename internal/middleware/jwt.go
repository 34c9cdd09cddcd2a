package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier weryfikuje tokeny HS256 podpisane wspólnym sekretem
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier tworzy weryfikator; pusty sekret jest błędem konfiguracji
func NewJWTVerifier(secret, issuer string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("brak sekretu JWT")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}, nil
}

// VerifyToken zwraca subject tokenu jako ID użytkownika
func (v *JWTVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: brak subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Sign wystawia token dla użytkownika (narzędzia administracyjne i testy)
func (v *JWTVerifier) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("błąd podpisywania tokenu: %w", err)
	}
	return signed, nil
}
