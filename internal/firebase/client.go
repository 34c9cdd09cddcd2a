package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Credentials wskazuje skąd wczytać klucz konta serwisowego
type Credentials struct {
	Path string // plik (rozwój lokalny)
	JSON string // treść JSON (produkcja)
}

// Client zawiera klientów Firebase
type Client struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

// InitFirebase inicjalizuje klienta Firebase
func InitFirebase(ctx context.Context, creds Credentials) (*Client, error) {
	var opt option.ClientOption

	switch {
	case creds.Path != "":
		// Tryb lokalny - użyj pliku
		if _, err := os.Stat(creds.Path); os.IsNotExist(err) {
			return nil, fmt.Errorf("plik credentials nie istnieje: %s", creds.Path)
		}
		opt = option.WithCredentialsFile(creds.Path)
	case creds.JSON != "":
		// Tryb produkcyjny - użyj JSON z zmiennej środowiskowej
		opt = option.WithCredentialsJSON([]byte(creds.JSON))
	default:
		return nil, errors.New("brak zmiennej środowiskowej FIREBASE_CREDENTIALS_PATH lub FIREBASE_CREDENTIALS_JSON")
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("błąd inicjalizacji Firebase App: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("błąd inicjalizacji Firebase Auth: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("błąd inicjalizacji Firestore: %w", err)
	}

	slog.InfoContext(ctx, "Firebase zainicjalizowany pomyślnie")
	return &Client{
		App:       app,
		Auth:      authClient,
		Firestore: firestoreClient,
	}, nil
}

// Close zamyka połączenia z Firebase
func (c *Client) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}

// Store zwraca magazyn danych oparty o Firestore
func (c *Client) Store() *Store {
	return NewStore(c.Firestore)
}

// VerifyToken weryfikuje ID token Firebase i zwraca UID użytkownika
func (c *Client) VerifyToken(ctx context.Context, idToken string) (string, error) {
	token, err := c.Auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("błąd weryfikacji tokenu Firebase: %w", err)
	}
	return token.UID, nil
}

// CreateAuthUser zakłada konto w Firebase Auth z UID zgodnym z rekordem użytkownika
func (c *Client) CreateAuthUser(ctx context.Context, uid, email, password, displayName string) error {
	params := (&auth.UserToCreate{}).
		UID(uid).
		Email(email).
		Password(password).
		DisplayName(displayName)

	if _, err := c.Auth.CreateUser(ctx, params); err != nil {
		return fmt.Errorf("błąd tworzenia użytkownika w Firebase Auth: %w", err)
	}
	return nil
}

// Ping sprawdza dostępność Firestore lekkim zapytaniem
func (s *Store) Ping(ctx context.Context) error {
	iter := s.fs.Collection(genresCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("błąd połączenia z Firestore: %w", err)
	}
	return nil
}
