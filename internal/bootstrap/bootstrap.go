// Package bootstrap składa zależności aplikacji (magazyn danych, weryfikator tokenów)
// na podstawie konfiguracji. Używany przez serwer i narzędzia z cmd/.
package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"library-management-api/internal/config"
	"library-management-api/internal/firebase"
	"library-management-api/internal/middleware"
	"library-management-api/internal/postgres"
	"library-management-api/internal/store"
	"library-management-api/internal/store/memory"
)

// Deps to zainicjalizowane zależności; Close zwalnia połączenia
type Deps struct {
	Store    store.Store
	Verifier middleware.TokenVerifier
	Firebase *firebase.Client
	JWT      *middleware.JWTVerifier
}

// NewLogger tworzy logger JSON na stdout z poziomem z konfiguracji
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// Open inicjalizuje magazyn danych i weryfikator zgodnie z konfiguracją
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Deps, error) {
	deps := &Deps{}

	if cfg.NeedsFirebase() {
		client, err := firebase.InitFirebase(ctx, firebase.Credentials{
			Path: cfg.FirebaseCredentialsPath,
			JSON: cfg.FirebaseCredentialsJSON,
		})
		if err != nil {
			return nil, err
		}
		deps.Firebase = client
	}

	switch cfg.StorageDriver {
	case config.DriverFirestore:
		deps.Store = deps.Firebase.Store()
	case config.DriverPostgres:
		pg, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Store = pg
	default:
		log.WarnContext(ctx, "używam magazynu w pamięci - dane znikną po restarcie")
		deps.Store = memory.New()
	}

	switch cfg.AuthMode {
	case config.AuthFirebase:
		deps.Verifier = deps.Firebase
	case config.AuthJWT:
		v, err := middleware.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.JWT = v
		deps.Verifier = v
	default:
		log.WarnContext(ctx, "uwierzytelnianie wyłączone (AUTH_MODE=none)")
		deps.Verifier = middleware.NoAuth
	}

	log.InfoContext(ctx, "zależności zainicjalizowane", "storage", cfg.StorageDriver, "auth", cfg.AuthMode)
	return deps, nil
}

// Close zamyka magazyn i klienta Firebase
func (d *Deps) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			slog.Error("błąd zamykania magazynu", "error", err)
		}
	}
	if d.Firebase != nil {
		if err := d.Firebase.Close(); err != nil {
			slog.Error("błąd zamykania Firebase", "error", err)
		}
	}
}

// MustOpen działa jak Open, ale kończy program przy błędzie (dla narzędzi z cmd/)
func MustOpen(ctx context.Context, cfg *config.Config, log *slog.Logger) *Deps {
	deps, err := Open(ctx, cfg, log)
	if err != nil {
		log.Error("błąd inicjalizacji", "error", err)
		os.Exit(1)
	}
	return deps
}
