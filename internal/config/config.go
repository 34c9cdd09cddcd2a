// Package config wczytuje konfigurację aplikacji z pliku .env i zmiennych środowiskowych.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backendy danych
const (
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
)

// Tryby uwierzytelniania
const (
	AuthNone     = "none"
	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

// Config to pełna konfiguracja serwera i narzędzi
type Config struct {
	Port string

	StorageDriver string
	DatabaseURL   string
	DBMaxConns    int32

	FirebaseCredentialsPath string
	FirebaseCredentialsJSON string

	AuthMode  string
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	LogLevel slog.Level
}

// Load wczytuje .env (jeśli istnieje) i buduje konfigurację ze zmiennych środowiskowych
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("Brak pliku .env - używam zmiennych systemowych")
	}
	return FromEnv(os.Getenv)
}

// FromEnv buduje konfigurację z podanej funkcji odczytu zmiennych
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:                    get("PORT", "8080"),
		DatabaseURL:             get("DATABASE_URL", ""),
		FirebaseCredentialsPath: get("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseCredentialsJSON: get("FIREBASE_CREDENTIALS_JSON", ""),
		JWTSecret:               get("JWT_SECRET", ""),
		JWTIssuer:               get("JWT_ISSUER", "library-api"),
	}

	var errs []error

	cfg.StorageDriver = strings.ToLower(get("STORAGE_DRIVER", ""))
	if cfg.StorageDriver == "" {
		// Bez jawnego wyboru: Postgres, gdy podano DATABASE_URL, w przeciwnym razie pamięć
		cfg.StorageDriver = DriverMemory
		if cfg.DatabaseURL != "" {
			cfg.StorageDriver = DriverPostgres
		}
	}
	switch cfg.StorageDriver {
	case DriverMemory, DriverFirestore:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL jest wymagany dla STORAGE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("nieznany STORAGE_DRIVER %q", cfg.StorageDriver))
	}

	maxConns, err := strconv.ParseInt(get("DB_MAX_CONNS", "10"), 10, 32)
	if err != nil || maxConns < 1 {
		errs = append(errs, fmt.Errorf("nieprawidłowy DB_MAX_CONNS %q", getenv("DB_MAX_CONNS")))
	}
	cfg.DBMaxConns = int32(maxConns)

	cfg.AuthMode = strings.ToLower(get("AUTH_MODE", AuthNone))
	switch cfg.AuthMode {
	case AuthNone, AuthFirebase:
	case AuthJWT:
		if cfg.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET jest wymagany dla AUTH_MODE=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("nieznany AUTH_MODE %q", cfg.AuthMode))
	}

	ttl, err := time.ParseDuration(get("JWT_TTL", "24h"))
	if err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("nieprawidłowy JWT_TTL %q", getenv("JWT_TTL")))
	}
	cfg.JWTTTL = ttl

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("nieprawidłowy LOG_LEVEL: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("błąd konfiguracji: %w", err)
	}
	return cfg, nil
}

// Addr zwraca adres nasłuchiwania serwera
func (c *Config) Addr() string {
	return ":" + c.Port
}

// NeedsFirebase mówi, czy konfiguracja wymaga klienta Firebase
func (c *Config) NeedsFirebase() bool {
	return c.StorageDriver == DriverFirestore || c.AuthMode == AuthFirebase
}
