package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"library-management-api/internal/bootstrap"
	"library-management-api/internal/config"
	"library-management-api/internal/handlers"
	"library-management-api/internal/library"
)

func main() {
	// Wczytaj konfigurację (.env + zmienne środowiskowe)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Błąd konfiguracji: %v", err)
	}

	logger := bootstrap.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Nie można zainicjalizować zależności: %v", err)
	}
	defer deps.Close()

	svc := library.New(deps.Store, library.WithLogger(logger))

	router := handlers.NewRouter(handlers.RouterDeps{
		Service:  svc,
		Verifier: deps.Verifier,
		DB:       deps.Store,
		Driver:   cfg.StorageDriver,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("błąd zatrzymywania serwera", "error", err)
		}
	}()

	// Start serwera
	logger.Info("Serwer uruchomiony", "port", cfg.Port, "storage", cfg.StorageDriver, "auth", cfg.AuthMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
	logger.Info("Serwer zatrzymany")
}
