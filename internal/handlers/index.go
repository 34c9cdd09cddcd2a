package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger sprawdza dostępność bazy danych
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexHandler obsługuje stronę główną API i health check
type IndexHandler struct {
	db      Pinger
	driver  string
	started time.Time
	log     *slog.Logger
}

// NewIndexHandler tworzy nowy handler strony głównej
func NewIndexHandler(db Pinger, driver string, log *slog.Logger) *IndexHandler {
	return &IndexHandler{db: db, driver: driver, started: time.Now(), log: log}
}

// ServeHTTP obsługuje żądanie GET /
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respondOK(w, "Library API", map[string]any{
		"storage": h.driver,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Health sprawdza połączenie z bazą (GET /health)
func (h *IndexHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.ErrorContext(ctx, "health check nie powiódł się", "storage", h.driver, "error", err)
		respondFailure(w, http.StatusServiceUnavailable, "Baza danych niedostępna")
		return
	}
	respondOK(w, "OK", nil)
}
