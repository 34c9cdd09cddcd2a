package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"library-management-api/internal/library"
	authmw "library-management-api/internal/middleware"
)

// RouterDeps to zależności potrzebne do zbudowania routera
type RouterDeps struct {
	Service  *library.Service
	Verifier authmw.TokenVerifier
	DB       Pinger
	Driver   string
	Logger   *slog.Logger
}

// NewRouter buduje router Chi z wszystkimi endpointami API
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	verifier := deps.Verifier
	if verifier == nil {
		verifier = authmw.NoAuth
	}

	r := chi.NewRouter()

	// Middleware do logowania requestów
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondFailure(w, http.StatusNotFound, "Nie znaleziono zasobu")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondFailure(w, http.StatusMethodNotAllowed, "Metoda niedozwolona")
	})

	indexHandler := NewIndexHandler(deps.DB, deps.Driver, log)
	genresHandler := NewGenresHandler(deps.Service, log)
	membersHandler := NewMembersHandler(deps.Service, log)
	booksHandler := NewBooksHandler(deps.Service, log)
	loansHandler := NewLoansHandler(deps.Service, log)
	reservationsHandler := NewReservationsHandler(deps.Service, log)

	// Publiczne
	r.Get("/", indexHandler.ServeHTTP)
	r.Get("/health", indexHandler.Health)
	r.Get("/genres", genresHandler.ListGenres)
	r.Get("/books", booksHandler.ListBooksHandler)
	r.Get("/books/{id}", booksHandler.ShowBookHandler)

	// Wymagają tokenu
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(verifier, respondFailure))

		r.Post("/genres", genresHandler.CreateGenre)
		r.Put("/genres/{id}", genresHandler.UpdateGenre)
		r.Delete("/genres/{id}", genresHandler.DeleteGenre)

		r.Get("/members", membersHandler.ListMembers)
		r.Post("/members", membersHandler.CreateMember)
		r.Get("/members/{id}", membersHandler.ShowMember)
		r.Put("/members/{id}", membersHandler.UpdateMember)
		r.Delete("/members/{id}", membersHandler.DeleteMember)

		r.Post("/books", booksHandler.CreateBookHandler)
		r.Put("/books/{id}", booksHandler.UpdateBookHandler)
		r.Delete("/books/{id}", booksHandler.DeleteBookHandler)

		r.Get("/loans", loansHandler.ListLoans)
		r.Post("/loans", loansHandler.CreateLoan)
		r.Get("/loans/{id}", loansHandler.ShowLoan)
		r.Put("/loans/{id}/return", loansHandler.ReturnLoan)
		r.Delete("/loans/{id}", loansHandler.DeleteLoan)

		r.Get("/reservations", reservationsHandler.ListReservations)
		r.Post("/reservations", reservationsHandler.CreateReservation)
		r.Put("/reservations/{id}/notify", reservationsHandler.NotifyReservation)
	})

	return r
}
