package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-management-api/internal/library"
	authmw "library-management-api/internal/middleware"
	"library-management-api/internal/models"
	"library-management-api/internal/store/memory"
)

type envelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type apiFixture struct {
	handler http.Handler
	token   string
	genre   *models.Genre
	member  *models.Member
	book    *models.Book
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	svc := library.New(st)

	genre, err := svc.CreateGenre(ctx, library.GenreInput{Name: "Fantasy"})
	require.NoError(t, err)
	user, err := svc.CreateUser(ctx, library.UserInput{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	member, err := svc.CreateMember(ctx, library.MemberInput{
		FullName:         "Jan Kowalski",
		Email:            "jan@example.com",
		MembershipDate:   models.NewDate(2023, time.June, 1),
		MembershipStatus: "active",
		UserID:           user.ID,
	})
	require.NoError(t, err)
	book, err := svc.CreateBook(ctx, library.BookInput{
		Title:           "Wiedźmin: Ostatnie życzenie",
		Author:          "Andrzej Sapkowski",
		ISBN:            "978-83-8032-464-8",
		PublishedYear:   1993,
		AvailableCopies: 3,
		LoanFee:         decimal.RequireFromString("1.00"),
		GenreID:         genre.ID,
	})
	require.NoError(t, err)

	verifier, err := authmw.NewJWTVerifier("sekret-testowy", "library-api")
	require.NoError(t, err)
	token, err := verifier.Sign(user.ID, time.Hour)
	require.NoError(t, err)

	handler := NewRouter(RouterDeps{
		Service:  svc,
		Verifier: verifier,
		DB:       st,
		Driver:   "memory",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &apiFixture{handler: handler, token: token, genre: genre, member: member, book: book}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, auth bool) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (f *apiFixture) loanBody(issued, due string) string {
	return `{"issued_date":"` + issued + `","due_date":"` + due + `","is_returned":false,"fine_amount":0,` +
		`"member_id":"` + f.member.ID + `","book_id":"` + f.book.ID + `"}`
}

func (f *apiFixture) createLoan(t *testing.T) models.Loan {
	t.Helper()
	code, env := f.do(t, http.MethodPost, "/loans", f.loanBody("2024-01-01", "2024-01-08"), true)
	require.Equal(t, http.StatusOK, code, env.Message)

	var loan models.Loan
	require.NoError(t, json.Unmarshal(env.Data, &loan))
	return loan
}

func TestIndexAndHealth(t *testing.T) {
	f := newAPI(t)

	code, env := f.do(t, http.MethodGet, "/", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
	assert.Contains(t, string(env.Data), `"storage":"memory"`)

	code, env = f.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
}

func TestHealthReportsUnavailableStore(t *testing.T) {
	handler := NewRouter(RouterDeps{
		Service: library.New(memory.New()),
		DB:      pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":false`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/loans"},
		{http.MethodPost, "/loans"},
		{http.MethodPut, "/loans/1/return"},
		{http.MethodGet, "/members"},
		{http.MethodPost, "/genres"},
		{http.MethodDelete, "/books/1"},
		{http.MethodGet, "/reservations"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			code, env := f.do(t, tc.method, tc.path, "", false)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.False(t, env.Status)
		})
	}

	// Katalog jest publiczny
	code, _ := f.do(t, http.MethodGet, "/books", "", false)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodGet, "/genres", "", false)
	assert.Equal(t, http.StatusOK, code)
}

func TestCreateLoan(t *testing.T) {
	f := newAPI(t)

	loan := f.createLoan(t)

	assert.NotEmpty(t, loan.ID)
	assert.False(t, loan.IsReturned)
	assert.Nil(t, loan.ReturnDate)
	assert.True(t, loan.FineAmount.IsZero())
	assert.Equal(t, "2024-01-08", loan.DueDate.String())
}

func TestCreateLoanValidation(t *testing.T) {
	f := newAPI(t)

	tests := []struct {
		name   string
		body   string
		status int
		fields []string
	}{
		{
			name:   "termin równy dacie wydania",
			body:   f.loanBody("2024-01-01", "2024-01-01"),
			status: http.StatusBadRequest,
			fields: []string{"due_date"},
		},
		{
			name:   "zły format daty",
			body:   f.loanBody("01.01.2024", "2024-01-08"),
			status: http.StatusBadRequest,
			fields: []string{"issued_date"},
		},
		{
			name:   "brak pól",
			body:   `{}`,
			status: http.StatusBadRequest,
			fields: []string{"book_id", "due_date", "issued_date", "member_id"},
		},
		{
			name:   "nowe wypożyczenie jako zwrócone",
			body:   `{"issued_date":"2024-01-01","due_date":"2024-01-08","is_returned":true,"member_id":"` + f.member.ID + `","book_id":"` + f.book.ID + `"}`,
			status: http.StatusBadRequest,
			fields: []string{"is_returned"},
		},
		{
			name:   "brak członka i termin równy dacie wydania",
			body:   `{"issued_date":"2024-01-01","due_date":"2024-01-01","book_id":"` + f.book.ID + `"}`,
			status: http.StatusBadRequest,
			fields: []string{"due_date", "member_id"},
		},
		{
			name:   "uszkodzony JSON",
			body:   `{"issued_date":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "nieistniejący członek",
			body:   `{"issued_date":"2024-01-01","due_date":"2024-01-08","member_id":"brak","book_id":"` + f.book.ID + `"}`,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := f.do(t, http.MethodPost, "/loans", tt.body, true)
			assert.Equal(t, tt.status, code)
			assert.False(t, env.Status)
			for _, field := range tt.fields {
				assert.Contains(t, env.Errors, field)
			}
			assert.Len(t, env.Errors, len(tt.fields))
		})
	}
}

func TestReturnLoanFlow(t *testing.T) {
	f := newAPI(t)
	loan := f.createLoan(t)
	path := "/loans/" + loan.ID + "/return"

	code, env := f.do(t, http.MethodPut, path, `{"return_date":"2023-12-31"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "return_date")

	code, env = f.do(t, http.MethodPut, path, `{"return_date":"2024-01-10"}`, true)
	require.Equal(t, http.StatusOK, code, env.Message)
	var returned models.Loan
	require.NoError(t, json.Unmarshal(env.Data, &returned))
	assert.True(t, returned.IsReturned)
	assert.Equal(t, "2024-01-10", returned.ReturnDate.String())
	assert.Equal(t, "2.00", returned.FineAmount.StringFixed(2))

	code, env = f.do(t, http.MethodPut, path, `{"return_date":"2024-01-12"}`, true)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Status)
}

func TestReturnMissingLoanIsNotFound(t *testing.T) {
	f := newAPI(t)

	code, env := f.do(t, http.MethodPut, "/loans/brak/return", `{"return_date":"2024-01-10"}`, true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Nie znaleziono wypożyczenia", env.Message)

	// Brak wypożyczenia wygrywa z błędnym body
	code, _ = f.do(t, http.MethodPut, "/loans/brak/return", `{}`, true)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListLoansEmbedsMemberAndBook(t *testing.T) {
	f := newAPI(t)
	f.createLoan(t)

	code, env := f.do(t, http.MethodGet, "/loans", "", true)
	require.Equal(t, http.StatusOK, code)

	var views []models.LoanView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Jan Kowalski", views[0].Member.FullName)
	assert.Equal(t, f.book.Title, views[0].Book.Title)
	assert.NotContains(t, string(env.Data), "member_id")
}

func TestCatalogEndpoints(t *testing.T) {
	f := newAPI(t)

	code, env := f.do(t, http.MethodPost, "/genres", `{"name":"fantasy"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "name")

	code, _ = f.do(t, http.MethodDelete, "/genres/"+f.genre.ID, "", true)
	assert.Equal(t, http.StatusConflict, code)

	code, env = f.do(t, http.MethodGet, "/books?search=sapkowski&per_page=2", "", false)
	require.Equal(t, http.StatusOK, code)
	var page models.Page[models.BookView]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 2, page.PerPage)
	assert.Equal(t, "Fantasy", page.Data[0].Genre.Name)

	code, _ = f.do(t, http.MethodGet, "/books/brak", "", false)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodDelete, "/books/"+f.book.ID, "", true)
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodDelete, "/genres/"+f.genre.ID, "", true)
	assert.Equal(t, http.StatusOK, code)
}

func TestListPagination(t *testing.T) {
	f := newAPI(t)

	code, env := f.do(t, http.MethodGet, "/books?page=2305843009213693953", "", false)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.True(t, env.Status)
	var books models.Page[models.BookView]
	require.NoError(t, json.Unmarshal(env.Data, &books))
	assert.Empty(t, books.Data)
	assert.Equal(t, 1, books.Total)
	assert.Equal(t, models.MaxPage, books.CurrentPage)

	code, env = f.do(t, http.MethodGet, "/members?page=99999999999999999999&per_page=-1", "", true)
	require.Equal(t, http.StatusOK, code, env.Message)
	var members models.Page[models.Member]
	require.NoError(t, json.Unmarshal(env.Data, &members))
	assert.Empty(t, members.Data)
	assert.Equal(t, models.DefaultPerPage, members.PerPage)

	code, env = f.do(t, http.MethodGet, "/genres", "", false)
	require.Equal(t, http.StatusOK, code, env.Message)
	var genres models.Page[models.Genre]
	require.NoError(t, json.Unmarshal(env.Data, &genres))
	assert.Equal(t, models.GenresPerPage, genres.PerPage)
	assert.Len(t, genres.Data, 1)
}

func TestReservationEndpoints(t *testing.T) {
	f := newAPI(t)

	body := `{"reservation_date":"2024-02-01","notification_sent":false,"member_id":"` + f.member.ID + `","book_id":"` + f.book.ID + `"}`
	code, env := f.do(t, http.MethodPost, "/reservations", body, true)
	require.Equal(t, http.StatusOK, code, env.Message)

	var r models.Reservation
	require.NoError(t, json.Unmarshal(env.Data, &r))

	code, env = f.do(t, http.MethodPut, "/reservations/"+r.ID+"/notify", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"notification_sent":true`)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	f := newAPI(t)

	code, env := f.do(t, http.MethodGet, "/nie-ma", "", false)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Status)

	code, _ = f.do(t, http.MethodPatch, "/books", "", false)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
