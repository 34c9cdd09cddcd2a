package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"library-management-api/internal/library"
	"library-management-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errBadJSON oznacza body, którego nie da się zdekodować
var errBadJSON = errors.New("nieprawidłowe body JSON")

const maxBodyBytes = 1 << 20

// Response to wspólna koperta wszystkich odpowiedzi API
type Response struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("błąd zapisu odpowiedzi", "error", err)
	}
}

func respondOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Response{Status: true, Message: message, Data: data})
}

// respondFailure zapisuje błąd bez danych (używane też przez middleware)
func respondFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Status: false, Message: message})
}

// respondError mapuje błędy domenowe na statusy HTTP
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var ve *library.ValidationError
	var nf *library.NotFoundError
	var ce *library.ConflictError

	switch {
	case errors.Is(err, errBadJSON):
		respondFailure(w, http.StatusBadRequest, "Nieprawidłowy format JSON")
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, Response{
			Status:  false,
			Message: "Błąd walidacji",
			Errors:  ve.ByField(),
		})
	case errors.As(err, &nf):
		respondFailure(w, http.StatusNotFound, notFoundMessage(nf))
	case errors.As(err, &ce):
		respondFailure(w, http.StatusConflict, ce.Reason)
	default:
		log.ErrorContext(r.Context(), "nieoczekiwany błąd", "method", r.Method, "path", r.URL.Path, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Wystąpił nieoczekiwany błąd")
	}
}

func notFoundMessage(nf *library.NotFoundError) string {
	switch nf.Entity {
	case "genres":
		return "Nie znaleziono gatunku"
	case "users":
		return "Nie znaleziono użytkownika"
	case "members":
		return "Nie znaleziono członka"
	case "books":
		return "Nie znaleziono książki"
	case "loans":
		return "Nie znaleziono wypożyczenia"
	case "reservations":
		return "Nie znaleziono rezerwacji"
	default:
		return "Nie znaleziono rekordu"
	}
}

// requestValidator waliduje DTO; nazwy pól w błędach pochodzą z tagów json
var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate dekoduje body JSON i sprawdza tagi validate
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return validateRequest(dst)
}

func validateRequest(dst any) error {
	err := requestValidator.Struct(dst)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &library.ValidationError{}
	for _, fe := range verrs {
		ve.Add(fe.Field(), validationReason(fe))
	}
	return ve
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "pole jest wymagane"
	case "datetime":
		return "nieprawidłowy format daty (RRRR-MM-DD)"
	case "email":
		return "nieprawidłowy adres email"
	case "max":
		return "pole może mieć najwyżej " + fe.Param() + " znaków"
	case "gte":
		return "wartość musi być większa lub równa " + fe.Param()
	default:
		return "nieprawidłowa wartość"
	}
}

// parseDate zamienia zwalidowany napis na datę; pusty napis daje datę zerową
func parseDate(s string) models.Date {
	if s == "" {
		return models.Date{}
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}
	}
	return d
}

// pageFromQuery czyta parametry page i per_page; wartości domyślne ustala serwis
func pageFromQuery(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return models.PageRequest{Page: page, PerPage: perPage}
}
