package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book reprezentuje książkę w systemie bibliotecznym
type Book struct {
	ID              string          `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Author          string          `json:"author" db:"author"`
	ISBN            string          `json:"isbn" db:"isbn"`
	PublishedYear   int             `json:"published_year" db:"published_year"`
	AvailableCopies int             `json:"available_copies" db:"available_copies"`
	LoanFee         decimal.Decimal `json:"loan_fee" db:"loan_fee"` // Opłata za każdy dzień opóźnienia
	GenreID         string          `json:"genre_id" db:"genre_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsAvailable sprawdza czy książka ma wolne egzemplarze
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// Summary zwraca skrócony widok książki osadzany w wypożyczeniach i rezerwacjach
func (b *Book) Summary() BookSummary {
	return BookSummary{ID: b.ID, Title: b.Title, Author: b.Author, LoanFee: b.LoanFee}
}
