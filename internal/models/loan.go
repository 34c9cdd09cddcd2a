package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan reprezentuje wypożyczenie książki przez członka biblioteki
type Loan struct {
	ID         string          `json:"id" db:"id"`
	IssuedDate Date            `json:"issued_date" db:"issued_date"`
	DueDate    Date            `json:"due_date" db:"due_date"`
	ReturnDate *Date           `json:"return_date" db:"return_date"` // nil dopóki książka nie wróci
	IsReturned bool            `json:"is_returned" db:"is_returned"`
	FineAmount decimal.Decimal `json:"fine_amount" db:"fine_amount"`
	MemberID   string          `json:"member_id" db:"member_id"`
	BookID     string          `json:"book_id" db:"book_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOpen sprawdza czy wypożyczenie nie zostało jeszcze zwrócone
func (l *Loan) IsOpen() bool {
	return !l.IsReturned
}

// Close zamyka wypożyczenie z datą zwrotu i naliczoną karą
func (l *Loan) Close(returnDate Date, fine decimal.Decimal) {
	l.ReturnDate = returnDate.Ptr()
	l.IsReturned = true
	l.FineAmount = fine
}
