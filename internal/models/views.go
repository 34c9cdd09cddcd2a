package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberSummary to skrócone dane członka
type MemberSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// BookSummary to skrócone dane książki
type BookSummary struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Author  string          `json:"author"`
	LoanFee decimal.Decimal `json:"loan_fee"`
}

// GenreSummary to skrócone dane gatunku
type GenreSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserSummary to skrócone dane użytkownika
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoanView to wypożyczenie z osadzonymi danymi członka i książki (do list w API)
type LoanView struct {
	ID         string          `json:"id"`
	IssuedDate Date            `json:"issued_date"`
	DueDate    Date            `json:"due_date"`
	ReturnDate *Date           `json:"return_date"`
	IsReturned bool            `json:"is_returned"`
	FineAmount decimal.Decimal `json:"fine_amount"`
	Member     MemberSummary   `json:"member"`
	Book       BookSummary     `json:"book"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewLoanView składa widok wypożyczenia
func NewLoanView(loan *Loan, member *Member, book *Book) LoanView {
	return LoanView{
		ID:         loan.ID,
		IssuedDate: loan.IssuedDate,
		DueDate:    loan.DueDate,
		ReturnDate: loan.ReturnDate,
		IsReturned: loan.IsReturned,
		FineAmount: loan.FineAmount,
		Member:     member.Summary(),
		Book:       book.Summary(),
		CreatedAt:  loan.CreatedAt,
		UpdatedAt:  loan.UpdatedAt,
	}
}

// ReservationView to rezerwacja z osadzonymi danymi członka i książki
type ReservationView struct {
	ID               string        `json:"id"`
	ReservationDate  Date          `json:"reservation_date"`
	NotificationSent bool          `json:"notification_sent"`
	Member           MemberSummary `json:"member"`
	Book             BookSummary   `json:"book"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewReservationView składa widok rezerwacji
func NewReservationView(r *Reservation, member *Member, book *Book) ReservationView {
	return ReservationView{
		ID:               r.ID,
		ReservationDate:  r.ReservationDate,
		NotificationSent: r.NotificationSent,
		Member:           member.Summary(),
		Book:             book.Summary(),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// BookView to książka z osadzonym gatunkiem
type BookView struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	ISBN            string          `json:"isbn"`
	PublishedYear   int             `json:"published_year"`
	AvailableCopies int             `json:"available_copies"`
	LoanFee         decimal.Decimal `json:"loan_fee"`
	Genre           GenreSummary    `json:"genre"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewBookView składa widok książki; brakujący gatunek daje pusty GenreSummary z samym ID
func NewBookView(book *Book, genre *Genre) BookView {
	g := GenreSummary{ID: book.GenreID}
	if genre != nil {
		g = GenreSummary{ID: genre.ID, Name: genre.Name}
	}
	return BookView{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		PublishedYear:   book.PublishedYear,
		AvailableCopies: book.AvailableCopies,
		LoanFee:         book.LoanFee,
		Genre:           g,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

// MemberView to członek z osadzonym użytkownikiem-właścicielem
type MemberView struct {
	ID               string      `json:"id"`
	FullName         string      `json:"full_name"`
	Email            string      `json:"email"`
	MembershipDate   Date        `json:"membership_date"`
	MembershipStatus string      `json:"membership_status"`
	User             UserSummary `json:"user"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewMemberView składa widok członka
func NewMemberView(member *Member, user *User) MemberView {
	u := UserSummary{ID: member.UserID}
	if user != nil {
		u = user.Summary()
	}
	return MemberView{
		ID:               member.ID,
		FullName:         member.FullName,
		Email:            member.Email,
		MembershipDate:   member.MembershipDate,
		MembershipStatus: member.MembershipStatus,
		User:             u,
		CreatedAt:        member.CreatedAt,
		UpdatedAt:        member.UpdatedAt,
	}
}
