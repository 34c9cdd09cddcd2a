package library

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// IssueLoanInput to dane potrzebne do wydania książki członkowi
type IssueLoanInput struct {
	IssuedDate  models.Date
	DueDate     models.Date
	MemberID    string
	BookID      string
	InitialFine decimal.Decimal

	// Pola przyjmowane dla zgodności z API; wypożyczenie zawsze startuje jako otwarte
	IsReturned bool
	ReturnDate *models.Date
}

// Validate sprawdza reguły wypożyczenia niezależne od stanu magazynu
func (in IssueLoanInput) Validate() error {
	ve := &ValidationError{}

	if in.IssuedDate.IsZero() {
		ve.Add("issued_date", "pole jest wymagane")
	}
	switch {
	case in.DueDate.IsZero():
		ve.Add("due_date", "pole jest wymagane")
	case !in.IssuedDate.IsZero() && !in.DueDate.After(in.IssuedDate):
		ve.Add("due_date", "termin zwrotu musi być późniejszy niż data wydania")
	}
	if in.MemberID == "" {
		ve.Add("member_id", "pole jest wymagane")
	}
	if in.BookID == "" {
		ve.Add("book_id", "pole jest wymagane")
	}
	if in.InitialFine.IsNegative() {
		ve.Add("fine_amount", "kara nie może być ujemna")
	}
	if in.IsReturned {
		ve.Add("is_returned", "nowe wypożyczenie nie może być oznaczone jako zwrócone")
	}
	if in.ReturnDate != nil && !in.ReturnDate.IsZero() {
		ve.Add("return_date", "datę zwrotu ustawia wyłącznie operacja zwrotu")
	}

	return ve.Err()
}

// IssueLoan tworzy otwarte wypożyczenie łączące członka i książkę
func (s *Service) IssueLoan(ctx context.Context, in IssueLoanInput) (*models.Loan, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireExists(ctx, store.EntityMember, in.MemberID); err != nil {
		return nil, err
	}
	if err := s.requireExists(ctx, store.EntityBook, in.BookID); err != nil {
		return nil, err
	}

	loan := &models.Loan{
		IssuedDate: in.IssuedDate,
		DueDate:    in.DueDate,
		IsReturned: false,
		FineAmount: in.InitialFine.Round(FineScale),
		MemberID:   in.MemberID,
		BookID:     in.BookID,
	}
	if err := s.store.CreateLoan(ctx, loan); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.missingReference(ctx, "tworzenie wypożyczenia", in.MemberID, in.BookID, err)
		}
		return nil, storeError("tworzenie wypożyczenia", store.EntityLoan, loan.ID, err)
	}

	s.log.InfoContext(ctx, "wypożyczenie wydane",
		"loan_id", loan.ID, "member_id", loan.MemberID, "book_id", loan.BookID,
		"due_date", loan.DueDate.String())
	return loan, nil
}

// ReturnLoan zamyka otwarte wypożyczenie, naliczając karę według stawki książki.
// Ponowny zwrot zamkniętego wypożyczenia kończy się ConflictError.
func (s *Service) ReturnLoan(ctx context.Context, loanID string, returnDate models.Date) (*models.Loan, error) {
	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, storeError("pobieranie wypożyczenia", store.EntityLoan, loanID, err)
	}

	ve := &ValidationError{}
	switch {
	case returnDate.IsZero():
		ve.Add("return_date", "pole jest wymagane")
	case returnDate.Before(loan.IssuedDate):
		ve.Add("return_date", "data zwrotu nie może być wcześniejsza niż data wydania")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	// Stawka pobierana w chwili zwrotu, nie jest zapamiętywana w wypożyczeniu
	book, err := s.store.GetBook(ctx, loan.BookID)
	if err != nil {
		return nil, storeError("pobieranie książki", store.EntityBook, loan.BookID, err)
	}

	var fine decimal.Decimal
	updated, err := s.store.UpdateLoan(ctx, loanID, func(l *models.Loan) error {
		if l.IsReturned {
			return &ConflictError{Entity: store.EntityLoan, ID: loanID, Reason: "wypożyczenie zostało już zwrócone"}
		}
		fine = ComputeFine(l.DueDate, returnDate, book.LoanFee)
		l.Close(returnDate, fine)
		return nil
	})
	if err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			s.log.WarnContext(ctx, "odrzucono ponowny zwrot", "loan_id", loanID)
		}
		return nil, storeError("zwrot wypożyczenia", store.EntityLoan, loanID, err)
	}

	s.log.InfoContext(ctx, "wypożyczenie zwrócone",
		"loan_id", loanID, "return_date", returnDate.String(), "fine_amount", fine.StringFixed(FineScale))
	return updated, nil
}

// ListLoans zwraca wszystkie wypożyczenia z osadzonymi danymi członka i książki
func (s *Service) ListLoans(ctx context.Context) ([]models.LoanView, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, &UnexpectedError{Op: "pobieranie wypożyczeń", Err: err}
	}

	refs := newRefCache(s.store)
	views := make([]models.LoanView, 0, len(loans))
	for _, loan := range loans {
		member, book, err := refs.memberAndBook(ctx, loan.MemberID, loan.BookID)
		if errors.Is(err, store.ErrNotFound) {
			s.log.WarnContext(ctx, "pominięto wypożyczenie z brakującym powiązaniem", "loan_id", loan.ID)
			continue
		}
		if err != nil {
			return nil, &UnexpectedError{Op: "pobieranie powiązań wypożyczenia", Err: err}
		}
		views = append(views, models.NewLoanView(loan, member, book))
	}
	return views, nil
}

// GetLoan zwraca widok pojedynczego wypożyczenia
func (s *Service) GetLoan(ctx context.Context, id string) (*models.LoanView, error) {
	loan, err := s.store.GetLoan(ctx, id)
	if err != nil {
		return nil, storeError("pobieranie wypożyczenia", store.EntityLoan, id, err)
	}
	member, book, err := newRefCache(s.store).memberAndBook(ctx, loan.MemberID, loan.BookID)
	if err != nil {
		return nil, storeError("pobieranie powiązań wypożyczenia", store.EntityLoan, id, err)
	}
	view := models.NewLoanView(loan, member, book)
	return &view, nil
}

// DeleteLoan usuwa wypożyczenie
func (s *Service) DeleteLoan(ctx context.Context, id string) error {
	if err := s.store.DeleteLoan(ctx, id); err != nil {
		return storeError("usuwanie wypożyczenia", store.EntityLoan, id, err)
	}
	s.log.InfoContext(ctx, "wypożyczenie usunięte", "loan_id", id)
	return nil
}

// refCache zapamiętuje członków i książki w obrębie jednego wywołania listy
type refCache struct {
	st      store.Store
	members map[string]*models.Member
	books   map[string]*models.Book
}

func newRefCache(st store.Store) *refCache {
	return &refCache{
		st:      st,
		members: make(map[string]*models.Member),
		books:   make(map[string]*models.Book),
	}
}

func (c *refCache) memberAndBook(ctx context.Context, memberID, bookID string) (*models.Member, *models.Book, error) {
	member, ok := c.members[memberID]
	if !ok {
		m, err := c.st.GetMember(ctx, memberID)
		if err != nil {
			return nil, nil, err
		}
		c.members[memberID] = m
		member = m
	}

	book, ok := c.books[bookID]
	if !ok {
		b, err := c.st.GetBook(ctx, bookID)
		if err != nil {
			return nil, nil, err
		}
		c.books[bookID] = b
		book = b
	}

	return member, book, nil
}
