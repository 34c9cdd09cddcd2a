package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

// loanDoc to postać wypożyczenia w Firestore
type loanDoc struct {
	IssuedDate time.Time  `firestore:"issued_date"`
	DueDate    time.Time  `firestore:"due_date"`
	ReturnDate *time.Time `firestore:"return_date"`
	IsReturned bool       `firestore:"is_returned"`
	FineAmount string     `firestore:"fine_amount"`
	MemberID   string     `firestore:"member_id"`
	BookID     string     `firestore:"book_id"`
	CreatedAt  time.Time  `firestore:"created_at"`
	UpdatedAt  time.Time  `firestore:"updated_at"`
}

func toLoanDoc(l *models.Loan) loanDoc {
	d := loanDoc{
		IssuedDate: l.IssuedDate.Time,
		DueDate:    l.DueDate.Time,
		IsReturned: l.IsReturned,
		FineAmount: l.FineAmount.StringFixed(2),
		MemberID:   l.MemberID,
		BookID:     l.BookID,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
	if l.ReturnDate != nil {
		t := l.ReturnDate.Time
		d.ReturnDate = &t
	}
	return d
}

func fromLoanDoc(id string, d *loanDoc) (*models.Loan, error) {
	fine, err := parseMoney(d.FineAmount)
	if err != nil {
		return nil, fmt.Errorf("wypożyczenie %s: nieprawidłowa kara: %w", id, err)
	}
	loan := &models.Loan{
		ID:         id,
		IssuedDate: models.DateOf(d.IssuedDate),
		DueDate:    models.DateOf(d.DueDate),
		IsReturned: d.IsReturned,
		FineAmount: fine,
		MemberID:   d.MemberID,
		BookID:     d.BookID,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.ReturnDate != nil {
		loan.ReturnDate = models.DateOf(*d.ReturnDate).Ptr()
	}
	return loan, nil
}

// CreateLoan zapisuje wypożyczenie, sprawdzając w transakcji istnienie członka i książki
func (s *Store) CreateLoan(ctx context.Context, loan *models.Loan) error {
	memberRef, err := s.ref(membersCollection, loan.MemberID)
	if err != nil {
		return fmt.Errorf("członek %q: %w", loan.MemberID, err)
	}
	bookRef, err := s.ref(booksCollection, loan.BookID)
	if err != nil {
		return fmt.Errorf("książka %q: %w", loan.BookID, err)
	}

	now := s.now()
	loan.CreatedAt = now
	loan.UpdatedAt = now

	ref := s.fs.Collection(loansCollection).NewDoc()
	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := txRequire(tx, memberRef, "członek"); err != nil {
			return err
		}
		if err := txRequire(tx, bookRef, "książka"); err != nil {
			return err
		}
		return tx.Create(ref, toLoanDoc(loan))
	})
	if err != nil {
		return fmt.Errorf("błąd zapisywania wypożyczenia: %w", err)
	}

	loan.ID = ref.ID
	return nil
}

// GetLoan pobiera wypożyczenie po ID
func (s *Store) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	ref, err := s.ref(loansCollection, id)
	if err != nil {
		return nil, err
	}
	d, err := getDoc[loanDoc](ctx, ref)
	if err != nil {
		return nil, err
	}
	return fromLoanDoc(id, d)
}

// ListLoans zwraca wszystkie wypożyczenia w kolejności dodania
func (s *Store) ListLoans(ctx context.Context) ([]*models.Loan, error) {
	loans, err := listDocs(ctx, s.byCreation(loansCollection), fromLoanDoc)
	if err != nil {
		return nil, fmt.Errorf("błąd pobierania wypożyczeń: %w", err)
	}
	return loans, nil
}

// UpdateLoan wykonuje odczyt-modyfikację-zapis wypożyczenia w jednej transakcji Firestore.
// Przy konflikcie Firestore ponawia transakcję, więc fn widzi zawsze aktualny stan.
func (s *Store) UpdateLoan(ctx context.Context, id string, fn store.LoanMutator) (*models.Loan, error) {
	ref, err := s.ref(loansCollection, id)
	if err != nil {
		return nil, err
	}

	var updated *models.Loan
	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		d, err := txGetDoc[loanDoc](tx, ref)
		if err != nil {
			return err
		}
		loan, err := fromLoanDoc(id, d)
		if err != nil {
			return err
		}
		if err := fn(loan); err != nil {
			return err
		}

		loan.ID = id
		loan.UpdatedAt = s.now()
		updated = loan
		return tx.Set(ref, toLoanDoc(loan))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteLoan usuwa wypożyczenie
func (s *Store) DeleteLoan(ctx context.Context, id string) error {
	ref, err := s.ref(loansCollection, id)
	if err != nil {
		return err
	}

	err = s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := txGetDoc[loanDoc](tx, ref); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("błąd usuwania wypożyczenia: %w", err)
	}
	return nil
}
