package firebase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
)

func TestLoanDocConversion(t *testing.T) {
	loan := &models.Loan{
		IssuedDate: models.NewDate(2024, time.January, 1),
		DueDate:    models.NewDate(2024, time.January, 8),
		FineAmount: decimal.RequireFromString("2.5"),
		MemberID:   "m1",
		BookID:     "b1",
	}
	loan.Close(models.NewDate(2024, time.January, 10), decimal.RequireFromString("2.00"))

	d := toLoanDoc(loan)
	assert.Equal(t, "2.00", d.FineAmount)
	require.NotNil(t, d.ReturnDate)

	back, err := fromLoanDoc("l1", &d)
	require.NoError(t, err)
	assert.Equal(t, "l1", back.ID)
	assert.True(t, back.IsReturned)
	assert.True(t, back.FineAmount.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "2024-01-10", back.ReturnDate.String())
	assert.Equal(t, "2024-01-08", back.DueDate.String())
}

func TestBookDocRejectsBadFee(t *testing.T) {
	_, err := fromBookDoc("b1", &bookDoc{Title: "x", LoanFee: "abc"})
	assert.Error(t, err)

	book, err := fromBookDoc("b2", &bookDoc{Title: "x"})
	require.NoError(t, err)
	assert.True(t, book.LoanFee.IsZero())
}

func TestPaginate(t *testing.T) {
	items := []*int{new(int), new(int), new(int)}

	page, total, err := paginate(items, models.PageRequest{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)

	page, _, _ = paginate(items, models.PageRequest{Page: 5, PerPage: 2})
	assert.Empty(t, page)
}

// Testy na emulatorze uruchamiane tylko gdy ustawiono FIRESTORE_EMULATOR_HOST
func emulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST nie jest ustawiony")
	}

	client, err := firestore.NewClient(context.Background(), "library-test-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client)
}

func TestEmulatorUpdateLoanSingleWinner(t *testing.T) {
	s := emulatorStore(t)
	ctx := context.Background()

	member := &models.Member{FullName: "Jan Kowalski", Email: "jan@example.com", MembershipDate: models.NewDate(2024, 1, 1)}
	require.NoError(t, s.CreateMember(ctx, member))
	book := &models.Book{Title: "Lalka", Author: "Bolesław Prus", ISBN: "978-83-01", LoanFee: decimal.NewFromInt(1)}
	require.NoError(t, s.CreateBook(ctx, book))
	loan := &models.Loan{
		IssuedDate: models.NewDate(2024, 1, 1),
		DueDate:    models.NewDate(2024, 1, 8),
		MemberID:   member.ID,
		BookID:     book.ID,
	}
	require.NoError(t, s.CreateLoan(ctx, loan))

	errClosed := errors.New("closed")
	var wg sync.WaitGroup
	results := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.UpdateLoan(ctx, loan.ID, func(l *models.Loan) error {
				if l.IsReturned {
					return errClosed
				}
				l.Close(models.NewDate(2024, 1, 10), decimal.NewFromInt(2))
				return nil
			})
		}(i)
	}
	wg.Wait()

	var ok, closed int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errClosed):
			closed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, len(results)-1, closed)
}

func TestEmulatorDeleteMemberCascades(t *testing.T) {
	s := emulatorStore(t)
	ctx := context.Background()

	member := &models.Member{FullName: "Anna Nowak", Email: "anna@example.com", MembershipDate: models.NewDate(2024, 1, 1)}
	require.NoError(t, s.CreateMember(ctx, member))
	book := &models.Book{Title: "Quo vadis", Author: "Henryk Sienkiewicz", ISBN: "978-83-02"}
	require.NoError(t, s.CreateBook(ctx, book))
	loan := &models.Loan{IssuedDate: models.NewDate(2024, 1, 1), DueDate: models.NewDate(2024, 1, 2), MemberID: member.ID, BookID: book.ID}
	require.NoError(t, s.CreateLoan(ctx, loan))

	require.NoError(t, s.DeleteMember(ctx, member.ID))

	_, err := s.GetLoan(ctx, loan.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	dup := &models.Book{Title: "Inna", Author: "Ktoś", ISBN: "978-83-02"}
	assert.ErrorIs(t, s.CreateBook(ctx, dup), store.ErrDuplicate)
}
