package library

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-management-api/internal/models"
	"library-management-api/internal/store"
	"library-management-api/internal/store/memory"
)

type fixture struct {
	svc    *Service
	st     *memory.Store
	genre  *models.Genre
	user   *models.User
	member *models.Member
	book   *models.Book
}

func newFixture(t *testing.T, fee string) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	svc := New(st)

	genre, err := svc.CreateGenre(ctx, GenreInput{Name: "Fantasy"})
	require.NoError(t, err)
	user, err := svc.CreateUser(ctx, UserInput{Name: "Bibliotekarz", Email: "admin@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	member, err := svc.CreateMember(ctx, MemberInput{
		FullName:         "Jan Kowalski",
		Email:            "jan@example.com",
		MembershipDate:   models.NewDate(2023, time.June, 1),
		MembershipStatus: "active",
		UserID:           user.ID,
	})
	require.NoError(t, err)
	book, err := svc.CreateBook(ctx, BookInput{
		Title:           "Wiedźmin: Ostatnie życzenie",
		Author:          "Andrzej Sapkowski",
		ISBN:            "978-83-8032-464-8",
		PublishedYear:   1993,
		AvailableCopies: 3,
		LoanFee:         decimal.RequireFromString(fee),
		GenreID:         genre.ID,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, st: st, genre: genre, user: user, member: member, book: book}
}

func (f *fixture) issue(t *testing.T, issued, due models.Date) *models.Loan {
	t.Helper()
	loan, err := f.svc.IssueLoan(context.Background(), IssueLoanInput{
		IssuedDate: issued,
		DueDate:    due,
		MemberID:   f.member.ID,
		BookID:     f.book.ID,
	})
	require.NoError(t, err)
	return loan
}

func TestIssueLoanStartsOpen(t *testing.T) {
	f := newFixture(t, "1.00")

	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	assert.NotEmpty(t, loan.ID)
	assert.False(t, loan.IsReturned)
	assert.Nil(t, loan.ReturnDate)
	assert.True(t, loan.FineAmount.IsZero())
	assert.Equal(t, f.member.ID, loan.MemberID)
	assert.Equal(t, f.book.ID, loan.BookID)

	stored, err := f.st.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOpen())
}

func TestIssueLoanKeepsInitialFine(t *testing.T) {
	f := newFixture(t, "1.00")

	loan, err := f.svc.IssueLoan(context.Background(), IssueLoanInput{
		IssuedDate:  models.NewDate(2024, time.January, 1),
		DueDate:     models.NewDate(2024, time.January, 8),
		MemberID:    f.member.ID,
		BookID:      f.book.ID,
		InitialFine: decimal.RequireFromString("0.505"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.51", loan.FineAmount.StringFixed(2))
}

func TestIssueLoanValidation(t *testing.T) {
	f := newFixture(t, "1.00")
	issued := models.NewDate(2024, time.January, 1)

	tests := []struct {
		name   string
		in     IssueLoanInput
		fields []string
	}{
		{
			name:   "termin równy dacie wydania",
			in:     IssueLoanInput{IssuedDate: issued, DueDate: issued, MemberID: f.member.ID, BookID: f.book.ID},
			fields: []string{"due_date"},
		},
		{
			name:   "termin przed datą wydania",
			in:     IssueLoanInput{IssuedDate: issued, DueDate: issued.AddDays(-1), MemberID: f.member.ID, BookID: f.book.ID},
			fields: []string{"due_date"},
		},
		{
			name:   "puste żądanie",
			in:     IssueLoanInput{},
			fields: []string{"book_id", "due_date", "issued_date", "member_id"},
		},
		{
			name: "ujemna kara",
			in: IssueLoanInput{
				IssuedDate: issued, DueDate: issued.AddDays(7), MemberID: f.member.ID, BookID: f.book.ID,
				InitialFine: decimal.NewFromInt(-1),
			},
			fields: []string{"fine_amount"},
		},
		{
			name: "wypożyczenie oznaczone jako zwrócone",
			in: IssueLoanInput{
				IssuedDate: issued, DueDate: issued.AddDays(7), MemberID: f.member.ID, BookID: f.book.ID,
				IsReturned: true, ReturnDate: issued.AddDays(2).Ptr(),
			},
			fields: []string{"is_returned", "return_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.IssueLoan(context.Background(), tt.in)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.fields, ve.FieldNames())
		})
	}

	loans, err := f.svc.ListLoans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestIssueLoanMissingReferences(t *testing.T) {
	f := newFixture(t, "1.00")
	issued := models.NewDate(2024, time.January, 1)

	_, err := f.svc.IssueLoan(context.Background(), IssueLoanInput{
		IssuedDate: issued, DueDate: issued.AddDays(7), MemberID: "brak", BookID: f.book.ID,
	})
	assert.True(t, IsNotFound(err))

	_, err = f.svc.IssueLoan(context.Background(), IssueLoanInput{
		IssuedDate: issued, DueDate: issued.AddDays(7), MemberID: f.member.ID, BookID: "brak",
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "books", string(nf.Entity))
	assert.Equal(t, "brak", nf.ID)
}

func TestReturnLoanScenario(t *testing.T) {
	f := newFixture(t, "1.00")
	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	returned, err := f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, 10))
	require.NoError(t, err)

	assert.True(t, returned.IsReturned)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, "2024-01-10", returned.ReturnDate.String())
	assert.Equal(t, "2.00", returned.FineAmount.StringFixed(2))
}

func TestReturnLoanOneDayLate(t *testing.T) {
	f := newFixture(t, "2.50")
	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	returned, err := f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, 9))
	require.NoError(t, err)
	assert.Equal(t, "2.50", returned.FineAmount.StringFixed(2))
}

func TestReturnLoanOnDueDateIsFree(t *testing.T) {
	f := newFixture(t, "2.50")
	due := models.NewDate(2024, time.January, 8)
	loan := f.issue(t, models.NewDate(2024, time.January, 1), due)

	returned, err := f.svc.ReturnLoan(context.Background(), loan.ID, due)
	require.NoError(t, err)
	assert.True(t, returned.FineAmount.IsZero())
}

func TestReturnLoanOverwritesInitialFine(t *testing.T) {
	f := newFixture(t, "1.00")
	loan, err := f.svc.IssueLoan(context.Background(), IssueLoanInput{
		IssuedDate:  models.NewDate(2024, time.January, 1),
		DueDate:     models.NewDate(2024, time.January, 8),
		MemberID:    f.member.ID,
		BookID:      f.book.ID,
		InitialFine: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	returned, err := f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, 3))
	require.NoError(t, err)
	assert.True(t, returned.FineAmount.IsZero())
}

func TestReturnLoanUsesCurrentBookFee(t *testing.T) {
	f := newFixture(t, "1.00")
	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	_, err := f.svc.UpdateBook(context.Background(), f.book.ID, BookInput{
		Title:           f.book.Title,
		Author:          f.book.Author,
		ISBN:            f.book.ISBN,
		PublishedYear:   f.book.PublishedYear,
		AvailableCopies: f.book.AvailableCopies,
		LoanFee:         decimal.RequireFromString("3.00"),
		GenreID:         f.book.GenreID,
	})
	require.NoError(t, err)

	returned, err := f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, 10))
	require.NoError(t, err)
	assert.Equal(t, "6.00", returned.FineAmount.StringFixed(2))
}

func TestReturnLoanBeforeIssueRejected(t *testing.T) {
	f := newFixture(t, "1.00")
	loan := f.issue(t, models.NewDate(2024, time.January, 5), models.NewDate(2024, time.January, 20))

	_, err := f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, 4))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("return_date"))

	_, err = f.svc.ReturnLoan(context.Background(), loan.ID, models.Date{})
	assert.True(t, IsValidation(err))

	stored, err := f.st.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOpen())
}

func TestReturnLoanNotFound(t *testing.T) {
	f := newFixture(t, "1.00")

	// Brak rekordu ma pierwszeństwo przed walidacją daty
	_, err := f.svc.ReturnLoan(context.Background(), "brak", models.Date{})
	assert.True(t, IsNotFound(err))
}

func TestReturnLoanTwiceConflicts(t *testing.T) {
	f := newFixture(t, "1.00")
	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	first, err := f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, 10))
	require.NoError(t, err)

	_, err = f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, 20))
	assert.True(t, IsConflict(err))

	stored, err := f.st.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, first.FineAmount.String(), stored.FineAmount.String())
	assert.Equal(t, "2024-01-10", stored.ReturnDate.String())
}

func TestConcurrentReturnSingleWinner(t *testing.T) {
	f := newFixture(t, "1.00")
	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := f.svc.ReturnLoan(context.Background(), loan.ID, models.NewDate(2024, time.January, day))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case IsConflict(err):
				conflicts++
			default:
				t.Errorf("nieoczekiwany błąd: %v", err)
			}
		}(9 + i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)

	stored, err := f.st.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReturnDate)
	expected := ComputeFine(stored.DueDate, *stored.ReturnDate, f.book.LoanFee)
	assert.True(t, expected.Equal(stored.FineAmount))
}

func TestListLoansEmbedsSummaries(t *testing.T) {
	f := newFixture(t, "1.50")
	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	views, err := f.svc.ListLoans(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, loan.ID, v.ID)
	assert.Equal(t, models.MemberSummary{ID: f.member.ID, FullName: "Jan Kowalski", Email: "jan@example.com"}, v.Member)
	assert.Equal(t, f.book.ID, v.Book.ID)
	assert.Equal(t, "Andrzej Sapkowski", v.Book.Author)
	assert.Equal(t, "1.50", v.Book.LoanFee.StringFixed(2))

	single, err := f.svc.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Member, single.Member)
}

func TestDeleteLoan(t *testing.T) {
	f := newFixture(t, "1.00")
	loan := f.issue(t, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 8))

	require.NoError(t, f.svc.DeleteLoan(context.Background(), loan.ID))
	assert.True(t, IsNotFound(f.svc.DeleteLoan(context.Background(), loan.ID)))

	_, err := f.svc.GetLoan(context.Background(), loan.ID)
	assert.True(t, IsNotFound(err))
}

// vanishingStore usuwa wskazany rekord tuż przed zapisem wypożyczenia lub rezerwacji
type vanishingStore struct {
	*memory.Store
	drop func(ctx context.Context) error
}

func (v *vanishingStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	if err := v.drop(ctx); err != nil {
		return err
	}
	return v.Store.CreateLoan(ctx, loan)
}

func (v *vanishingStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if err := v.drop(ctx); err != nil {
		return err
	}
	return v.Store.CreateReservation(ctx, r)
}

func TestCreateReportsReferenceRemovedMidway(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		entity store.Entity
		drop   func(f *fixture) func(ctx context.Context) error
		id     func(f *fixture) string
	}{
		{
			name:   "członek usunięty",
			entity: store.EntityMember,
			drop: func(f *fixture) func(ctx context.Context) error {
				return func(ctx context.Context) error { return f.st.DeleteMember(ctx, f.member.ID) }
			},
			id: func(f *fixture) string { return f.member.ID },
		},
		{
			name:   "książka usunięta",
			entity: store.EntityBook,
			drop: func(f *fixture) func(ctx context.Context) error {
				return func(ctx context.Context) error { return f.st.DeleteBook(ctx, f.book.ID) }
			},
			id: func(f *fixture) string { return f.book.ID },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/wypożyczenie", func(t *testing.T) {
			f := newFixture(t, "1.00")
			svc := New(&vanishingStore{Store: f.st, drop: tt.drop(f)})

			_, err := svc.IssueLoan(ctx, IssueLoanInput{
				IssuedDate: models.NewDate(2024, time.January, 1),
				DueDate:    models.NewDate(2024, time.January, 8),
				MemberID:   f.member.ID,
				BookID:     f.book.ID,
			})
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.entity, nf.Entity)
			assert.Equal(t, tt.id(f), nf.ID)
		})

		t.Run(tt.name+"/rezerwacja", func(t *testing.T) {
			f := newFixture(t, "1.00")
			svc := New(&vanishingStore{Store: f.st, drop: tt.drop(f)})

			_, err := svc.CreateReservation(ctx, ReservationInput{
				ReservationDate: models.NewDate(2024, time.February, 1),
				MemberID:        f.member.ID,
				BookID:          f.book.ID,
			})
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.entity, nf.Entity)
			assert.Equal(t, tt.id(f), nf.ID)
		})
	}
}
