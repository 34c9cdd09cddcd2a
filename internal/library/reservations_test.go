package library

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-management-api/internal/models"
)

func TestReservationLifecycle(t *testing.T) {
	f := newFixture(t, "1.00")
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, ReservationInput{
		ReservationDate: models.NewDate(2024, time.February, 1),
		MemberID:        f.member.ID,
		BookID:          f.book.ID,
	})
	require.NoError(t, err)
	assert.False(t, r.NotificationSent)

	notified, err := f.svc.NotifyReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, notified.NotificationSent)

	again, err := f.svc.NotifyReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, again.NotificationSent)

	views, err := f.svc.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, f.member.ID, views[0].Member.ID)
	assert.Equal(t, f.book.Title, views[0].Book.Title)
	assert.True(t, views[0].NotificationSent)
}

func TestReservationDoesNotBlockLoan(t *testing.T) {
	f := newFixture(t, "1.00")
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, ReservationInput{
		ReservationDate: models.NewDate(2024, time.February, 1),
		MemberID:        f.member.ID,
		BookID:          f.book.ID,
	})
	require.NoError(t, err)

	f.issue(t, models.NewDate(2024, time.February, 2), models.NewDate(2024, time.February, 16))
}

func TestReservationValidation(t *testing.T) {
	f := newFixture(t, "1.00")
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, ReservationInput{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"book_id", "member_id", "reservation_date"}, ve.FieldNames())

	_, err = f.svc.CreateReservation(ctx, ReservationInput{
		ReservationDate: models.NewDate(2024, time.February, 1),
		MemberID:        f.member.ID,
		BookID:          "brak",
	})
	assert.True(t, IsNotFound(err))

	_, err = f.svc.NotifyReservation(ctx, "brak")
	assert.True(t, IsNotFound(err))
}
