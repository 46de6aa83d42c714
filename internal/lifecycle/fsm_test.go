package lifecycle

import (
	"testing"
	"time"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
)

var (
	retreatEnd = time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)
	beforeEnd  = retreatEnd.Add(-24 * time.Hour)
	afterEnd   = retreatEnd.Add(24 * time.Hour)
)

func booking(status models.BookingStatus, pay models.PaymentState) *models.Booking {
	return &models.Booking{Status: status, PaymentStatus: pay}
}

func TestTransition_ConfirmRequiresDeposit(t *testing.T) {
	b := booking(models.StatusPending, models.PaymentStateUnpaid)

	_, err := Transition(b, models.StatusConfirmed, retreatEnd, beforeEnd)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.StatusPending, b.Status)
}

func TestTransition_ConfirmWithDeposit(t *testing.T) {
	b := booking(models.StatusPending, models.PaymentStateDeposit)

	res, err := Transition(b, models.StatusConfirmed, retreatEnd, beforeEnd)

	assert.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, models.StatusConfirmed, b.Status)
}

func TestTransition_CompleteOnlyAfterRetreatEnd(t *testing.T) {
	b := booking(models.StatusConfirmed, models.PaymentStatePaid)

	_, err := Transition(b, models.StatusCompleted, retreatEnd, beforeEnd)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	res, err := Transition(b, models.StatusCompleted, retreatEnd, afterEnd)
	assert.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, models.StatusCompleted, b.Status)
}

func TestTransition_CancelFromPendingAndConfirmed(t *testing.T) {
	for _, from := range []models.BookingStatus{models.StatusPending, models.StatusConfirmed} {
		b := booking(from, models.PaymentStateDeposit)
		res, err := Transition(b, models.StatusCancelled, retreatEnd, beforeEnd)
		assert.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, models.StatusCancelled, b.Status)
	}
}

func TestTransition_CompletedIsTerminal(t *testing.T) {
	for _, to := range []models.BookingStatus{models.StatusPending, models.StatusConfirmed, models.StatusCancelled} {
		b := booking(models.StatusCompleted, models.PaymentStatePaid)
		_, err := Transition(b, to, retreatEnd, afterEnd)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestTransition_CancelledCannotBeConfirmed(t *testing.T) {
	b := booking(models.StatusCancelled, models.PaymentStateDeposit)

	_, err := Transition(b, models.StatusConfirmed, retreatEnd, beforeEnd)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_SameStateIsIdempotentNoOp(t *testing.T) {
	for _, status := range []models.BookingStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted,
	} {
		b := booking(status, models.PaymentStateUnpaid)
		res, err := Transition(b, status, retreatEnd, beforeEnd)
		assert.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, status, b.Status)
	}
}

func TestTransition_PendingCannotSkipToCompleted(t *testing.T) {
	b := booking(models.StatusPending, models.PaymentStatePaid)

	_, err := Transition(b, models.StatusCompleted, retreatEnd, afterEnd)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}
