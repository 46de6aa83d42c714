// Package lifecycle is the booking status state machine. All status changes
// go through Transition; handlers and services never assign Booking.Status
// directly.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/retreathub/booking-service/internal/models"
)

var ErrInvalidTransition = errors.New("invalid booking status transition")

// Result describes the outcome of a transition request.
type Result struct {
	From models.BookingStatus
	To   models.BookingStatus
	// Changed is false for idempotent same-state requests.
	Changed bool
}

// Transition validates and applies a status change on the booking.
// Requesting the current status is a no-op, not an error. retreatEnd gates
// confirmed → completed; now is injected for testability.
func Transition(b *models.Booking, to models.BookingStatus, retreatEnd, now time.Time) (Result, error) {
	from := b.Status
	if from == to {
		return Result{From: from, To: to, Changed: false}, nil
	}

	switch {
	case from == models.StatusPending && to == models.StatusConfirmed:
		if b.PaymentStatus == models.PaymentStateUnpaid {
			return Result{}, fmt.Errorf("%w: cannot confirm before a deposit is received", ErrInvalidTransition)
		}
	case from == models.StatusConfirmed && to == models.StatusCompleted:
		if now.Before(retreatEnd) {
			return Result{}, fmt.Errorf("%w: retreat has not ended yet", ErrInvalidTransition)
		}
	case to == models.StatusCancelled && (from == models.StatusPending || from == models.StatusConfirmed):
		// Always allowed; refunds are a separate explicit operation.
	default:
		return Result{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	b.Status = to
	return Result{From: from, To: to, Changed: true}, nil
}
