// Package schedule computes payment schedules and grace-period deadlines.
// It is pure: persistence of the generated entries lives in the repository
// layer.
package schedule

import (
	"fmt"
	"time"
)

const (
	// StartBuffer is the minimum gap between the last installment due date
	// and the retreat start date.
	StartBuffer = 7 * 24 * time.Hour

	// GracePeriod is the window after a failed scheduled payment before the
	// booking is auto-cancelled.
	GracePeriod = 14 * 24 * time.Hour

	// OfferWindow is how long a promoted waitlist entry has to respond.
	OfferWindow = 72 * time.Hour
)

type Entry struct {
	Number      int
	AmountCents int64
	DueDate     time.Time
	Description string
}

// Build generates the ordered payment schedule for a booking. The deposit is
// entry #1, due immediately. The remaining balance is split into n
// installments spaced evenly between createdAt and the cutoff (retreat start
// minus StartBuffer). If the cutoff is not after createdAt the remainder
// collapses into a single final payment due immediately.
func Build(totalCents, depositCents int64, createdAt, retreatStart time.Time, installments int) []Entry {
	if depositCents > totalCents {
		depositCents = totalCents
	}

	remaining := totalCents - depositCents
	if remaining == 0 {
		return []Entry{{
			Number:      1,
			AmountCents: depositCents,
			DueDate:     createdAt,
			Description: "Full payment",
		}}
	}

	entries := []Entry{{
		Number:      1,
		AmountCents: depositCents,
		DueDate:     createdAt,
		Description: "Deposit",
	}}

	cutoff := retreatStart.Add(-StartBuffer)
	if !cutoff.After(createdAt) {
		// Too close to the retreat for installments.
		return append(entries, Entry{
			Number:      2,
			AmountCents: remaining,
			DueDate:     createdAt,
			Description: "Final payment",
		})
	}

	if installments < 1 {
		installments = 1
	}

	per := remaining / int64(installments)
	interval := cutoff.Sub(createdAt) / time.Duration(installments)
	for i := 1; i <= installments; i++ {
		amount := per
		if i == installments {
			// Cent remainder lands on the last installment.
			amount = remaining - per*int64(installments-1)
		}
		entries = append(entries, Entry{
			Number:      i + 1,
			AmountCents: amount,
			DueDate:     createdAt.Add(interval * time.Duration(i)),
			Description: fmt.Sprintf("Installment %d of %d", i, installments),
		})
	}

	return entries
}

// NextPending returns the first entry without a matching paid amount.
// Callers pass the persisted entries ordered by number; an entry counts as
// paid when its PaidAt marker is set, which the repository tracks.
func NextPending(entries []Entry, paidNumbers map[int]bool) (Entry, bool) {
	for _, e := range entries {
		if !paidNumbers[e.Number] {
			return e, true
		}
	}
	return Entry{}, false
}

// GraceDeadline computes the auto-cancel deadline after a failed payment.
func GraceDeadline(now time.Time) time.Time {
	return now.Add(GracePeriod)
}

// DaysRemaining reports whole days left until the deadline, rounded up.
// A deadline in the past yields zero or a negative count.
func DaysRemaining(deadline, now time.Time) int {
	d := deadline.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}

type Stage int

const (
	StageNone Stage = iota
	StageThreeDay
	StageOneDay
	StageExpired
)

// ReminderStage selects the escalation step for a booking inside its grace
// period: "3 days left" from day 11, "1 day left" from day 13, auto-cancel
// once the deadline has elapsed.
func ReminderStage(deadline, now time.Time) Stage {
	if !now.Before(deadline) {
		return StageExpired
	}
	switch days := DaysRemaining(deadline, now); {
	case days <= 1:
		return StageOneDay
	case days <= 3:
		return StageThreeDay
	default:
		return StageNone
	}
}
