package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/notification"
	"github.com/retreathub/booking-service/internal/schedule"
)

func successEvent(id string, booking *models.Booking, amountCents int64) ProcessorEvent {
	return ProcessorEvent{
		EventID:       id,
		EventType:     EventPaymentSucceeded,
		IntentID:      "pi_" + id,
		BookingNumber: booking.BookingNumber,
		AmountCents:   amountCents,
	}
}

func failureEvent(id string, booking *models.Booking, amountCents int64) ProcessorEvent {
	return ProcessorEvent{
		EventID:       id,
		EventType:     EventPaymentFailed,
		IntentID:      "pi_" + id,
		BookingNumber: booking.BookingNumber,
		AmountCents:   amountCents,
	}
}

func TestDepositPaymentConfirmsBooking(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 4)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	dup, err := env.paymentSvc.HandleProcessorEvent(context.Background(), successEvent("evt_1", booking, 30_000))
	require.NoError(t, err)
	assert.False(t, dup)

	reloaded := env.reloadBooking(t, booking.ID)
	assert.Equal(t, models.PaymentStateDeposit, reloaded.PaymentStatus)
	assert.Equal(t, int64(70_000), reloaded.BalanceDueCents)
	assert.Equal(t, models.StatusConfirmed, reloaded.Status)

	entries, err := env.paymentSvc.ListSchedule(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.NotNil(t, entries[0].PaidAt)
	assert.Nil(t, entries[1].PaidAt)

	payments, err := env.paymentSvc.ListPayments(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentTypeDeposit, payments[0].PaymentType)

	assert.Len(t, env.dispatcher.byType(notification.TypePaymentReceived), 1)
	assert.Len(t, env.dispatcher.byType(notification.TypeBookingConfirmed), 1)
}

func TestReplayedWebhookEventIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 4)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	ev := successEvent("evt_replay", booking, 30_000)
	dup, err := env.paymentSvc.HandleProcessorEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = env.paymentSvc.HandleProcessorEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, dup)

	payments, err := env.paymentSvc.ListPayments(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, int64(70_000), env.reloadBooking(t, booking.ID).BalanceDueCents)
}

func TestFullPaymentClearsBalanceAndGrace(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 4)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), failureEvent("evt_f1", booking, 30_000))
	require.NoError(t, err)
	require.NotNil(t, env.reloadBooking(t, booking.ID).GraceDeadline)

	for i, amount := range []int64{30_000, 35_000, 35_000} {
		_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), successEvent(fmt.Sprintf("evt_s%d", i), booking, amount))
		require.NoError(t, err)
	}

	reloaded := env.reloadBooking(t, booking.ID)
	assert.Equal(t, int64(0), reloaded.BalanceDueCents)
	assert.Equal(t, models.PaymentStatePaid, reloaded.PaymentStatus)
	assert.Nil(t, reloaded.GraceDeadline)

	entries, err := env.paymentSvc.ListSchedule(context.Background(), booking.ID)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotNil(t, e.PaidAt, "entry %d should be paid", e.Number)
	}
}

func TestFailureStartsGraceClockOnce(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 4)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.paymentSvc.now = func() time.Time { return base }

	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), failureEvent("evt_f1", booking, 30_000))
	require.NoError(t, err)

	reloaded := env.reloadBooking(t, booking.ID)
	require.NotNil(t, reloaded.GraceDeadline)
	assert.True(t, reloaded.GraceDeadline.Equal(base.Add(schedule.GracePeriod)))

	// A later failure of the same installment does not reset the clock.
	env.paymentSvc.now = func() time.Time { return base.Add(48 * time.Hour) }
	_, err = env.paymentSvc.HandleProcessorEvent(context.Background(), failureEvent("evt_f2", booking, 30_000))
	require.NoError(t, err)

	again := env.reloadBooking(t, booking.ID)
	assert.True(t, again.GraceDeadline.Equal(base.Add(schedule.GracePeriod)))

	assert.Len(t, env.dispatcher.byType(notification.TypePaymentFailed), 2)
	assert.Len(t, env.dispatcher.byType(notification.TypeAdminPaymentFailed), 2)
}

func TestEscalationCadence(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 4)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.paymentSvc.now = func() time.Time { return base }
	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), failureEvent("evt_f", booking, 30_000))
	require.NoError(t, err)

	// Day 5: nothing yet.
	env.paymentSvc.EscalateOverdue(context.Background(), base.Add(5*24*time.Hour))
	assert.Empty(t, env.dispatcher.byType(notification.TypePaymentReminderThreeDay))

	// Day 11: the 3-day reminder fires, and only once.
	env.paymentSvc.EscalateOverdue(context.Background(), base.Add(11*24*time.Hour+time.Hour))
	env.paymentSvc.EscalateOverdue(context.Background(), base.Add(12*24*time.Hour))
	assert.Len(t, env.dispatcher.byType(notification.TypePaymentReminderThreeDay), 1)

	// Day 13: the 1-day reminder.
	env.paymentSvc.EscalateOverdue(context.Background(), base.Add(13*24*time.Hour+time.Hour))
	assert.Len(t, env.dispatcher.byType(notification.TypePaymentReminderOneDay), 1)

	// Deadline passed: auto-cancel, seats freed.
	env.paymentSvc.EscalateOverdue(context.Background(), base.Add(15*24*time.Hour))
	reloaded := env.reloadBooking(t, booking.ID)
	assert.Equal(t, models.StatusCancelled, reloaded.Status)
	assert.Equal(t, "payment deadline missed", reloaded.CancelReason)
	assert.Equal(t, 4, env.reloadRoom(t, room.ID).Available)
	assert.Len(t, env.dispatcher.byType(notification.TypeBookingCancelled), 1)
}

func TestRestoreScheduleClearsGraceAndShiftsDueDates(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 4)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), successEvent("evt_s", booking, 30_000))
	require.NoError(t, err)
	_, err = env.paymentSvc.HandleProcessorEvent(context.Background(), failureEvent("evt_f", booking, 35_000))
	require.NoError(t, err)

	before, err := env.paymentSvc.ListSchedule(context.Background(), booking.ID)
	require.NoError(t, err)

	require.NoError(t, env.paymentSvc.RestoreSchedule(context.Background(), booking.ID, 7))

	reloaded := env.reloadBooking(t, booking.ID)
	assert.Nil(t, reloaded.GraceDeadline)
	assert.Nil(t, reloaded.ThreeDayReminderAt)
	assert.Nil(t, reloaded.OneDayReminderAt)

	after, err := env.paymentSvc.ListSchedule(context.Background(), booking.ID)
	require.NoError(t, err)
	for i := range after {
		if before[i].PaidAt != nil {
			// Paid entries keep their dates.
			assert.True(t, after[i].DueDate.Equal(before[i].DueDate))
			continue
		}
		assert.True(t, after[i].DueDate.Equal(before[i].DueDate.Add(7*24*time.Hour)),
			"entry %d should shift by 7 days", after[i].Number)
	}
}
