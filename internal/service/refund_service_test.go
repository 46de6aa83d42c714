package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/notification"
)

func TestRefundRejectsAmountsOutsideBounds(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 4)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), successEvent("evt_s", booking, 30_000))
	require.NoError(t, err)

	_, err = env.refundSvc.Refund(context.Background(), booking.ID, 0, "zero")
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)

	_, err = env.refundSvc.Refund(context.Background(), booking.ID, -500, "negative")
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)

	_, err = env.refundSvc.Refund(context.Background(), booking.ID, 30_001, "over")
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)
}

func TestPartialRefundKeepsSeats(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 2)
	booking := env.createBooking(t, retreat.ID, room.ID, 2)

	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), successEvent("evt_s", booking, 60_000))
	require.NoError(t, err)

	refund, err := env.refundSvc.Refund(context.Background(), booking.ID, 20_000, "goodwill")
	require.NoError(t, err)
	assert.Equal(t, int64(-20_000), refund.AmountCents)
	assert.Equal(t, models.PaymentTypeRefund, refund.PaymentType)

	reloaded := env.reloadBooking(t, booking.ID)
	assert.NotEqual(t, models.PaymentStateRefunded, reloaded.PaymentStatus)
	assert.Nil(t, reloaded.SeatsReleasedAt)
	assert.Equal(t, int64(160_000), reloaded.BalanceDueCents)
	assert.Equal(t, 0, env.reloadRoom(t, room.ID).Available)

	remaining, err := env.refundSvc.Refundable(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), remaining)
}

func TestFullRefundReleasesSeatsAndMarksRefunded(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 2)
	booking := env.createBooking(t, retreat.ID, room.ID, 2)
	assert.True(t, env.reloadRoom(t, room.ID).IsSoldOut)

	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), successEvent("evt_s", booking, 60_000))
	require.NoError(t, err)

	_, err = env.refundSvc.Refund(context.Background(), booking.ID, 60_000, "cancelled retreat")
	require.NoError(t, err)

	reloaded := env.reloadBooking(t, booking.ID)
	assert.Equal(t, models.PaymentStateRefunded, reloaded.PaymentStatus)
	assert.NotNil(t, reloaded.SeatsReleasedAt)

	freshRoom := env.reloadRoom(t, room.ID)
	assert.Equal(t, 2, freshRoom.Available)
	assert.False(t, freshRoom.IsSoldOut)

	assert.Len(t, env.dispatcher.byType(notification.TypeRefundIssued), 1)
	assert.Len(t, env.dispatcher.byType(notification.TypeAdminRefund), 1)
}

func TestRefundAfterCancelDoesNotDoubleReleaseSeats(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 2)
	booking := env.createBooking(t, retreat.ID, room.ID, 2)

	_, err := env.paymentSvc.HandleProcessorEvent(context.Background(), successEvent("evt_s", booking, 60_000))
	require.NoError(t, err)

	_, err = env.bookingSvc.Cancel(context.Background(), booking.ID, "guest request", false)
	require.NoError(t, err)
	assert.Equal(t, 2, env.reloadRoom(t, room.ID).Available)

	// Another booking takes the freed seat before the refund is issued.
	other := env.createBooking(t, retreat.ID, room.ID, 1)
	assert.Equal(t, 1, env.reloadRoom(t, room.ID).Available)

	_, err = env.refundSvc.Refund(context.Background(), booking.ID, 60_000, "post-cancel refund")
	require.NoError(t, err)

	// The refund must not inflate availability a second time.
	assert.Equal(t, 1, env.reloadRoom(t, room.ID).Available)
	assert.Equal(t, models.StatusPending, env.reloadBooking(t, other.ID).Status)
}
