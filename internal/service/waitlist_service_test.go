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

func (e *testEnv) joinWaitlist(t *testing.T, retreatID uint, roomID *uint, name string) *models.WaitlistEntry {
	t.Helper()
	entry, err := e.waitlistSvc.Join(context.Background(), JoinWaitlistInput{
		RetreatID:  retreatID,
		RoomID:     roomID,
		GuestName:  name,
		GuestEmail: fmt.Sprintf("%s@example.com", name),
	})
	require.NoError(t, err)
	return entry
}

func (e *testEnv) reloadEntry(t *testing.T, id uint) *models.WaitlistEntry {
	t.Helper()
	entry, err := e.waitlistRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return entry
}

func TestJoinAssignsSequentialPositions(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 1)

	for i, name := range []string{"ada", "ben", "cleo"} {
		entry := env.joinWaitlist(t, retreat.ID, &room.ID, name)
		assert.Equal(t, i+1, entry.Position)
		assert.Equal(t, models.WaitlistWaiting, entry.Status)
		assert.NotEmpty(t, entry.ActionToken)
	}

	assert.Len(t, env.dispatcher.byType(notification.TypeWaitlistJoined), 3)
}

func TestCancelPromotesHeadOfWaitlist(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 1)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	first := env.joinWaitlist(t, retreat.ID, &room.ID, "ada")
	second := env.joinWaitlist(t, retreat.ID, &room.ID, "ben")

	_, err := env.bookingSvc.Cancel(context.Background(), booking.ID, "guest request", false)
	require.NoError(t, err)

	offered := env.reloadEntry(t, first.ID)
	assert.Equal(t, models.WaitlistOffered, offered.Status)
	require.NotNil(t, offered.OfferExpiresAt)
	assert.Equal(t, models.WaitlistWaiting, env.reloadEntry(t, second.ID).Status)

	offers := env.dispatcher.byType(notification.TypeWaitlistOffer)
	require.Len(t, offers, 1)
	assert.Contains(t, offers[0].Vars["accept_link"], first.ActionToken)
	assert.Contains(t, offers[0].Vars["decline_link"], "/decline")
}

func TestAcceptCreatesBookingAndFinalizesEntry(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 1)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)
	entry := env.joinWaitlist(t, retreat.ID, &room.ID, "ada")

	_, err := env.bookingSvc.Cancel(context.Background(), booking.ID, "guest request", false)
	require.NoError(t, err)

	promoted, err := env.waitlistSvc.Accept(context.Background(), entry.ActionToken)
	require.NoError(t, err)
	assert.Equal(t, "ada", promoted.GuestName)
	assert.Equal(t, room.ID, promoted.RoomID)

	assert.Equal(t, models.WaitlistAccepted, env.reloadEntry(t, entry.ID).Status)
	assert.Equal(t, 0, env.reloadRoom(t, room.ID).Available)
	assert.Len(t, env.dispatcher.byType(notification.TypeAdminWaitlistAccepted), 1)
}

func TestAcceptRejectsExpiredOffer(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 1)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)
	entry := env.joinWaitlist(t, retreat.ID, &room.ID, "ada")

	_, err := env.bookingSvc.Cancel(context.Background(), booking.ID, "guest request", false)
	require.NoError(t, err)

	env.waitlistSvc.now = func() time.Time { return time.Now().Add(schedule.OfferWindow + time.Hour) }
	_, err = env.waitlistSvc.Accept(context.Background(), entry.ActionToken)
	assert.ErrorIs(t, err, ErrOfferNotActive)
}

func TestDeclinePromotesNextInLine(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 1)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	first := env.joinWaitlist(t, retreat.ID, &room.ID, "ada")
	second := env.joinWaitlist(t, retreat.ID, &room.ID, "ben")

	_, err := env.bookingSvc.Cancel(context.Background(), booking.ID, "guest request", false)
	require.NoError(t, err)

	declined, err := env.waitlistSvc.Decline(context.Background(), first.ActionToken)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistDeclined, declined.Status)

	assert.Equal(t, models.WaitlistOffered, env.reloadEntry(t, second.ID).Status)
	assert.Len(t, env.dispatcher.byType(notification.TypeWaitlistOffer), 2)
}

func TestExpireOffersPromotesNextInLine(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 1)
	booking := env.createBooking(t, retreat.ID, room.ID, 1)

	first := env.joinWaitlist(t, retreat.ID, &room.ID, "ada")
	second := env.joinWaitlist(t, retreat.ID, &room.ID, "ben")

	_, err := env.bookingSvc.Cancel(context.Background(), booking.ID, "guest request", false)
	require.NoError(t, err)
	require.Equal(t, models.WaitlistOffered, env.reloadEntry(t, first.ID).Status)

	env.waitlistSvc.ExpireOffers(context.Background(), time.Now().Add(schedule.OfferWindow+time.Hour))

	assert.Equal(t, models.WaitlistExpired, env.reloadEntry(t, first.ID).Status)
	assert.Equal(t, models.WaitlistOffered, env.reloadEntry(t, second.ID).Status)
}

func TestCapacityIncreaseTriggersPromotion(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 1)
	env.createBooking(t, retreat.ID, room.ID, 1)
	entry := env.joinWaitlist(t, retreat.ID, &room.ID, "ada")

	updated, err := env.retreatSvc.UpdateRoomCapacity(context.Background(), room.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Available)

	assert.Equal(t, models.WaitlistOffered, env.reloadEntry(t, entry.ID).Status)
}

func TestCapacityCannotDropBelowOccupancy(t *testing.T) {
	env := newTestEnv(t)
	retreat := env.createRetreat(t, 100_000, 30_000, 2)
	room := env.createRoom(t, retreat.ID, 3)
	env.createBooking(t, retreat.ID, room.ID, 2)

	_, err := env.retreatSvc.UpdateRoomCapacity(context.Background(), room.ID, 1)
	assert.Error(t, err)
	assert.Equal(t, 3, env.reloadRoom(t, room.ID).Capacity)
}
