package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/retreathub/booking-service/config"
	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/notification"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/pkg/database"
)

// newTestDB opens a per-test in-memory database. The shared cache keeps the
// schema alive across pooled connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// dispatchRecorder captures notification events instead of sending email.
type dispatchRecorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (d *dispatchRecorder) Dispatch(_ context.Context, ev notification.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

func (d *dispatchRecorder) byType(t notification.EventType) []notification.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []notification.Event
	for _, ev := range d.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type testEnv struct {
	db         *gorm.DB
	dispatcher *dispatchRecorder

	retreatRepo  repository.RetreatRepository
	roomRepo     repository.RoomRepository
	bookingRepo  repository.BookingRepository
	paymentRepo  repository.PaymentRepository
	waitlistRepo repository.WaitlistRepository

	bookingSvc  *bookingService
	paymentSvc  *paymentService
	refundSvc   *refundService
	waitlistSvc *waitlistService
	retreatSvc  *retreatService
	feedbackSvc FeedbackService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	dispatcher := &dispatchRecorder{}
	log := zap.NewNop()
	cfg := &config.Config{
		PublicBaseURL:       "http://test.local",
		AdminEmail:          "admin@test.local",
		AdminNotifyBookings: true,
		AdminNotifyPayments: true,
		AdminNotifyWaitlist: true,
	}

	env := &testEnv{
		db:           db,
		dispatcher:   dispatcher,
		retreatRepo:  repository.NewRetreatRepository(db),
		roomRepo:     repository.NewRoomRepository(db),
		bookingRepo:  repository.NewBookingRepository(db),
		paymentRepo:  repository.NewPaymentRepository(db),
		waitlistRepo: repository.NewWaitlistRepository(db),
	}

	env.bookingSvc = NewBookingService(env.bookingRepo, env.retreatRepo, env.roomRepo, env.paymentRepo, dispatcher, nil, log)
	env.paymentSvc = NewPaymentService(env.bookingRepo, env.paymentRepo, env.bookingSvc, dispatcher, nil, log)
	env.refundSvc = NewRefundService(env.bookingRepo, env.paymentRepo, env.roomRepo, nil, dispatcher, nil, log)
	env.waitlistSvc = NewWaitlistService(env.waitlistRepo, env.retreatRepo, env.roomRepo, env.bookingSvc, dispatcher, cfg, log)
	env.retreatSvc = NewRetreatService(env.retreatRepo, env.roomRepo, env.bookingRepo, log)
	env.feedbackSvc = NewFeedbackService(repository.NewFeedbackRepository(db), env.bookingRepo)

	env.bookingSvc.SetPromoter(env.waitlistSvc)
	env.refundSvc.SetPromoter(env.waitlistSvc)
	env.retreatSvc.SetPromoter(env.waitlistSvc)

	return env
}

func (e *testEnv) createRetreat(t *testing.T, priceCents, depositCents int64, installments int) *models.Retreat {
	t.Helper()
	retreat := &models.Retreat{
		Title:            "Mountain Yoga Week",
		StartDate:        time.Now().Add(60 * 24 * time.Hour),
		EndDate:          time.Now().Add(67 * 24 * time.Hour),
		PriceCents:       priceCents,
		DepositCents:     depositCents,
		InstallmentCount: installments,
	}
	require.NoError(t, e.retreatRepo.Create(context.Background(), retreat))
	return retreat
}

func (e *testEnv) createRoom(t *testing.T, retreatID uint, capacity int) *models.Room {
	t.Helper()
	room := &models.Room{
		RetreatID: retreatID,
		Name:      fmt.Sprintf("Room %d", capacity),
		Capacity:  capacity,
		Available: capacity,
	}
	require.NoError(t, e.roomRepo.Create(context.Background(), room))
	return room
}

func (e *testEnv) createBooking(t *testing.T, retreatID, roomID uint, guests int) *models.Booking {
	t.Helper()
	booking, err := e.bookingSvc.CreateBooking(context.Background(), CreateBookingInput{
		RetreatID:   retreatID,
		RoomID:      roomID,
		GuestName:   "Anna Novak",
		GuestEmail:  "anna@example.com",
		GuestsCount: guests,
	})
	require.NoError(t, err)
	return booking
}

func (e *testEnv) reloadBooking(t *testing.T, id uint) *models.Booking {
	t.Helper()
	booking, err := e.bookingRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return booking
}

// markDepositPaid fast-forwards a booking past the confirm gate without going
// through the webhook path.
func (e *testEnv) markDepositPaid(t *testing.T, bookingID uint) {
	t.Helper()
	booking := e.reloadBooking(t, bookingID)
	booking.PaymentStatus = models.PaymentStateDeposit
	require.NoError(t, e.bookingRepo.Save(context.Background(), e.db, booking))
}

func (e *testEnv) reloadRoom(t *testing.T, id uint) *models.Room {
	t.Helper()
	room, err := e.roomRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return room
}
