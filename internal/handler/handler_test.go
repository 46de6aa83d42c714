package handler

import (
	"context"
	"time"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/internal/service"
)

// Function-field mocks: each test assigns only the methods it expects to be
// called.

type mockBookingService struct {
	createFn     func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error)
	confirmFn    func(ctx context.Context, id uint) (*models.Booking, error)
	completeFn   func(ctx context.Context, id uint) (*models.Booking, error)
	cancelFn     func(ctx context.Context, id uint, reason string, sendEmail bool) (*models.Booking, error)
	assignRoomFn func(ctx context.Context, bookingID, roomID uint) (*models.Booking, error)
	getFn        func(ctx context.Context, id uint) (*models.Booking, error)
	listFn       func(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
	return m.createFn(ctx, in)
}

func (m *mockBookingService) Confirm(ctx context.Context, id uint) (*models.Booking, error) {
	return m.confirmFn(ctx, id)
}

func (m *mockBookingService) Complete(ctx context.Context, id uint) (*models.Booking, error) {
	return m.completeFn(ctx, id)
}

func (m *mockBookingService) Cancel(ctx context.Context, id uint, reason string, sendEmail bool) (*models.Booking, error) {
	return m.cancelFn(ctx, id, reason, sendEmail)
}

func (m *mockBookingService) AssignRoom(ctx context.Context, bookingID, roomID uint) (*models.Booking, error) {
	return m.assignRoomFn(ctx, bookingID, roomID)
}

func (m *mockBookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return m.getFn(ctx, id)
}

func (m *mockBookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	return m.listFn(ctx, filter)
}

type mockPaymentService struct {
	handleEventFn     func(ctx context.Context, ev service.ProcessorEvent) (bool, error)
	restoreScheduleFn func(ctx context.Context, bookingID uint, shiftDays int) error
	listPaymentsFn    func(ctx context.Context, bookingID uint) ([]models.Payment, error)
	listScheduleFn    func(ctx context.Context, bookingID uint) ([]models.PaymentScheduleEntry, error)
}

func (m *mockPaymentService) HandleProcessorEvent(ctx context.Context, ev service.ProcessorEvent) (bool, error) {
	return m.handleEventFn(ctx, ev)
}

func (m *mockPaymentService) EscalateOverdue(ctx context.Context, now time.Time) {}

func (m *mockPaymentService) RestoreSchedule(ctx context.Context, bookingID uint, shiftDays int) error {
	return m.restoreScheduleFn(ctx, bookingID, shiftDays)
}

func (m *mockPaymentService) ListPayments(ctx context.Context, bookingID uint) ([]models.Payment, error) {
	return m.listPaymentsFn(ctx, bookingID)
}

func (m *mockPaymentService) ListSchedule(ctx context.Context, bookingID uint) ([]models.PaymentScheduleEntry, error) {
	return m.listScheduleFn(ctx, bookingID)
}

type mockRefundService struct {
	refundFn func(ctx context.Context, bookingID uint, amountCents int64, reason string) (*models.Payment, error)
}

func (m *mockRefundService) Refund(ctx context.Context, bookingID uint, amountCents int64, reason string) (*models.Payment, error) {
	return m.refundFn(ctx, bookingID, amountCents, reason)
}

func (m *mockRefundService) Refundable(ctx context.Context, bookingID uint) (int64, error) {
	return 0, nil
}

type mockWaitlistService struct {
	joinFn    func(ctx context.Context, in service.JoinWaitlistInput) (*models.WaitlistEntry, error)
	acceptFn  func(ctx context.Context, token string) (*models.Booking, error)
	declineFn func(ctx context.Context, token string) (*models.WaitlistEntry, error)
}

func (m *mockWaitlistService) Join(ctx context.Context, in service.JoinWaitlistInput) (*models.WaitlistEntry, error) {
	return m.joinFn(ctx, in)
}

func (m *mockWaitlistService) Accept(ctx context.Context, token string) (*models.Booking, error) {
	return m.acceptFn(ctx, token)
}

func (m *mockWaitlistService) Decline(ctx context.Context, token string) (*models.WaitlistEntry, error) {
	return m.declineFn(ctx, token)
}

func (m *mockWaitlistService) ExpireOffers(ctx context.Context, now time.Time) {}

func (m *mockWaitlistService) PromoteForRoom(ctx context.Context, retreatID, roomID uint) {}

func (m *mockWaitlistService) PromoteForRetreat(ctx context.Context, retreatID uint) {}
