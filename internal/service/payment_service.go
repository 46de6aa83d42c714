package service

import (
	"context"
	"fmt"
	"time"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/notification"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/internal/schedule"
	"github.com/retreathub/booking-service/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProcessorEvent is the normalized form of a payment-processor webhook
// delivery. EventID deduplicates at-least-once redelivery.
type ProcessorEvent struct {
	EventID       string
	EventType     string
	IntentID      string
	BookingNumber string
	AmountCents   int64
}

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

type PaymentService interface {
	// HandleProcessorEvent ingests a webhook event. A replayed event id is
	// reported as duplicate and treated as success.
	HandleProcessorEvent(ctx context.Context, ev ProcessorEvent) (duplicate bool, err error)
	// EscalateOverdue walks bookings inside their grace period: reminders at
	// 3 days and 1 day before the deadline, auto-cancel once it elapses.
	EscalateOverdue(ctx context.Context, now time.Time)
	// RestoreSchedule resolves a grace period manually: clears the deadline
	// and shifts unpaid due dates forward.
	RestoreSchedule(ctx context.Context, bookingID uint, shiftDays int) error
	ListPayments(ctx context.Context, bookingID uint) ([]models.Payment, error)
	ListSchedule(ctx context.Context, bookingID uint) ([]models.PaymentScheduleEntry, error)
}

type paymentService struct {
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	bookingSvc  BookingService
	dispatcher  notification.Dispatcher
	publisher   *rabbitmq.Publisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewPaymentService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	bookingSvc BookingService,
	dispatcher notification.Dispatcher,
	publisher *rabbitmq.Publisher,
	logger *zap.Logger,
) *paymentService {
	return &paymentService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		bookingSvc:  bookingSvc,
		dispatcher:  dispatcher,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *paymentService) HandleProcessorEvent(ctx context.Context, ev ProcessorEvent) (bool, error) {
	var (
		booking  *models.Booking
		payment  *models.Payment
		deadline time.Time
	)
	duplicate := false

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.paymentRepo.MarkEventProcessed(ctx, tx, ev.EventID, ev.EventType, s.now())
		if err != nil {
			return err
		}
		if !created {
			duplicate = true
			return nil
		}

		booking, err = s.bookingRepo.FindByNumber(ctx, tx, ev.BookingNumber)
		if err != nil {
			return ErrBookingNotFound
		}

		switch ev.EventType {
		case EventPaymentSucceeded:
			payment, err = s.applySuccess(ctx, tx, booking, ev)
		case EventPaymentFailed:
			payment, deadline, err = s.applyFailure(ctx, tx, booking, ev)
		default:
			s.logger.Info("ignoring processor event", zap.String("type", ev.EventType))
		}
		return err
	})
	if err != nil || duplicate || payment == nil {
		return duplicate, err
	}

	switch ev.EventType {
	case EventPaymentSucceeded:
		s.notifySuccess(ctx, booking, payment)
	case EventPaymentFailed:
		s.notifyFailure(ctx, booking, payment, deadline)
	}
	return false, nil
}

func (s *paymentService) applySuccess(ctx context.Context, tx *gorm.DB, booking *models.Booking, ev ProcessorEvent) (*models.Payment, error) {
	entries, err := s.paymentRepo.FindScheduleByBookingID(ctx, tx, booking.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	payType := models.PaymentTypeInstallment
	var due *time.Time
	for _, e := range entries {
		if e.PaidAt != nil {
			continue
		}
		if err := s.paymentRepo.MarkEntryPaid(ctx, tx, e.ID, now); err != nil {
			return nil, err
		}
		payType = entryPaymentType(e, len(entries))
		d := e.DueDate
		due = &d
		break
	}

	payment := &models.Payment{
		BookingID:         booking.ID,
		AmountCents:       ev.AmountCents,
		Status:            models.PaymentSucceeded,
		PaymentType:       payType,
		ScheduledDueDate:  due,
		ProcessorEventID:  ev.EventID,
		ProcessorIntentID: ev.IntentID,
	}
	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.FindByBookingID(ctx, tx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.BalanceDueCents = balanceDue(booking.TotalAmountCents, payments)
	if booking.BalanceDueCents == 0 {
		booking.PaymentStatus = models.PaymentStatePaid
	} else if booking.PaymentStatus == models.PaymentStateUnpaid {
		booking.PaymentStatus = models.PaymentStateDeposit
	}

	// A successful payment ends any running grace period.
	booking.GraceDeadline = nil
	booking.ThreeDayReminderAt = nil
	booking.OneDayReminderAt = nil

	if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) applyFailure(ctx context.Context, tx *gorm.DB, booking *models.Booking, ev ProcessorEvent) (*models.Payment, time.Time, error) {
	payment := &models.Payment{
		BookingID:         booking.ID,
		AmountCents:       ev.AmountCents,
		Status:            models.PaymentFailed,
		PaymentType:       models.PaymentTypeInstallment,
		ProcessorEventID:  ev.EventID,
		ProcessorIntentID: ev.IntentID,
	}
	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, time.Time{}, err
	}

	// The grace clock starts at the first failure and is not reset by
	// repeated failures of the same installment.
	if booking.GraceDeadline == nil {
		deadline := schedule.GraceDeadline(s.now())
		booking.GraceDeadline = &deadline
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return nil, time.Time{}, err
		}
	}
	return payment, *booking.GraceDeadline, nil
}

func (s *paymentService) notifySuccess(ctx context.Context, booking *models.Booking, payment *models.Payment) {
	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypePaymentReceived,
		To:        booking.GuestEmail,
		Language:  booking.Language,
		BookingID: &booking.ID,
		PaymentID: &payment.ID,
		Vars: map[string]string{
			"guest_name":     booking.GuestName,
			"booking_number": booking.BookingNumber,
			"amount":         euros(payment.AmountCents),
			"balance_due":    euros(booking.BalanceDueCents),
		},
	})
	s.publish("payment.succeeded", payment)

	// First successful payment auto-confirms a pending booking.
	if booking.Status == models.StatusPending {
		if _, err := s.bookingSvc.Confirm(ctx, booking.ID); err != nil {
			s.logger.Error("auto-confirm after payment failed", zap.Uint("booking_id", booking.ID), zap.Error(err))
		}
	}
}

func (s *paymentService) notifyFailure(ctx context.Context, booking *models.Booking, payment *models.Payment, deadline time.Time) {
	vars := map[string]string{
		"guest_name":     booking.GuestName,
		"booking_number": booking.BookingNumber,
		"amount":         euros(payment.AmountCents),
		"deadline":       deadline.Format("2 Jan 2006"),
	}
	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypePaymentFailed,
		To:        booking.GuestEmail,
		Language:  booking.Language,
		BookingID: &booking.ID,
		PaymentID: &payment.ID,
		Vars:      vars,
	})
	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypeAdminPaymentFailed,
		BookingID: &booking.ID,
		PaymentID: &payment.ID,
		Vars:      vars,
	})
	s.publish("payment.failed", payment)
}

func (s *paymentService) EscalateOverdue(ctx context.Context, now time.Time) {
	bookings, err := s.bookingRepo.FindInGracePeriod(ctx)
	if err != nil {
		s.logger.Error("grace period sweep failed", zap.Error(err))
		return
	}

	for i := range bookings {
		booking := &bookings[i]
		switch schedule.ReminderStage(*booking.GraceDeadline, now) {
		case schedule.StageThreeDay:
			if booking.ThreeDayReminderAt == nil {
				s.sendReminder(ctx, booking, notification.TypePaymentReminderThreeDay)
				booking.ThreeDayReminderAt = &now
				s.saveStamp(ctx, booking)
			}
		case schedule.StageOneDay:
			if booking.OneDayReminderAt == nil {
				s.sendReminder(ctx, booking, notification.TypePaymentReminderOneDay)
				booking.OneDayReminderAt = &now
				s.saveStamp(ctx, booking)
			}
		case schedule.StageExpired:
			if _, err := s.bookingSvc.Cancel(ctx, booking.ID, "payment deadline missed", true); err != nil {
				s.logger.Error("auto-cancel failed", zap.Uint("booking_id", booking.ID), zap.Error(err))
			}
		}
	}
}

func (s *paymentService) RestoreSchedule(ctx context.Context, bookingID uint, shiftDays int) error {
	return s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return ErrBookingNotFound
		}

		if shiftDays > 0 {
			shift := time.Duration(shiftDays) * 24 * time.Hour
			if err := s.paymentRepo.ShiftDueDates(ctx, tx, booking.ID, shift); err != nil {
				return err
			}
		}

		booking.GraceDeadline = nil
		booking.ThreeDayReminderAt = nil
		booking.OneDayReminderAt = nil
		return s.bookingRepo.Save(ctx, tx, booking)
	})
}

func (s *paymentService) ListPayments(ctx context.Context, bookingID uint) ([]models.Payment, error) {
	return s.paymentRepo.FindByBookingID(ctx, s.bookingRepo.GetDB(), bookingID)
}

func (s *paymentService) ListSchedule(ctx context.Context, bookingID uint) ([]models.PaymentScheduleEntry, error) {
	return s.paymentRepo.FindScheduleByBookingID(ctx, s.bookingRepo.GetDB(), bookingID)
}

func (s *paymentService) sendReminder(ctx context.Context, booking *models.Booking, t notification.EventType) {
	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      t,
		To:        booking.GuestEmail,
		Language:  booking.Language,
		BookingID: &booking.ID,
		Vars: map[string]string{
			"guest_name":     booking.GuestName,
			"booking_number": booking.BookingNumber,
			"deadline":       booking.GraceDeadline.Format("2 Jan 2006"),
		},
	})
}

func (s *paymentService) saveStamp(ctx context.Context, booking *models.Booking) {
	if err := s.bookingRepo.Save(ctx, s.bookingRepo.GetDB(), booking); err != nil {
		s.logger.Error("failed to stamp reminder", zap.Uint("booking_id", booking.ID), zap.Error(err))
	}
}

func (s *paymentService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Error("failed to publish lifecycle event", zap.String("key", routingKey), zap.Error(err))
	}
}

// balanceDue applies the ledger invariant: total minus all succeeded rows,
// where refund rows carry negative amounts and so add back.
func balanceDue(totalCents int64, payments []models.Payment) int64 {
	balance := totalCents
	for _, p := range payments {
		if p.Status == models.PaymentSucceeded {
			balance -= p.AmountCents
		}
	}
	return balance
}

func entryPaymentType(e models.PaymentScheduleEntry, total int) models.PaymentType {
	switch {
	case total == 1:
		return models.PaymentTypeFull
	case e.Number == 1:
		return models.PaymentTypeDeposit
	default:
		return models.PaymentTypeInstallment
	}
}

func euros(cents int64) string {
	if cents < 0 {
		cents = -cents
	}
	return fmt.Sprintf("€%.2f", float64(cents)/100)
}
