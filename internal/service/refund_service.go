package service

import (
	"context"
	"fmt"
	"time"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/notification"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/pkg/payments"
	"github.com/retreathub/booking-service/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RefundService interface {
	// Refund issues a refund of amountCents against the booking. The amount
	// must be within (0, refundable]; a refund of the full refundable amount
	// also restores the booking's seats to the room.
	Refund(ctx context.Context, bookingID uint, amountCents int64, reason string) (*models.Payment, error)
	Refundable(ctx context.Context, bookingID uint) (int64, error)
}

type refundService struct {
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	roomRepo    repository.RoomRepository
	provider    payments.Provider
	dispatcher  notification.Dispatcher
	publisher   *rabbitmq.Publisher
	promoter    WaitlistPromoter
	logger      *zap.Logger
	now         func() time.Time
}

func NewRefundService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	roomRepo repository.RoomRepository,
	provider payments.Provider,
	dispatcher notification.Dispatcher,
	publisher *rabbitmq.Publisher,
	logger *zap.Logger,
) *refundService {
	return &refundService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		roomRepo:    roomRepo,
		provider:    provider,
		dispatcher:  dispatcher,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *refundService) SetPromoter(p WaitlistPromoter) {
	s.promoter = p
}

func (s *refundService) Refund(ctx context.Context, bookingID uint, amountCents int64, reason string) (*models.Payment, error) {
	var (
		booking   *models.Booking
		refund    *models.Payment
		freedRoom uint
	)

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return ErrBookingNotFound
		}

		pays, err := s.paymentRepo.FindByBookingID(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		refundable := refundableCents(pays)
		if amountCents <= 0 || amountCents > refundable {
			return fmt.Errorf("%w: %d not in (0, %d]", ErrInvalidRefundAmount, amountCents, refundable)
		}

		providerRefundID := ""
		if s.provider != nil {
			intentID := latestIntentID(pays)
			if intentID != "" {
				providerRefundID, err = s.provider.Refund(ctx, intentID, amountCents)
				if err != nil {
					return err
				}
			}
		}

		// Audit trail: a refund is a new negative row, never a mutation.
		refund = &models.Payment{
			BookingID:        booking.ID,
			AmountCents:      -amountCents,
			Status:           models.PaymentSucceeded,
			PaymentType:      models.PaymentTypeRefund,
			ProviderRefundID: providerRefundID,
		}
		if err := s.paymentRepo.Create(ctx, tx, refund); err != nil {
			return err
		}

		booking.BalanceDueCents = balanceDue(booking.TotalAmountCents, append(pays, *refund))

		full := amountCents == refundable
		if full {
			booking.PaymentStatus = models.PaymentStateRefunded
			if booking.SeatsReleasedAt == nil {
				room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, booking.RoomID)
				if err != nil {
					return err
				}
				if err := s.roomRepo.ReleaseSeats(ctx, tx, room, booking.GuestsCount); err != nil {
					return err
				}
				now := s.now()
				booking.SeatsReleasedAt = &now
				freedRoom = room.ID
			}
		}

		return s.bookingRepo.Save(ctx, tx, booking)
	})
	if err != nil {
		return nil, err
	}

	vars := map[string]string{
		"guest_name":     booking.GuestName,
		"booking_number": booking.BookingNumber,
		"amount":         euros(amountCents),
		"reason":         reason,
	}
	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypeRefundIssued,
		To:        booking.GuestEmail,
		Language:  booking.Language,
		BookingID: &booking.ID,
		PaymentID: &refund.ID,
		Vars:      vars,
	})
	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypeAdminRefund,
		BookingID: &booking.ID,
		PaymentID: &refund.ID,
		Vars:      vars,
	})
	if s.publisher != nil {
		if err := s.publisher.Publish("refund.issued", refund); err != nil {
			s.logger.Error("failed to publish refund event", zap.Error(err))
		}
	}
	if freedRoom != 0 && s.promoter != nil {
		s.promoter.PromoteForRoom(ctx, booking.RetreatID, freedRoom)
	}

	return refund, nil
}

func (s *refundService) Refundable(ctx context.Context, bookingID uint) (int64, error) {
	pays, err := s.paymentRepo.FindByBookingID(ctx, s.bookingRepo.GetDB(), bookingID)
	if err != nil {
		return 0, err
	}
	return refundableCents(pays), nil
}

// refundableCents = succeeded non-refund payments minus refund magnitudes.
func refundableCents(pays []models.Payment) int64 {
	var total int64
	for _, p := range pays {
		if p.Status != models.PaymentSucceeded {
			continue
		}
		// Refund rows are negative, so plain summation subtracts them.
		total += p.AmountCents
	}
	return total
}

// latestIntentID finds the most recent succeeded charge to refund against.
func latestIntentID(pays []models.Payment) string {
	for i := len(pays) - 1; i >= 0; i-- {
		p := pays[i]
		if p.Status == models.PaymentSucceeded && p.PaymentType != models.PaymentTypeRefund && p.ProcessorIntentID != "" {
			return p.ProcessorIntentID
		}
	}
	return ""
}
