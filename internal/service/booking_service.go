package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retreathub/booking-service/internal/lifecycle"
	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/notification"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/internal/schedule"
	"github.com/retreathub/booking-service/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WaitlistPromoter re-checks a freed seat for waiting guests. Implemented by
// the waitlist service; nil disables promotion (tests).
type WaitlistPromoter interface {
	PromoteForRoom(ctx context.Context, retreatID, roomID uint)
}

type CreateBookingInput struct {
	RetreatID   uint
	RoomID      uint
	GuestName   string
	GuestEmail  string
	GuestPhone  string
	GuestsCount int
	Language    string
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID uint) (*models.Booking, error)
	Complete(ctx context.Context, bookingID uint) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID uint, reason string, sendEmail bool) (*models.Booking, error)
	AssignRoom(ctx context.Context, bookingID, roomID uint) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	retreatRepo repository.RetreatRepository
	roomRepo    repository.RoomRepository
	paymentRepo repository.PaymentRepository
	dispatcher  notification.Dispatcher
	publisher   *rabbitmq.Publisher
	promoter    WaitlistPromoter
	logger      *zap.Logger
	now         func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	retreatRepo repository.RetreatRepository,
	roomRepo repository.RoomRepository,
	paymentRepo repository.PaymentRepository,
	dispatcher notification.Dispatcher,
	publisher *rabbitmq.Publisher,
	logger *zap.Logger,
) *bookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		retreatRepo: retreatRepo,
		roomRepo:    roomRepo,
		paymentRepo: paymentRepo,
		dispatcher:  dispatcher,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// SetPromoter wires the waitlist service in after construction; the two
// services reference each other.
func (s *bookingService) SetPromoter(p WaitlistPromoter) {
	s.promoter = p
}

func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.GuestsCount < 1 {
		in.GuestsCount = 1
	}

	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		retreat, err := s.retreatRepo.FindByID(ctx, in.RetreatID)
		if err != nil {
			return ErrRetreatNotFound
		}

		// Lock the room row: seat accounting is serialized per room.
		room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, in.RoomID)
		if err != nil {
			return ErrRoomNotFound
		}
		if room.RetreatID != retreat.ID {
			return ErrRoomRetreatMismatch
		}

		ok, err := s.roomRepo.ReserveSeats(ctx, tx, room.ID, in.GuestsCount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientInventory
		}
		if room.Available-in.GuestsCount == 0 {
			if err := s.roomRepo.SetSoldOut(ctx, tx, room.ID, true); err != nil {
				return err
			}
		}

		now := s.now()
		total := retreat.CurrentPriceCents(now) * int64(in.GuestsCount)
		deposit := retreat.DepositCents
		if deposit > total {
			deposit = total
		}

		booking := &models.Booking{
			BookingNumber:      newBookingNumber(),
			GuestName:          in.GuestName,
			GuestEmail:         in.GuestEmail,
			GuestPhone:         in.GuestPhone,
			RetreatID:          retreat.ID,
			RoomID:             room.ID,
			GuestsCount:        in.GuestsCount,
			Status:             models.StatusPending,
			PaymentStatus:      models.PaymentStateUnpaid,
			TotalAmountCents:   total,
			DepositAmountCents: deposit,
			BalanceDueCents:    total,
			CheckInDate:        retreat.StartDate,
			CheckOutDate:       retreat.EndDate,
			Language:           in.Language,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}

		plan := schedule.Build(total, deposit, now, retreat.StartDate, retreat.InstallmentCount)
		entries := make([]models.PaymentScheduleEntry, len(plan))
		for i, e := range plan {
			entries[i] = models.PaymentScheduleEntry{
				BookingID:   booking.ID,
				Number:      e.Number,
				AmountCents: e.AmountCents,
				DueDate:     e.DueDate,
				Description: e.Description,
			}
		}
		if err := s.paymentRepo.CreateScheduleEntries(ctx, tx, entries); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypeAdminNewBooking,
		Language:  result.Language,
		BookingID: &result.ID,
		Vars: map[string]string{
			"booking_number": result.BookingNumber,
			"guest_name":     result.GuestName,
			"guests_count":   fmt.Sprintf("%d", result.GuestsCount),
			"retreat_title":  s.retreatTitle(ctx, result.RetreatID),
		},
	})
	s.publish("booking.created", result)

	return result, nil
}

func (s *bookingService) Confirm(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var (
		result  *models.Booking
		changed bool
	)

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return ErrBookingNotFound
		}
		retreat, err := s.retreatRepo.FindByID(ctx, booking.RetreatID)
		if err != nil {
			return ErrRetreatNotFound
		}

		res, err := lifecycle.Transition(booking, models.StatusConfirmed, retreat.EndDate, s.now())
		if err != nil {
			return err
		}
		changed = res.Changed
		if changed {
			if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
				return err
			}
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.sendConfirmationOnce(ctx, result)
		s.publish("booking.confirmed", result)
	}
	return result, nil
}

func (s *bookingService) Complete(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return ErrBookingNotFound
		}
		retreat, err := s.retreatRepo.FindByID(ctx, booking.RetreatID)
		if err != nil {
			return ErrRetreatNotFound
		}

		res, err := lifecycle.Transition(booking, models.StatusCompleted, retreat.EndDate, s.now())
		if err != nil {
			return err
		}
		if res.Changed {
			if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
				return err
			}
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *bookingService) Cancel(ctx context.Context, bookingID uint, reason string, sendEmail bool) (*models.Booking, error) {
	var (
		result  *models.Booking
		changed bool
	)

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return ErrBookingNotFound
		}
		retreat, err := s.retreatRepo.FindByID(ctx, booking.RetreatID)
		if err != nil {
			return ErrRetreatNotFound
		}

		res, err := lifecycle.Transition(booking, models.StatusCancelled, retreat.EndDate, s.now())
		if err != nil {
			return err
		}
		changed = res.Changed
		if !changed {
			result = booking
			return nil
		}

		booking.CancelReason = reason
		if err := s.releaseSeatsOnce(ctx, tx, booking); err != nil {
			return err
		}
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if sendEmail {
			s.dispatcher.Dispatch(ctx, notification.Event{
				Type:      notification.TypeBookingCancelled,
				To:        result.GuestEmail,
				Language:  result.Language,
				BookingID: &result.ID,
				Vars: map[string]string{
					"guest_name":     result.GuestName,
					"booking_number": result.BookingNumber,
					"reason":         reason,
				},
			})
		}
		s.dispatcher.Dispatch(ctx, notification.Event{
			Type:      notification.TypeAdminCancellation,
			BookingID: &result.ID,
			Vars: map[string]string{
				"booking_number": result.BookingNumber,
				"reason":         reason,
			},
		})
		s.publish("booking.cancelled", result)
		if s.promoter != nil {
			s.promoter.PromoteForRoom(ctx, result.RetreatID, result.RoomID)
		}
	}
	return result, nil
}

// AssignRoom moves a booking to another room of the same retreat, releasing
// the old seats and reserving new ones atomically.
func (s *bookingService) AssignRoom(ctx context.Context, bookingID, roomID uint) (*models.Booking, error) {
	var (
		result  *models.Booking
		oldRoom uint
	)

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return ErrBookingNotFound
		}
		if booking.RoomID == roomID {
			result = booking
			return nil
		}

		newRoom, err := s.roomRepo.FindByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return ErrRoomNotFound
		}
		if newRoom.RetreatID != booking.RetreatID {
			return ErrRoomRetreatMismatch
		}

		ok, err := s.roomRepo.ReserveSeats(ctx, tx, newRoom.ID, booking.GuestsCount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientInventory
		}
		if newRoom.Available-booking.GuestsCount == 0 {
			if err := s.roomRepo.SetSoldOut(ctx, tx, newRoom.ID, true); err != nil {
				return err
			}
		}

		// Seats return to the old room only if they were still held.
		if booking.SeatsReleasedAt == nil {
			room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, booking.RoomID)
			if err != nil {
				return err
			}
			if err := s.roomRepo.ReleaseSeats(ctx, tx, room, booking.GuestsCount); err != nil {
				return err
			}
			oldRoom = room.ID
		}

		booking.RoomID = roomID
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldRoom != 0 && s.promoter != nil {
		s.promoter.PromoteForRoom(ctx, result.RetreatID, oldRoom)
	}
	return result, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	return s.bookingRepo.List(ctx, filter)
}

// sendConfirmationOnce fires the booking-confirmed email on the first
// confirmation only, with the payment schedule rendered as an allow-listed
// HTML table.
func (s *bookingService) sendConfirmationOnce(ctx context.Context, booking *models.Booking) {
	if booking.ConfirmationSentAt != nil {
		return
	}

	entries, err := s.paymentRepo.FindScheduleByBookingID(ctx, s.bookingRepo.GetDB(), booking.ID)
	if err != nil {
		s.logger.Error("failed to load schedule for confirmation email", zap.Error(err))
		entries = nil
	}

	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypeBookingConfirmed,
		To:        booking.GuestEmail,
		Language:  booking.Language,
		BookingID: &booking.ID,
		Vars: map[string]string{
			"guest_name":     booking.GuestName,
			"booking_number": booking.BookingNumber,
			"retreat_title":  s.retreatTitle(ctx, booking.RetreatID),
			"schedule_table": scheduleTableHTML(entries),
		},
	})

	now := s.now()
	booking.ConfirmationSentAt = &now
	if err := s.bookingRepo.Save(ctx, s.bookingRepo.GetDB(), booking); err != nil {
		s.logger.Error("failed to stamp confirmation sent", zap.Error(err))
	}
}

func (s *bookingService) retreatTitle(ctx context.Context, retreatID uint) string {
	retreat, err := s.retreatRepo.FindByID(ctx, retreatID)
	if err != nil {
		return ""
	}
	return retreat.Title
}

func (s *bookingService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Error("failed to publish lifecycle event", zap.String("key", routingKey), zap.Error(err))
	}
}

// releaseSeatsOnce returns the booking's seats to the room pool, at most
// once per booking.
func (s *bookingService) releaseSeatsOnce(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if booking.SeatsReleasedAt != nil {
		return nil
	}
	room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, booking.RoomID)
	if err != nil {
		return err
	}
	if err := s.roomRepo.ReleaseSeats(ctx, tx, room, booking.GuestsCount); err != nil {
		return err
	}
	now := s.now()
	booking.SeatsReleasedAt = &now
	return nil
}

func newBookingNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "RB-" + id[:8]
}

// scheduleTableHTML renders the payment plan for the confirmation email.
// Descriptions are fixed strings generated by the schedule engine, so the
// table is safe to allow-list as raw HTML.
func scheduleTableHTML(entries []models.PaymentScheduleEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<table><tr><th>#</th><th>Amount</th><th>Due</th></tr>`)
	for _, e := range entries {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>€%.2f</td><td>%s</td></tr>",
			e.Number, float64(e.AmountCents)/100, e.DueDate.Format("2 Jan 2006"))
	}
	b.WriteString("</table>")
	return b.String()
}
