package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retreathub/booking-service/config"
	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/notification"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/internal/schedule"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type JoinWaitlistInput struct {
	RetreatID   uint
	RoomID      *uint
	GuestName   string
	GuestEmail  string
	GuestPhone  string
	GuestsCount int
	Language    string
}

type WaitlistService interface {
	Join(ctx context.Context, in JoinWaitlistInput) (*models.WaitlistEntry, error)
	Accept(ctx context.Context, token string) (*models.Booking, error)
	Decline(ctx context.Context, token string) (*models.WaitlistEntry, error)
	// ExpireOffers finalizes offers whose window lapsed and re-promotes the
	// next queued entry per scope.
	ExpireOffers(ctx context.Context, now time.Time)
	PromoteForRoom(ctx context.Context, retreatID, roomID uint)
	PromoteForRetreat(ctx context.Context, retreatID uint)
}

type waitlistService struct {
	waitlistRepo repository.WaitlistRepository
	retreatRepo  repository.RetreatRepository
	roomRepo     repository.RoomRepository
	bookingSvc   BookingService
	dispatcher   notification.Dispatcher
	cfg          *config.Config
	logger       *zap.Logger
	now          func() time.Time
}

func NewWaitlistService(
	waitlistRepo repository.WaitlistRepository,
	retreatRepo repository.RetreatRepository,
	roomRepo repository.RoomRepository,
	bookingSvc BookingService,
	dispatcher notification.Dispatcher,
	cfg *config.Config,
	logger *zap.Logger,
) *waitlistService {
	return &waitlistService{
		waitlistRepo: waitlistRepo,
		retreatRepo:  retreatRepo,
		roomRepo:     roomRepo,
		bookingSvc:   bookingSvc,
		dispatcher:   dispatcher,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *waitlistService) Join(ctx context.Context, in JoinWaitlistInput) (*models.WaitlistEntry, error) {
	if in.GuestsCount < 1 {
		in.GuestsCount = 1
	}

	var entry *models.WaitlistEntry

	err := s.db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Position assignment is serialized on the retreat row lock so
		// positions stay dense per scope.
		retreat, err := s.retreatRepo.FindByIDForUpdate(ctx, tx, in.RetreatID)
		if err != nil {
			return ErrRetreatNotFound
		}

		pos, err := s.waitlistRepo.NextPosition(ctx, tx, retreat.ID, in.RoomID)
		if err != nil {
			return err
		}

		entry = &models.WaitlistEntry{
			RetreatID:   retreat.ID,
			RoomID:      in.RoomID,
			GuestName:   in.GuestName,
			GuestEmail:  in.GuestEmail,
			GuestPhone:  in.GuestPhone,
			GuestsCount: in.GuestsCount,
			Position:    pos,
			Status:      models.WaitlistWaiting,
			ActionToken: strings.ReplaceAll(uuid.New().String(), "-", ""),
			Language:    in.Language,
		}
		return s.waitlistRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:     notification.TypeWaitlistJoined,
		To:       entry.GuestEmail,
		Language: entry.Language,
		Vars: map[string]string{
			"guest_name":    entry.GuestName,
			"retreat_title": s.retreatTitle(ctx, entry.RetreatID),
			"position":      fmt.Sprintf("%d", entry.Position),
		},
	})

	return entry, nil
}

func (s *waitlistService) Accept(ctx context.Context, token string) (*models.Booking, error) {
	entry, err := s.activeOffer(ctx, token)
	if err != nil {
		return nil, err
	}

	// Pick the room: the offered scope, or the first room that fits for
	// "any room" entries.
	roomID, err := s.roomForEntry(ctx, entry)
	if err != nil {
		return nil, err
	}

	// Create the booking first; if the seat vanished the offer stays open
	// and the guest can retry.
	booking, err := s.bookingSvc.CreateBooking(ctx, CreateBookingInput{
		RetreatID:   entry.RetreatID,
		RoomID:      roomID,
		GuestName:   entry.GuestName,
		GuestEmail:  entry.GuestEmail,
		GuestPhone:  entry.GuestPhone,
		GuestsCount: entry.GuestsCount,
		Language:    entry.Language,
	})
	if err != nil {
		return nil, err
	}

	ok, err := s.waitlistRepo.FinalizeOfferCAS(ctx, s.db(), entry.ID, models.WaitlistAccepted)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against decline/expiry after booking creation;
		// keep the booking, the guest explicitly accepted.
		s.logger.Warn("waitlist accept raced with finalization", zap.Uint("entry_id", entry.ID))
	}

	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:      notification.TypeAdminWaitlistAccepted,
		BookingID: &booking.ID,
		Vars: map[string]string{
			"guest_name":     entry.GuestName,
			"retreat_title":  s.retreatTitle(ctx, entry.RetreatID),
			"booking_number": booking.BookingNumber,
		},
	})

	return booking, nil
}

func (s *waitlistService) Decline(ctx context.Context, token string) (*models.WaitlistEntry, error) {
	entry, err := s.activeOffer(ctx, token)
	if err != nil {
		return nil, err
	}

	ok, err := s.waitlistRepo.FinalizeOfferCAS(ctx, s.db(), entry.ID, models.WaitlistDeclined)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferNotActive
	}
	entry.Status = models.WaitlistDeclined

	// The declined seat goes back on the promotion queue.
	s.repromote(ctx, entry)
	return entry, nil
}

func (s *waitlistService) ExpireOffers(ctx context.Context, now time.Time) {
	entries, err := s.waitlistRepo.FindExpiredOffers(ctx, now)
	if err != nil {
		s.logger.Error("expired offer sweep failed", zap.Error(err))
		return
	}

	for i := range entries {
		entry := &entries[i]
		ok, err := s.waitlistRepo.FinalizeOfferCAS(ctx, s.db(), entry.ID, models.WaitlistExpired)
		if err != nil {
			s.logger.Error("failed to expire offer", zap.Uint("entry_id", entry.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue // accepted or declined in the meantime
		}
		s.logger.Info("waitlist offer expired",
			zap.Uint("entry_id", entry.ID),
			zap.Uint("retreat_id", entry.RetreatID))
		s.repromote(ctx, entry)
	}
}

// PromoteForRoom runs the promotion work queue for one room scope. Each pass
// offers at most one entry per free batch of seats; further promotion happens
// when that offer is resolved.
func (s *waitlistService) PromoteForRoom(ctx context.Context, retreatID, roomID uint) {
	queue := []uint{roomID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if err := s.promoteOne(ctx, retreatID, id); err != nil {
			s.logger.Error("waitlist promotion failed",
				zap.Uint("retreat_id", retreatID),
				zap.Uint("room_id", id),
				zap.Error(err))
		}
	}
}

func (s *waitlistService) PromoteForRetreat(ctx context.Context, retreatID uint) {
	rooms, err := s.roomRepo.FindByRetreatID(ctx, retreatID)
	if err != nil {
		s.logger.Error("failed to list rooms for promotion", zap.Uint("retreat_id", retreatID), zap.Error(err))
		return
	}
	for _, room := range rooms {
		if room.Available > 0 {
			s.PromoteForRoom(ctx, retreatID, room.ID)
		}
	}
}

// promoteOne offers the freed capacity to the head-of-queue waiting entry.
func (s *waitlistService) promoteOne(ctx context.Context, retreatID, roomID uint) error {
	var offered *models.WaitlistEntry

	err := s.db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Promotion is serialized per retreat on the retreat row lock.
		if _, err := s.retreatRepo.FindByIDForUpdate(ctx, tx, retreatID); err != nil {
			return ErrRetreatNotFound
		}

		room, err := s.roomRepo.FindByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			return ErrRoomNotFound
		}
		if room.Available < 1 {
			return nil
		}

		entry, err := s.waitlistRepo.FindHeadWaiting(ctx, tx, retreatID, roomID, room.Available)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		expires := s.now().Add(schedule.OfferWindow)
		ok, err := s.waitlistRepo.OfferCAS(ctx, tx, entry.ID, expires)
		if err != nil {
			return err
		}
		if !ok {
			return nil // another promoter got there first
		}

		entry.Status = models.WaitlistOffered
		entry.OfferExpiresAt = &expires
		offered = entry
		return nil
	})
	if err != nil || offered == nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:     notification.TypeWaitlistOffer,
		To:       offered.GuestEmail,
		Language: offered.Language,
		Vars: map[string]string{
			"guest_name":    offered.GuestName,
			"retreat_title": s.retreatTitle(ctx, offered.RetreatID),
			"expires_at":    offered.OfferExpiresAt.Format("2 Jan 2006 15:04 MST"),
			"accept_link":   s.actionLink(offered.ActionToken, "accept"),
			"decline_link":  s.actionLink(offered.ActionToken, "decline"),
		},
	})

	s.logger.Info("waitlist entry offered",
		zap.Uint("entry_id", offered.ID),
		zap.Int("position", offered.Position),
		zap.Uint("retreat_id", retreatID),
		zap.Uint("room_id", roomID))
	return nil
}

func (s *waitlistService) activeOffer(ctx context.Context, token string) (*models.WaitlistEntry, error) {
	entry, err := s.waitlistRepo.FindByToken(ctx, s.db(), token)
	if err != nil {
		return nil, ErrWaitlistNotFound
	}
	if entry.Status != models.WaitlistOffered {
		return nil, ErrOfferNotActive
	}
	if entry.OfferExpiresAt == nil || s.now().After(*entry.OfferExpiresAt) {
		return nil, ErrOfferNotActive
	}
	return entry, nil
}

func (s *waitlistService) repromote(ctx context.Context, entry *models.WaitlistEntry) {
	if entry.RoomID != nil {
		s.PromoteForRoom(ctx, entry.RetreatID, *entry.RoomID)
		return
	}
	s.PromoteForRetreat(ctx, entry.RetreatID)
}

func (s *waitlistService) roomForEntry(ctx context.Context, entry *models.WaitlistEntry) (uint, error) {
	if entry.RoomID != nil {
		return *entry.RoomID, nil
	}
	rooms, err := s.roomRepo.FindByRetreatID(ctx, entry.RetreatID)
	if err != nil {
		return 0, err
	}
	for _, room := range rooms {
		if room.Available >= entry.GuestsCount {
			return room.ID, nil
		}
	}
	return 0, ErrInsufficientInventory
}

func (s *waitlistService) retreatTitle(ctx context.Context, retreatID uint) string {
	retreat, err := s.retreatRepo.FindByID(ctx, retreatID)
	if err != nil {
		return ""
	}
	return retreat.Title
}

func (s *waitlistService) actionLink(token, action string) string {
	url := fmt.Sprintf("%s/api/v1/waitlist/%s/%s", s.cfg.PublicBaseURL, token, action)
	label := "Accept the spot"
	if action == "decline" {
		label = "Decline"
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, url, label)
}

func (s *waitlistService) db() *gorm.DB {
	return s.waitlistRepo.GetDB()
}
