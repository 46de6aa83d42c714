package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/repository"
)

type CreateRetreatInput struct {
	Title               string
	StartDate           time.Time
	EndDate             time.Time
	PriceCents          int64
	DepositCents        int64
	EarlyBirdPriceCents int64
	EarlyBirdUntil      *time.Time
	InstallmentCount    int
}

type RetreatService interface {
	CreateRetreat(ctx context.Context, in CreateRetreatInput) (*models.Retreat, error)
	GetRetreat(ctx context.Context, id uint) (*models.Retreat, error)
	CreateRoom(ctx context.Context, retreatID uint, name string, capacity int) (*models.Room, error)
	ListRooms(ctx context.Context, retreatID uint) ([]models.Room, error)
	// UpdateRoomCapacity resizes a room while preserving its occupied seats.
	// Growing the room frees seats and kicks off waitlist promotion.
	UpdateRoomCapacity(ctx context.Context, roomID uint, capacity int) (*models.Room, error)
}

type retreatService struct {
	retreatRepo repository.RetreatRepository
	roomRepo    repository.RoomRepository
	bookingRepo repository.BookingRepository
	promoter    WaitlistPromoter
	logger      *zap.Logger
}

func NewRetreatService(
	retreatRepo repository.RetreatRepository,
	roomRepo repository.RoomRepository,
	bookingRepo repository.BookingRepository,
	logger *zap.Logger,
) *retreatService {
	return &retreatService{
		retreatRepo: retreatRepo,
		roomRepo:    roomRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// SetPromoter wires the waitlist controller after construction.
func (s *retreatService) SetPromoter(p WaitlistPromoter) {
	s.promoter = p
}

func (s *retreatService) CreateRetreat(ctx context.Context, in CreateRetreatInput) (*models.Retreat, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}
	if in.PriceCents <= 0 || in.DepositCents < 0 || in.DepositCents > in.PriceCents {
		return nil, fmt.Errorf("invalid pricing: price %d deposit %d", in.PriceCents, in.DepositCents)
	}
	if in.InstallmentCount < 0 {
		return nil, fmt.Errorf("installment count must not be negative")
	}

	retreat := &models.Retreat{
		Title:               in.Title,
		StartDate:           in.StartDate,
		EndDate:             in.EndDate,
		PriceCents:          in.PriceCents,
		DepositCents:        in.DepositCents,
		EarlyBirdPriceCents: in.EarlyBirdPriceCents,
		EarlyBirdUntil:      in.EarlyBirdUntil,
		InstallmentCount:    in.InstallmentCount,
	}
	if err := s.retreatRepo.Create(ctx, retreat); err != nil {
		return nil, fmt.Errorf("failed to create retreat: %w", err)
	}
	return retreat, nil
}

func (s *retreatService) GetRetreat(ctx context.Context, id uint) (*models.Retreat, error) {
	retreat, err := s.retreatRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRetreatNotFound
		}
		return nil, err
	}
	return retreat, nil
}

func (s *retreatService) CreateRoom(ctx context.Context, retreatID uint, name string, capacity int) (*models.Room, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive")
	}
	if _, err := s.GetRetreat(ctx, retreatID); err != nil {
		return nil, err
	}

	room := &models.Room{
		RetreatID: retreatID,
		Name:      name,
		Capacity:  capacity,
		Available: capacity,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

func (s *retreatService) ListRooms(ctx context.Context, retreatID uint) ([]models.Room, error) {
	if _, err := s.GetRetreat(ctx, retreatID); err != nil {
		return nil, err
	}
	return s.roomRepo.FindByRetreatID(ctx, retreatID)
}

func (s *retreatService) UpdateRoomCapacity(ctx context.Context, roomID uint, capacity int) (*models.Room, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive")
	}

	var room *models.Room
	freed := false
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.roomRepo.FindByIDForUpdate(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		occupied := locked.Occupied()
		if capacity < occupied {
			return fmt.Errorf("capacity %d below %d occupied seats", capacity, occupied)
		}

		available := capacity - occupied
		if err := s.roomRepo.SetCapacity(ctx, tx, roomID, capacity, available); err != nil {
			return err
		}
		if available > 0 && locked.IsSoldOut {
			if err := s.roomRepo.SetSoldOut(ctx, tx, roomID, false); err != nil {
				return err
			}
		}

		freed = available > locked.Available
		locked.Capacity = capacity
		locked.Available = available
		locked.IsSoldOut = locked.IsSoldOut && available == 0
		room = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if freed && s.promoter != nil {
		s.promoter.PromoteForRoom(ctx, room.RetreatID, room.ID)
	}

	return room, nil
}
