package repository

import (
	"context"

	"github.com/retreathub/booking-service/internal/models"
	"gorm.io/gorm"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error)
	FindByRetreatID(ctx context.Context, retreatID uint) ([]models.Room, error)
	ReserveSeats(ctx context.Context, tx *gorm.DB, roomID uint, seats int) (bool, error)
	ReleaseSeats(ctx context.Context, tx *gorm.DB, room *models.Room, seats int) error
	SetCapacity(ctx context.Context, tx *gorm.DB, roomID uint, capacity, available int) error
	SetSoldOut(ctx context.Context, tx *gorm.DB, roomID uint, soldOut bool) error
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	if err := forUpdate(tx.WithContext(ctx)).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindByRetreatID(ctx context.Context, retreatID uint) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.WithContext(ctx).Where("retreat_id = ?", retreatID).Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// ReserveSeats decrements availability with a conditional update so two
// concurrent bookings can never oversell the room. Returns false when not
// enough seats were left.
func (r *roomRepository) ReserveSeats(ctx context.Context, tx *gorm.DB, roomID uint, seats int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ? AND available >= ?", roomID, seats).
		Update("available", gorm.Expr("available - ?", seats))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSeats returns seats to the pool, capped at capacity, and clears the
// sold-out flag. Callers must hold the room row lock (FindByIDForUpdate) so
// the read-modify-write is serialized.
func (r *roomRepository) ReleaseSeats(ctx context.Context, tx *gorm.DB, room *models.Room, seats int) error {
	available := room.Available + seats
	if available > room.Capacity {
		available = room.Capacity
	}
	if err := tx.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", room.ID).
		Updates(map[string]any{"available": available, "is_sold_out": false}).Error; err != nil {
		return err
	}
	room.Available = available
	room.IsSoldOut = false
	return nil
}

func (r *roomRepository) SetCapacity(ctx context.Context, tx *gorm.DB, roomID uint, capacity, available int) error {
	return tx.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]any{"capacity": capacity, "available": available}).Error
}

func (r *roomRepository) SetSoldOut(ctx context.Context, tx *gorm.DB, roomID uint, soldOut bool) error {
	return tx.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("is_sold_out", soldOut).Error
}
