package repository

import (
	"context"
	"time"

	"github.com/retreathub/booking-service/internal/models"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error
	FindByID(ctx context.Context, id uint) (*models.WaitlistEntry, error)
	FindByToken(ctx context.Context, tx *gorm.DB, token string) (*models.WaitlistEntry, error)
	NextPosition(ctx context.Context, tx *gorm.DB, retreatID uint, roomID *uint) (int, error)
	FindHeadWaiting(ctx context.Context, tx *gorm.DB, retreatID uint, roomID uint, maxGuests int) (*models.WaitlistEntry, error)
	OfferCAS(ctx context.Context, tx *gorm.DB, entryID uint, expiresAt time.Time) (bool, error)
	FinalizeOfferCAS(ctx context.Context, tx *gorm.DB, entryID uint, status models.WaitlistStatus) (bool, error)
	FindExpiredOffers(ctx context.Context, now time.Time) ([]models.WaitlistEntry, error)
	GetDB() *gorm.DB
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *waitlistRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *waitlistRepository) FindByID(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) FindByToken(ctx context.Context, tx *gorm.DB, token string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := forUpdate(tx.WithContext(ctx)).Where("action_token = ?", token).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// NextPosition returns the next dense position in the retreat+room scope.
// Callers must hold the retreat row lock.
func (r *waitlistRepository) NextPosition(ctx context.Context, tx *gorm.DB, retreatID uint, roomID *uint) (int, error) {
	var max int
	q := tx.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("retreat_id = ?", retreatID)
	if roomID == nil {
		q = q.Where("room_id IS NULL")
	} else {
		q = q.Where("room_id = ?", *roomID)
	}
	if err := q.Select("COALESCE(MAX(position), 0)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// FindHeadWaiting returns the lowest-position waiting entry for the room
// (room-specific entries and "any room" entries compete in position order)
// whose party fits in maxGuests seats.
func (r *waitlistRepository) FindHeadWaiting(ctx context.Context, tx *gorm.DB, retreatID uint, roomID uint, maxGuests int) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := tx.WithContext(ctx).
		Where("retreat_id = ? AND status = ?", retreatID, models.WaitlistWaiting).
		Where("(room_id IS NULL OR room_id = ?)", roomID).
		Where("guests_count <= ?", maxGuests).
		Order("position ASC, id ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// OfferCAS flips waiting → offered only if the entry is still waiting, so two
// promoters can never offer the same entry twice.
func (r *waitlistRepository) OfferCAS(ctx context.Context, tx *gorm.DB, entryID uint, expiresAt time.Time) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ?", entryID, models.WaitlistWaiting).
		Updates(map[string]any{
			"status":           models.WaitlistOffered,
			"offer_expires_at": expiresAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FinalizeOfferCAS moves offered → accepted/declined/expired, guarding
// against a race between accept, decline and the expiry sweep.
func (r *waitlistRepository) FinalizeOfferCAS(ctx context.Context, tx *gorm.DB, entryID uint, status models.WaitlistStatus) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ?", entryID, models.WaitlistOffered).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *waitlistRepository) FindExpiredOffers(ctx context.Context, now time.Time) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND offer_expires_at < ?", models.WaitlistOffered, now).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
