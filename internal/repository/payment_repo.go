package repository

import (
	"context"
	"time"

	"github.com/retreathub/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.Payment, error)
	CreateScheduleEntries(ctx context.Context, tx *gorm.DB, entries []models.PaymentScheduleEntry) error
	FindScheduleByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.PaymentScheduleEntry, error)
	MarkEntryPaid(ctx context.Context, tx *gorm.DB, entryID uint, paidAt time.Time) error
	ShiftDueDates(ctx context.Context, tx *gorm.DB, bookingID uint, shift time.Duration) error
	MarkEventProcessed(ctx context.Context, tx *gorm.DB, eventID, eventType string, now time.Time) (bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := tx.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) CreateScheduleEntries(ctx context.Context, tx *gorm.DB, entries []models.PaymentScheduleEntry) error {
	return tx.WithContext(ctx).Create(&entries).Error
}

func (r *paymentRepository) FindScheduleByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.PaymentScheduleEntry, error) {
	var entries []models.PaymentScheduleEntry
	if err := tx.WithContext(ctx).Where("booking_id = ?", bookingID).Order("number ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *paymentRepository) MarkEntryPaid(ctx context.Context, tx *gorm.DB, entryID uint, paidAt time.Time) error {
	return tx.WithContext(ctx).
		Model(&models.PaymentScheduleEntry{}).
		Where("id = ?", entryID).
		Update("paid_at", paidAt).Error
}

// ShiftDueDates moves all unpaid entries of a booking by the given duration.
// Used for manual schedule restoration after a grace period is resolved.
func (r *paymentRepository) ShiftDueDates(ctx context.Context, tx *gorm.DB, bookingID uint, shift time.Duration) error {
	var entries []models.PaymentScheduleEntry
	if err := tx.WithContext(ctx).
		Where("booking_id = ? AND paid_at IS NULL", bookingID).
		Find(&entries).Error; err != nil {
		return err
	}
	for _, e := range entries {
		if err := tx.WithContext(ctx).
			Model(&models.PaymentScheduleEntry{}).
			Where("id = ?", e.ID).
			Update("due_date", e.DueDate.Add(shift)).Error; err != nil {
			return err
		}
	}
	return nil
}

// MarkEventProcessed inserts the processor event id, returning false when the
// id was already recorded. ON CONFLICT DO NOTHING makes replayed webhook
// deliveries harmless.
func (r *paymentRepository) MarkEventProcessed(ctx context.Context, tx *gorm.DB, eventID, eventType string, now time.Time) (bool, error) {
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&models.WebhookEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: now,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
