package repository

import (
	"context"

	"github.com/retreathub/booking-service/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	AppendLog(ctx context.Context, entry *models.EmailAuditLogEntry) error
	FindTemplate(ctx context.Context, emailType, language string) (*models.EmailTemplate, error)
	ListLogs(ctx context.Context, bookingID uint) ([]models.EmailAuditLogEntry, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) AppendLog(ctx context.Context, entry *models.EmailAuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *notificationRepository) FindTemplate(ctx context.Context, emailType, language string) (*models.EmailTemplate, error) {
	var tpl models.EmailTemplate
	err := r.db.WithContext(ctx).
		Where("email_type = ? AND language = ?", emailType, language).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *notificationRepository) ListLogs(ctx context.Context, bookingID uint) ([]models.EmailAuditLogEntry, error) {
	var logs []models.EmailAuditLogEntry
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
