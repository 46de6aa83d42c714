package repository

import (
	"context"

	"github.com/retreathub/booking-service/internal/models"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	FindByRetreatID(ctx context.Context, retreatID uint) ([]models.Feedback, error)
	FindByRatingRange(ctx context.Context, retreatID uint, minRating, maxRating int) ([]models.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) FindByRetreatID(ctx context.Context, retreatID uint) ([]models.Feedback, error) {
	var items []models.Feedback
	if err := r.db.WithContext(ctx).Where("retreat_id = ?", retreatID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *feedbackRepository) FindByRatingRange(ctx context.Context, retreatID uint, minRating, maxRating int) ([]models.Feedback, error) {
	var items []models.Feedback
	err := r.db.WithContext(ctx).
		Where("retreat_id = ? AND rating BETWEEN ? AND ?", retreatID, minRating, maxRating).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
