package repository

import (
	"context"

	"github.com/retreathub/booking-service/internal/models"
	"gorm.io/gorm"
)

type RetreatRepository interface {
	Create(ctx context.Context, retreat *models.Retreat) error
	FindByID(ctx context.Context, id uint) (*models.Retreat, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Retreat, error)
}

type retreatRepository struct {
	db *gorm.DB
}

func NewRetreatRepository(db *gorm.DB) RetreatRepository {
	return &retreatRepository{db: db}
}

func (r *retreatRepository) Create(ctx context.Context, retreat *models.Retreat) error {
	return r.db.WithContext(ctx).Create(retreat).Error
}

func (r *retreatRepository) FindByID(ctx context.Context, id uint) (*models.Retreat, error) {
	var retreat models.Retreat
	if err := r.db.WithContext(ctx).First(&retreat, id).Error; err != nil {
		return nil, err
	}
	return &retreat, nil
}

// FindByIDForUpdate locks the retreat row; waitlist position assignment and
// promotion are serialized on this lock.
func (r *retreatRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Retreat, error) {
	var retreat models.Retreat
	if err := forUpdate(tx.WithContext(ctx)).First(&retreat, id).Error; err != nil {
		return nil, err
	}
	return &retreat, nil
}
