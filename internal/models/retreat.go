package models

import "time"

type Retreat struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Title               string     `gorm:"type:varchar(200);not null" json:"title"`
	StartDate           time.Time  `gorm:"not null" json:"start_date"`
	EndDate             time.Time  `gorm:"not null" json:"end_date"`
	PriceCents          int64      `gorm:"not null" json:"price_cents"`
	DepositCents        int64      `gorm:"not null" json:"deposit_cents"`
	EarlyBirdPriceCents int64      `json:"early_bird_price_cents"`
	EarlyBirdUntil      *time.Time `json:"early_bird_until,omitempty"`
	InstallmentCount    int        `gorm:"not null;default:2" json:"installment_count"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// CurrentPriceCents returns the early-bird price while the early-bird window
// is open, otherwise the regular price.
func (r *Retreat) CurrentPriceCents(now time.Time) int64 {
	if r.EarlyBirdPriceCents > 0 && r.EarlyBirdUntil != nil && now.Before(*r.EarlyBirdUntil) {
		return r.EarlyBirdPriceCents
	}
	return r.PriceCents
}
