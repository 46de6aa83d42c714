package models

import "time"

// Feedback holds a post-retreat review: a 1-5 star rating and a 0-10
// "would you recommend us" score used for NPS.
type Feedback struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BookingID      uint      `gorm:"not null;uniqueIndex" json:"booking_id"`
	RetreatID      uint      `gorm:"not null;index" json:"retreat_id"`
	Rating         int       `gorm:"not null" json:"rating"`
	RecommendScore int       `gorm:"not null" json:"recommend_score"`
	Comment        string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
