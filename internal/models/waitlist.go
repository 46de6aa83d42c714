package models

import "time"

type WaitlistStatus string

const (
	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistOffered  WaitlistStatus = "offered"
	WaitlistAccepted WaitlistStatus = "accepted"
	WaitlistDeclined WaitlistStatus = "declined"
	WaitlistExpired  WaitlistStatus = "expired"
)

// WaitlistEntry positions are dense FIFO per retreat+room scope. RoomID nil
// means the guest takes any room in the retreat.
type WaitlistEntry struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	RetreatID      uint           `gorm:"not null;index" json:"retreat_id"`
	RoomID         *uint          `gorm:"index" json:"room_id,omitempty"`
	GuestName      string         `gorm:"type:varchar(200);not null" json:"guest_name"`
	GuestEmail     string         `gorm:"type:varchar(200);not null" json:"guest_email"`
	GuestPhone     string         `gorm:"type:varchar(50)" json:"guest_phone"`
	GuestsCount    int            `gorm:"not null;default:1" json:"guests_count"`
	Position       int            `gorm:"not null" json:"position"`
	Status         WaitlistStatus `gorm:"type:varchar(20);not null;default:'waiting'" json:"status"`
	OfferExpiresAt *time.Time     `json:"offer_expires_at,omitempty"`
	ActionToken    string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"-"`
	Language       string         `gorm:"type:varchar(5);not null;default:'en'" json:"language"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
