package models

import "time"

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RetreatID uint      `gorm:"not null;index" json:"retreat_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Available int       `gorm:"not null" json:"available"`
	IsSoldOut bool      `gorm:"not null;default:false" json:"is_sold_out"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Retreat *Retreat `gorm:"foreignKey:RetreatID" json:"retreat,omitempty"`
}

// Occupied is derived, never stored.
func (r *Room) Occupied() int {
	return r.Capacity - r.Available
}
