package models

import "time"

// WebhookEvent deduplicates at-least-once webhook delivery: one row per
// processor event id, inserted before the event mutates any booking state.
type WebhookEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"event_id"`
	EventType   string    `gorm:"type:varchar(100);not null" json:"event_type"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}
