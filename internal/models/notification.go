package models

import "time"

type EmailSendStatus string

const (
	EmailSent    EmailSendStatus = "sent"
	EmailFailed  EmailSendStatus = "failed"
	EmailSkipped EmailSendStatus = "skipped"
)

// EmailAuditLogEntry is append-only: every send attempt is recorded, never
// mutated afterwards.
type EmailAuditLogEntry struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	EmailType         string          `gorm:"type:varchar(50);not null;index" json:"email_type"`
	Recipient         string          `gorm:"type:varchar(200)" json:"recipient"`
	Subject           string          `gorm:"type:varchar(300)" json:"subject"`
	Status            EmailSendStatus `gorm:"type:varchar(20);not null" json:"status"`
	BookingID         *uint           `gorm:"index" json:"booking_id,omitempty"`
	PaymentID         *uint           `json:"payment_id,omitempty"`
	ProviderMessageID string          `gorm:"type:varchar(100)" json:"provider_message_id,omitempty"`
	Error             string          `gorm:"type:text" json:"error,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// EmailTemplate is a per-language database override for a hardcoded template.
type EmailTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EmailType string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_template_type_lang" json:"email_type"`
	Language  string    `gorm:"type:varchar(5);not null;uniqueIndex:idx_template_type_lang" json:"language"`
	Subject   string    `gorm:"type:varchar(300);not null" json:"subject"`
	BodyHTML  string    `gorm:"type:text;not null" json:"body_html"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
