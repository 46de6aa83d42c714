package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

type PaymentType string

const (
	PaymentTypeDeposit     PaymentType = "deposit"
	PaymentTypeInstallment PaymentType = "installment"
	PaymentTypeFull        PaymentType = "full"
	PaymentTypeRefund      PaymentType = "refund"
)

// Payment is append-only: refunds are negative-amount rows of type refund,
// existing rows are never rewritten.
type Payment struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	BookingID         uint          `gorm:"not null;index" json:"booking_id"`
	AmountCents       int64         `gorm:"not null" json:"amount_cents"`
	Status            PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaymentType       PaymentType   `gorm:"type:varchar(20);not null" json:"payment_type"`
	ScheduledDueDate  *time.Time    `json:"scheduled_due_date,omitempty"`
	ProcessorEventID  string        `gorm:"type:varchar(100);index" json:"processor_event_id,omitempty"`
	ProcessorIntentID string        `gorm:"type:varchar(100)" json:"processor_intent_id,omitempty"`
	ProviderRefundID  string        `gorm:"type:varchar(100)" json:"provider_refund_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// PaymentScheduleEntry is generated once at booking time. Amounts and ordering
// are immutable afterwards; only due dates may be shifted on manual restoration.
type PaymentScheduleEntry struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	BookingID   uint       `gorm:"not null;index" json:"booking_id"`
	Number      int        `gorm:"not null" json:"number"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	Description string     `gorm:"type:varchar(100)" json:"description"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
