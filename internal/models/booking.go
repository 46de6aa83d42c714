package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

type PaymentState string

const (
	PaymentStateUnpaid   PaymentState = "unpaid"
	PaymentStateDeposit  PaymentState = "deposit"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateRefunded PaymentState = "refunded"
)

// Booking rows are never deleted; cancellation is a status change so the
// financial history stays intact.
type Booking struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	BookingNumber      string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"booking_number"`
	GuestName          string        `gorm:"type:varchar(200);not null" json:"guest_name"`
	GuestEmail         string        `gorm:"type:varchar(200);not null" json:"guest_email"`
	GuestPhone         string        `gorm:"type:varchar(50)" json:"guest_phone"`
	RetreatID          uint          `gorm:"not null;index" json:"retreat_id"`
	RoomID             uint          `gorm:"not null;index" json:"room_id"`
	GuestsCount        int           `gorm:"not null;default:1" json:"guests_count"`
	Status             BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus      PaymentState  `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	TotalAmountCents   int64         `gorm:"not null" json:"total_amount_cents"`
	DepositAmountCents int64         `gorm:"not null" json:"deposit_amount_cents"`
	BalanceDueCents    int64         `gorm:"not null" json:"balance_due_cents"`
	CheckInDate        time.Time     `json:"check_in_date"`
	CheckOutDate       time.Time     `json:"check_out_date"`
	Language           string        `gorm:"type:varchar(5);not null;default:'en'" json:"language"`
	CancelReason       string        `gorm:"type:text" json:"cancel_reason,omitempty"`

	// Grace-period bookkeeping after a failed scheduled payment.
	GraceDeadline      *time.Time `json:"grace_deadline,omitempty"`
	ThreeDayReminderAt *time.Time `json:"three_day_reminder_at,omitempty"`
	OneDayReminderAt   *time.Time `json:"one_day_reminder_at,omitempty"`

	ConfirmationSentAt *time.Time `json:"confirmation_sent_at,omitempty"`

	// SeatsReleasedAt marks that the booking's seats went back to the room
	// pool. Set exactly once, by whichever of cancellation or full refund
	// happens first.
	SeatsReleasedAt *time.Time `json:"seats_released_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Retreat *Retreat `gorm:"foreignKey:RetreatID" json:"retreat,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
