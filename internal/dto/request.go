package dto

import "time"

type CreateRetreatRequest struct {
	Title               string     `json:"title"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             time.Time  `json:"end_date"`
	PriceCents          int64      `json:"price_cents"`
	DepositCents        int64      `json:"deposit_cents"`
	EarlyBirdPriceCents int64      `json:"early_bird_price_cents"`
	EarlyBirdUntil      *time.Time `json:"early_bird_until"`
	InstallmentCount    int        `json:"installment_count"`
}

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type UpdateRoomCapacityRequest struct {
	Capacity int `json:"capacity"`
}

type CreateBookingRequest struct {
	RoomID      uint   `json:"room_id"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email"`
	GuestPhone  string `json:"guest_phone"`
	GuestsCount int    `json:"guests_count"`
	Language    string `json:"language"`
}

type CancelBookingRequest struct {
	Reason    string `json:"reason"`
	SendEmail bool   `json:"send_email"`
}

type AssignRoomRequest struct {
	RoomID uint `json:"room_id"`
}

type RefundRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type RestoreScheduleRequest struct {
	ShiftDays int `json:"shift_days"`
}

type JoinWaitlistRequest struct {
	RoomID      *uint  `json:"room_id"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email"`
	GuestPhone  string `json:"guest_phone"`
	GuestsCount int    `json:"guests_count"`
	Language    string `json:"language"`
}

type SubmitFeedbackRequest struct {
	Rating         int    `json:"rating"`
	RecommendScore int    `json:"recommend_score"`
	Comment        string `json:"comment"`
}

// WebhookRequest mirrors the processor's event envelope; the nested object
// carries the payment intent.
type WebhookRequest struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Amount   int64             `json:"amount"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}
