package dto

import (
	"time"

	"github.com/retreathub/booking-service/internal/models"
)

type BookingResponse struct {
	ID                 uint                 `json:"id"`
	BookingNumber      string               `json:"booking_number"`
	GuestName          string               `json:"guest_name"`
	GuestEmail         string               `json:"guest_email"`
	RetreatID          uint                 `json:"retreat_id"`
	RoomID             uint                 `json:"room_id"`
	GuestsCount        int                  `json:"guests_count"`
	Status             models.BookingStatus `json:"status"`
	PaymentStatus      models.PaymentState  `json:"payment_status"`
	TotalAmountCents   int64                `json:"total_amount_cents"`
	DepositAmountCents int64                `json:"deposit_amount_cents"`
	BalanceDueCents    int64                `json:"balance_due_cents"`
	CheckInDate        time.Time            `json:"check_in_date"`
	CheckOutDate       time.Time            `json:"check_out_date"`
	GraceDeadline      *time.Time           `json:"grace_deadline,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

type WaitlistResponse struct {
	ID             uint                  `json:"id"`
	RetreatID      uint                  `json:"retreat_id"`
	RoomID         *uint                 `json:"room_id,omitempty"`
	GuestName      string                `json:"guest_name"`
	Position       int                   `json:"position"`
	Status         models.WaitlistStatus `json:"status"`
	OfferExpiresAt *time.Time            `json:"offer_expires_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

type RoomResponse struct {
	ID        uint   `json:"id"`
	RetreatID uint   `json:"retreat_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
	Occupied  int    `json:"occupied"`
	IsSoldOut bool   `json:"is_sold_out"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		BookingNumber:      b.BookingNumber,
		GuestName:          b.GuestName,
		GuestEmail:         b.GuestEmail,
		RetreatID:          b.RetreatID,
		RoomID:             b.RoomID,
		GuestsCount:        b.GuestsCount,
		Status:             b.Status,
		PaymentStatus:      b.PaymentStatus,
		TotalAmountCents:   b.TotalAmountCents,
		DepositAmountCents: b.DepositAmountCents,
		BalanceDueCents:    b.BalanceDueCents,
		CheckInDate:        b.CheckInDate,
		CheckOutDate:       b.CheckOutDate,
		GraceDeadline:      b.GraceDeadline,
		CreatedAt:          b.CreatedAt,
	}
}

func ToWaitlistResponse(e *models.WaitlistEntry) WaitlistResponse {
	return WaitlistResponse{
		ID:             e.ID,
		RetreatID:      e.RetreatID,
		RoomID:         e.RoomID,
		GuestName:      e.GuestName,
		Position:       e.Position,
		Status:         e.Status,
		OfferExpiresAt: e.OfferExpiresAt,
		CreatedAt:      e.CreatedAt,
	}
}

func ToRoomResponse(r *models.Room) RoomResponse {
	return RoomResponse{
		ID:        r.ID,
		RetreatID: r.RetreatID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Available: r.Available,
		Occupied:  r.Occupied(),
		IsSoldOut: r.IsSoldOut,
	}
}
