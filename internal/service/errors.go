package service

import "errors"

var (
	ErrRetreatNotFound       = errors.New("retreat not found")
	ErrRoomNotFound          = errors.New("room not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrWaitlistNotFound      = errors.New("waitlist entry not found")
	ErrInsufficientInventory = errors.New("not enough seats available in room")
	ErrInvalidRefundAmount   = errors.New("refund amount outside refundable range")
	ErrOfferNotActive        = errors.New("waitlist offer is not active")
	ErrRoomRetreatMismatch   = errors.New("room does not belong to retreat")
)
