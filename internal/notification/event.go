package notification

// EventType keys both the template lookup and the audit log.
type EventType string

const (
	TypeBookingConfirmed        EventType = "booking_confirmed"
	TypeBookingCancelled        EventType = "booking_cancelled"
	TypePaymentReceived         EventType = "payment_received"
	TypePaymentFailed           EventType = "payment_failed"
	TypePaymentReminderThreeDay EventType = "payment_reminder_3day"
	TypePaymentReminderOneDay   EventType = "payment_reminder_1day"
	TypeRefundIssued            EventType = "refund_issued"
	TypeWaitlistJoined          EventType = "waitlist_joined"
	TypeWaitlistOffer           EventType = "waitlist_offer"

	TypeAdminNewBooking       EventType = "admin_new_booking"
	TypeAdminCancellation     EventType = "admin_cancellation"
	TypeAdminPaymentFailed    EventType = "admin_payment_failed"
	TypeAdminRefund           EventType = "admin_refund"
	TypeAdminWaitlistAccepted EventType = "admin_waitlist_accepted"
)

// Event is one notification to fan out. To is empty for admin events; the
// dispatcher resolves the destination through the configured fallback chain.
type Event struct {
	Type      EventType
	To        string
	Language  string
	BookingID *uint
	PaymentID *uint
	Vars      map[string]string
}

// adminCategory maps admin event types onto their enable-flag/destination
// category. Non-admin events return ok=false.
func adminCategory(t EventType) (string, bool) {
	switch t {
	case TypeAdminNewBooking, TypeAdminCancellation:
		return "bookings", true
	case TypeAdminPaymentFailed, TypeAdminRefund:
		return "payments", true
	case TypeAdminWaitlistAccepted:
		return "waitlist", true
	default:
		return "", false
	}
}
