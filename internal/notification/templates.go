package notification

// Template pairs a subject and HTML body with the allow-list of variables
// that may contain raw HTML (links, pre-rendered schedule tables). Everything
// else is escaped at render time. The allow-list always comes from this
// table, even when the subject/body is overridden from the database.
type Template struct {
	Subject  string
	BodyHTML string
	RawKeys  []string
}

var fallbackTemplates = map[EventType]Template{
	TypeBookingConfirmed: {
		Subject: "Booking {{booking_number}} confirmed",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>Your booking <strong>{{booking_number}}</strong> for {{retreat_title}} is confirmed.</p>
{{schedule_table}}
<p>We look forward to welcoming you.</p>`,
		RawKeys: []string{"schedule_table"},
	},
	TypeBookingCancelled: {
		Subject: "Booking {{booking_number}} cancelled",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>Your booking <strong>{{booking_number}}</strong> has been cancelled.</p>
<p>{{reason}}</p>`,
	},
	TypePaymentReceived: {
		Subject: "Payment received for booking {{booking_number}}",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>We received your payment of {{amount}} for booking <strong>{{booking_number}}</strong>.</p>
<p>Remaining balance: {{balance_due}}.</p>`,
	},
	TypePaymentFailed: {
		Subject: "Payment failed for booking {{booking_number}}",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>A scheduled payment of {{amount}} for booking <strong>{{booking_number}}</strong> failed.</p>
<p>Please settle the amount before {{deadline}} to keep your booking.</p>`,
	},
	TypePaymentReminderThreeDay: {
		Subject: "3 days left to complete your payment",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>Only 3 days remain to complete the outstanding payment for booking <strong>{{booking_number}}</strong>.</p>
<p>After {{deadline}} the booking will be cancelled automatically.</p>`,
	},
	TypePaymentReminderOneDay: {
		Subject: "1 day left to complete your payment",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>This is the final reminder for booking <strong>{{booking_number}}</strong>: the payment deadline is {{deadline}}.</p>`,
	},
	TypeRefundIssued: {
		Subject: "Refund issued for booking {{booking_number}}",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>A refund of {{amount}} has been issued for booking <strong>{{booking_number}}</strong>.</p>`,
	},
	TypeWaitlistJoined: {
		Subject: "You are on the waitlist for {{retreat_title}}",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>You are number {{position}} on the waitlist for {{retreat_title}}. We will email you as soon as a spot opens up.</p>`,
	},
	TypeWaitlistOffer: {
		Subject: "A spot opened up at {{retreat_title}}",
		BodyHTML: `<p>Dear {{guest_name}},</p>
<p>A spot for {{retreat_title}} is now available. The offer is valid until {{expires_at}}.</p>
<p>{{accept_link}} &nbsp; {{decline_link}}</p>`,
		RawKeys: []string{"accept_link", "decline_link"},
	},

	TypeAdminNewBooking: {
		Subject:  "New booking {{booking_number}}",
		BodyHTML: `<p>New booking <strong>{{booking_number}}</strong> ({{guest_name}}, {{guests_count}} guests) for {{retreat_title}}.</p>`,
	},
	TypeAdminCancellation: {
		Subject:  "Booking {{booking_number}} cancelled",
		BodyHTML: `<p>Booking <strong>{{booking_number}}</strong> was cancelled. Reason: {{reason}}</p>`,
	},
	TypeAdminPaymentFailed: {
		Subject:  "Payment failed on booking {{booking_number}}",
		BodyHTML: `<p>A payment of {{amount}} failed on booking <strong>{{booking_number}}</strong>. Grace deadline: {{deadline}}.</p>`,
	},
	TypeAdminRefund: {
		Subject:  "Refund on booking {{booking_number}}",
		BodyHTML: `<p>A refund of {{amount}} was issued on booking <strong>{{booking_number}}</strong>.</p>`,
	},
	TypeAdminWaitlistAccepted: {
		Subject:  "Waitlist spot accepted for {{retreat_title}}",
		BodyHTML: `<p>{{guest_name}} accepted a waitlist offer for {{retreat_title}}; booking {{booking_number}} was created.</p>`,
	},
}
