package receipt

import (
	"fmt"
	"strings"
)

// Variant selects which receipt is produced.  Variants change framing
// text only; pricing, seats and cart lines are rendered identically.
type Variant int

const (
	// CustomerTicket is the confirmation sent to the person who booked.
	CustomerTicket Variant = iota + 1
	// InternalNotification alerts venue staff about a new booking.
	InternalNotification
)

func (v Variant) String() string {
	switch v {
	case CustomerTicket:
		return "customer_ticket"
	case InternalNotification:
		return "internal_notification"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant maps the wire name of a variant back to its value.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer_ticket", "customer", "ticket":
		return CustomerTicket, nil
	case "internal_notification", "internal", "notification":
		return InternalNotification, nil
	}
	return 0, fmt.Errorf("unknown receipt variant %q", s)
}

// framing is the variant-specific text around the shared body.
type framing struct {
	subtitle     string
	subject      string // prefix, the movie title is appended
	confirmation string
	echoEmail    bool // print the customer email in the confirmation
	requireEmail bool
}

func (v Variant) framing() (framing, bool) {
	switch v {
	case CustomerTicket:
		return framing{
			subtitle:     "E-ticket",
			subject:      "Your ticket: ",
			confirmation: "Booking confirmed!",
			echoEmail:    true,
			requireEmail: true,
		}, true
	case InternalNotification:
		return framing{
			subtitle:     "New booking",
			subject:      "New booking: ",
			confirmation: "A new booking has been placed.",
		}, true
	}
	return framing{}, false
}
