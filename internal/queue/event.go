// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptQueueName is the default durable queue receipts are announced on.
const ReceiptQueueName = "receipt.issued"

// ReceiptIssuedEvent is published after a receipt has been rendered.  It
// carries enough information for downstream consumers to audit or
// reconcile bookings without access to the request that produced it.
type ReceiptIssuedEvent struct {
	EventID       string          `json:"event_id"`
	Variant       string          `json:"variant"`
	MovieTitle    string          `json:"movie_title"`
	MovieTime     string          `json:"movie_time,omitempty"`
	Seats         []string        `json:"seats"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	TicketsTotal  decimal.Decimal `json:"tickets_total"`
	FoodTotal     decimal.Decimal `json:"food_total"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	EmailSent     bool            `json:"email_sent"`
	IssuedAt      string          `json:"issued_at"`
}

// NewEventID returns a fresh identifier for an event.
func NewEventID() string { return uuid.NewString() }

// FormatTime renders timestamps the way events carry them.
func FormatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }
