package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BookingRequest is the payload a client submits once seats and snacks
// have been picked.  It is built from request input, never mutated and
// discarded once the receipt has been rendered.
//
// Fields:
//  Email       – customer address; required for the customer ticket only.
//  MovieTitle  – title of the movie (required).
//  MovieTime   – show time as displayed in the schedule, e.g. "17:20".
//  Seats       – reserved seats in the order the client sent them.
//  TicketPrice – price of one ticket, non-negative.
//  Cart        – concession items bought together with the tickets.
type BookingRequest struct {
	Email       string          `json:"email"`
	MovieTitle  string          `json:"movieTitle"`
	MovieTime   string          `json:"movieTime"`
	Seats       []Seat          `json:"seats"`
	TicketPrice decimal.Decimal `json:"ticketPrice"`
	Cart        []CartItem      `json:"cart"`
}

// Normalize trims surrounding whitespace from the free-text fields.
func (r BookingRequest) Normalize() BookingRequest {
	r.Email = strings.TrimSpace(r.Email)
	r.MovieTitle = strings.TrimSpace(r.MovieTitle)
	r.MovieTime = strings.TrimSpace(r.MovieTime)
	return r
}

// CartItem is one concession line.  Price and Quantity keep track of
// whether the client sent them at all so that a missing value can be
// rejected instead of silently becoming zero.
type CartItem struct {
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	Quantity *int64              `json:"quantity"`
}

// NewCartItem builds a fully populated cart item.
func NewCartItem(name string, price decimal.Decimal, quantity int64) CartItem {
	return CartItem{
		Name:     name,
		Price:    decimal.NewNullDecimal(price),
		Quantity: &quantity,
	}
}
