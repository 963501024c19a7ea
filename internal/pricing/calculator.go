// Package pricing derives booking totals from the ticket price, the
// number of reserved seats and the concession cart.  All arithmetic is
// exact decimal arithmetic; nothing is rounded.
package pricing

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-receipt-service/internal/model"
)

// Line is a priced cart entry.  Renderers consume lines directly so the
// cart is walked exactly once per request.
type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
	Amount    decimal.Decimal // UnitPrice × Quantity
}

// Result holds the totals of one booking.  It is derived per request and
// never cached.
type Result struct {
	TicketPrice  decimal.Decimal
	SeatCount    int
	TicketsTotal decimal.Decimal
	Lines        []Line
	FoodTotal    decimal.Decimal
	Total        decimal.Decimal
}

// HasCart reports whether any concession lines were priced.
func (r Result) HasCart() bool { return len(r.Lines) > 0 }

// Compute prices a booking.  It fails with *model.ValidationError when the
// ticket price is negative or a cart item lacks a non-negative price or
// quantity.
func Compute(ticketPrice decimal.Decimal, seats []model.Seat, cart []model.CartItem) (Result, error) {
	if ticketPrice.IsNegative() {
		return Result{}, model.Invalid("ticketPrice", "must not be negative")
	}

	lines := make([]Line, 0, len(cart))
	for i, item := range cart {
		line, err := priceItem(i, item)
		if err != nil {
			return Result{}, err
		}
		lines = append(lines, line)
	}

	ticketsTotal := ticketPrice.Mul(decimal.NewFromInt(int64(len(seats))))
	foodTotal := lo.Reduce(lines, func(acc decimal.Decimal, l Line, _ int) decimal.Decimal {
		return acc.Add(l.Amount)
	}, decimal.Zero)

	return Result{
		TicketPrice:  ticketPrice,
		SeatCount:    len(seats),
		TicketsTotal: ticketsTotal,
		Lines:        lines,
		FoodTotal:    foodTotal,
		Total:        ticketsTotal.Add(foodTotal),
	}, nil
}

func priceItem(i int, item model.CartItem) (Line, error) {
	field := fmt.Sprintf("cart[%d]", i)
	if !item.Price.Valid {
		return Line{}, model.Invalid(field+".price", "is required")
	}
	if item.Quantity == nil {
		return Line{}, model.Invalid(field+".quantity", "is required")
	}
	if item.Price.Decimal.IsNegative() {
		return Line{}, model.Invalid(field+".price", "must not be negative")
	}
	if *item.Quantity < 0 {
		return Line{}, model.Invalid(field+".quantity", "must not be negative")
	}
	return Line{
		Name:      item.Name,
		UnitPrice: item.Price.Decimal,
		Quantity:  *item.Quantity,
		Amount:    item.Price.Decimal.Mul(decimal.NewFromInt(*item.Quantity)),
	}, nil
}
