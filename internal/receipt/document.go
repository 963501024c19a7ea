package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-receipt-service/internal/model"
	"github.com/iliyamo/cinema-receipt-service/internal/pricing"
)

// dateLayout is how the issue date is printed (day.month.year).
const dateLayout = "02.01.2006"

type lineKind int

const (
	lineNote   lineKind = iota // free text
	lineField                  // "label: value" pair
	lineItem                   // bulleted cart entry
	lineAmount                 // "label: value" money line
)

type line struct {
	kind  lineKind
	label string
	value string
}

func (l line) text() string {
	switch l.kind {
	case lineField, lineAmount:
		return l.label + ": " + l.value
	}
	return l.value
}

// section is one block of the receipt.  Adding or removing a block of
// the receipt is a change to build only; the writers iterate sections.
type section struct {
	key        string // css class in HTML
	heading    string
	lines      []line
	ruleBefore bool
	ruleAfter  bool
}

type document struct {
	title    string
	sections []section
}

// build lays out a receipt.  Every figure is formatted here, once, so the
// text and HTML writers cannot disagree on amounts.
func build(venue Venue, f framing, req model.BookingRequest, res pricing.Result, issuedAt time.Time) document {
	money := func(d decimal.Decimal) string { return d.String() + venue.Currency }

	seatList := strings.Join(lo.Map(model.SortedSeats(req.Seats), func(s model.Seat, _ int) string {
		return s.String()
	}), ", ")

	movie := []line{{kind: lineField, label: "Movie", value: req.MovieTitle}}
	if req.MovieTime != "" {
		movie = append(movie, line{kind: lineField, label: "Time", value: req.MovieTime})
	}
	movie = append(movie,
		line{kind: lineField, label: "Date", value: issuedAt.Format(dateLayout)},
		line{kind: lineField, label: "Seats", value: seatList},
	)

	sections := []section{
		{
			key:     "header",
			heading: strings.ToUpper(venue.Name),
			lines:   []line{{kind: lineNote, value: f.subtitle}},
		},
		{key: "movie", lines: movie, ruleBefore: true},
		{
			key:        "tickets",
			heading:    "RECEIPT",
			ruleBefore: true,
			lines: []line{{
				kind:  lineAmount,
				label: "Tickets",
				value: fmt.Sprintf("%d x %s = %s", res.SeatCount, money(res.TicketPrice), money(res.TicketsTotal)),
			}},
		},
	}

	if res.HasCart() {
		items := lo.Map(res.Lines, func(l pricing.Line, _ int) line {
			return line{kind: lineItem, value: fmt.Sprintf("%s x%d = %s", l.Name, l.Quantity, money(l.Amount))}
		})
		items = append(items, line{kind: lineAmount, label: "Concessions total", value: money(res.FoodTotal)})
		sections = append(sections, section{key: "cart", heading: "CONCESSIONS", lines: items})
	}

	confirmation := []line{{kind: lineNote, value: f.confirmation}}
	if f.echoEmail {
		confirmation = append(confirmation, line{kind: lineField, label: "Email", value: req.Email})
	}

	sections = append(sections,
		section{
			key:        "total",
			lines:      []line{{kind: lineAmount, label: "TOTAL", value: money(res.Total)}},
			ruleBefore: true,
			ruleAfter:  true,
		},
		section{key: "confirmation", lines: confirmation},
		section{
			key:        "footer",
			ruleBefore: true,
			lines: []line{
				{kind: lineNote, value: venue.Name},
				{kind: lineNote, value: venue.Address},
				{kind: lineNote, value: venue.Phone},
			},
		},
	)

	return document{title: f.subject + req.MovieTitle, sections: sections}
}
