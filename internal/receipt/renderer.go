// Package receipt renders booking receipts as plain text and HTML.
//
// Rendering is a pure function of the booking, its computed totals, the
// variant and an explicit issue time: no clock is read, no I/O happens,
// and rendering the same input twice gives byte-identical output.
package receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-receipt-service/internal/model"
	"github.com/iliyamo/cinema-receipt-service/internal/pricing"
)

// Receipt is the rendered result handed to callers and to the mailer.
type Receipt struct {
	Variant Variant
	Subject string
	Text    string
	HTML    string
	Total   decimal.Decimal
}

// Renderer turns a priced booking into a Receipt for a given venue.
type Renderer struct {
	Venue Venue
}

// NewRenderer returns a renderer printing the given venue constants.
func NewRenderer(venue Venue) Renderer {
	return Renderer{Venue: venue}
}

// Render produces both renderings.  It fails with *model.ValidationError
// when the movie title is empty, or when the customer email is empty for
// CustomerTicket.
func (r Renderer) Render(req model.BookingRequest, res pricing.Result, variant Variant, issuedAt time.Time) (Receipt, error) {
	f, ok := variant.framing()
	if !ok {
		return Receipt{}, model.Invalid("variant", "unknown receipt variant %s", variant)
	}
	req = req.Normalize()
	if req.MovieTitle == "" {
		return Receipt{}, model.Invalid("movieTitle", "is required")
	}
	if f.requireEmail && req.Email == "" {
		return Receipt{}, model.Invalid("email", "is required")
	}

	doc := build(r.Venue, f, req, res, issuedAt)
	return Receipt{
		Variant: variant,
		Subject: doc.title,
		Text:    writeText(doc),
		HTML:    writeHTML(doc),
		Total:   res.Total,
	}, nil
}
