package receipt

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-receipt-service/internal/model"
	"github.com/iliyamo/cinema-receipt-service/internal/pricing"
)

var issuedAt = time.Date(2026, time.October, 15, 18, 4, 0, 0, time.UTC)

func exampleBooking() model.BookingRequest {
	return model.BookingRequest{
		Email:       "guest@example.com",
		MovieTitle:  "Cheburashka",
		MovieTime:   "19:00",
		Seats:       []model.Seat{model.NumberSeat(5), model.NumberSeat(2), model.NumberSeat(9)},
		TicketPrice: decimal.NewFromInt(450),
		Cart: []model.CartItem{
			model.NewCartItem("Popcorn", decimal.NewFromInt(300), 2),
			model.NewCartItem("Cola", decimal.NewFromInt(150), 1),
		},
	}
}

func render(t *testing.T, req model.BookingRequest, v Variant) Receipt {
	t.Helper()
	res, err := pricing.Compute(req.TicketPrice, req.Seats, req.Cart)
	require.NoError(t, err)
	rc, err := NewRenderer(DefaultVenue()).Render(req, res, v, issuedAt)
	require.NoError(t, err)
	return rc
}

func TestRenderBookingExample(t *testing.T) {
	rc := render(t, exampleBooking(), CustomerTicket)

	assert.Equal(t, "2100", rc.Total.String())
	assert.Equal(t, "Your ticket: Cheburashka", rc.Subject)

	for _, out := range []string{rc.Text, rc.HTML} {
		assert.Contains(t, out, "2, 5, 9")
		assert.Contains(t, out, "Tickets: 3 x 450₽ = 1350₽")
		assert.Contains(t, out, "Popcorn x2 = 600₽")
		assert.Contains(t, out, "Cola x1 = 150₽")
		assert.Contains(t, out, "Concessions total: 750₽")
		assert.Contains(t, out, "TOTAL: 2100₽")
		assert.Contains(t, out, "15.10.2026")
		assert.Contains(t, out, "guest@example.com")
		assert.Contains(t, out, "Vershina Cinema")
	}
	assert.Contains(t, rc.Text, "Seats: 2, 5, 9")
	assert.Contains(t, rc.Text, "  • Popcorn x2 = 600₽")
	assert.Contains(t, rc.Text, "Email: guest@example.com")
}

func TestRenderTextLayout(t *testing.T) {
	rc := render(t, exampleBooking(), CustomerTicket)

	want := strings.Join([]string{
		"VERSHINA CINEMA",
		"E-ticket",
		"",
		textRule,
		"Movie: Cheburashka",
		"Time: 19:00",
		"Date: 15.10.2026",
		"Seats: 2, 5, 9",
		"",
		textRule,
		"RECEIPT",
		"Tickets: 3 x 450₽ = 1350₽",
		"",
		"CONCESSIONS",
		"  • Popcorn x2 = 600₽",
		"  • Cola x1 = 150₽",
		"Concessions total: 750₽",
		"",
		textRule,
		"TOTAL: 2100₽",
		textRule,
		"",
		"Booking confirmed!",
		"Email: guest@example.com",
		"",
		textRule,
		"Vershina Cinema",
		"1 Primernaya St., Moscow",
		"+7 (999) 123-45-67",
		"",
	}, "\n")
	assert.Equal(t, want, rc.Text)
}

func TestRenderIsIdempotent(t *testing.T) {
	a := render(t, exampleBooking(), CustomerTicket)
	b := render(t, exampleBooking(), CustomerTicket)

	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.HTML, b.HTML)
}

func TestRenderSeatOrderIgnoresInputOrder(t *testing.T) {
	req := exampleBooking()
	req.Seats = []model.Seat{model.NumberSeat(12), model.NumberSeat(3), model.NumberSeat(7)}
	first := render(t, req, CustomerTicket)

	req.Seats = []model.Seat{model.NumberSeat(7), model.NumberSeat(12), model.NumberSeat(3)}
	second := render(t, req, CustomerTicket)

	assert.Contains(t, first.Text, "Seats: 3, 7, 12")
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.HTML, second.HTML)
}

func TestRenderEmptyCartSuppressesSection(t *testing.T) {
	req := exampleBooking()
	req.Cart = nil
	rc := render(t, req, CustomerTicket)

	assert.NotContains(t, rc.Text, "CONCESSIONS")
	assert.NotContains(t, rc.Text, "Concessions total")
	assert.NotContains(t, rc.Text, "•")
	assert.NotContains(t, rc.HTML, `class="cart"`)
	assert.NotContains(t, rc.HTML, "<ul>")
	assert.NotContains(t, rc.HTML, "Concessions total")
	assert.Contains(t, rc.Text, "TOTAL: 1350₽")
}

func TestRenderCartSectionHasLinePerItemPlusSubtotal(t *testing.T) {
	rc := render(t, exampleBooking(), CustomerTicket)

	assert.Equal(t, 2, strings.Count(rc.Text, "  • "))
	assert.Equal(t, 1, strings.Count(rc.Text, "Concessions total: "))
	assert.Equal(t, 2, strings.Count(rc.HTML, "<li>"))
	assert.Equal(t, 1, strings.Count(rc.HTML, "Concessions total: "))
}

var totalPattern = regexp.MustCompile(`TOTAL: ([0-9.]+)`)

func TestRenderTotalsAgreeAcrossFormats(t *testing.T) {
	cases := []model.BookingRequest{
		exampleBooking(),
		{MovieTitle: "Gorynych", Email: "a@b.c", TicketPrice: decimal.RequireFromString("420.50"), Seats: []model.Seat{model.LabelSeat("A1")}},
		{MovieTitle: "Gorynych", Email: "a@b.c"},
		{
			MovieTitle:  "The Wizard of the Emerald City",
			Email:       "a@b.c",
			TicketPrice: decimal.NewFromInt(380),
			Seats:       []model.Seat{model.NumberSeat(40), model.NumberSeat(1)},
			Cart:        []model.CartItem{model.NewCartItem("Cotton candy", decimal.RequireFromString("249.99"), 3)},
		},
	}
	for _, req := range cases {
		for _, v := range []Variant{CustomerTicket, InternalNotification} {
			rc := render(t, req, v)

			textTotal := totalPattern.FindStringSubmatch(rc.Text)
			htmlTotal := totalPattern.FindStringSubmatch(rc.HTML)
			require.Len(t, textTotal, 2)
			require.Len(t, htmlTotal, 2)

			assert.Equal(t, textTotal[1], htmlTotal[1])
			assert.True(t, decimal.RequireFromString(textTotal[1]).Equal(rc.Total), "text total %s vs %s", textTotal[1], rc.Total)
		}
	}
}

func TestRenderVariantsShareBody(t *testing.T) {
	customer := render(t, exampleBooking(), CustomerTicket)
	internal := render(t, exampleBooking(), InternalNotification)

	assert.Equal(t, "New booking: Cheburashka", internal.Subject)
	assert.Contains(t, internal.Text, "A new booking has been placed.")
	assert.Contains(t, customer.Text, "Email: guest@example.com")
	assert.NotContains(t, internal.Text, "guest@example.com")
	assert.NotContains(t, internal.HTML, "guest@example.com")
	assert.NotContains(t, internal.Text, "Booking confirmed!")

	body := func(s string) string {
		start := strings.Index(s, "Movie:")
		end := strings.Index(s, "TOTAL:")
		return s[start:end]
	}
	assert.Equal(t, body(customer.Text), body(internal.Text))
}

func TestRenderInternalNotificationWithoutEmail(t *testing.T) {
	req := exampleBooking()
	req.Email = ""
	rc := render(t, req, InternalNotification)

	assert.NotContains(t, rc.Text, "Email:")
	assert.Contains(t, rc.Text, "TOTAL: 2100₽")
}

func TestRenderValidation(t *testing.T) {
	r := NewRenderer(DefaultVenue())
	res := pricing.Result{}

	noTitle := exampleBooking()
	noTitle.MovieTitle = "   "
	_, err := r.Render(noTitle, res, InternalNotification, issuedAt)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "movieTitle", ve.Field)

	noEmail := exampleBooking()
	noEmail.Email = ""
	_, err = r.Render(noEmail, res, CustomerTicket, issuedAt)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = r.Render(exampleBooking(), res, Variant(0), issuedAt)
	assert.True(t, model.IsValidation(err))
}

func TestRenderEscapesHTML(t *testing.T) {
	req := exampleBooking()
	req.MovieTitle = `<script>alert("x")</script>`
	req.Cart = []model.CartItem{model.NewCartItem("M&Ms", decimal.NewFromInt(100), 1)}
	rc := render(t, req, CustomerTicket)

	assert.NotContains(t, rc.HTML, "<script>")
	assert.Contains(t, rc.HTML, "&lt;script&gt;")
	assert.Contains(t, rc.HTML, "M&amp;Ms x1 = 100₽")
	assert.Contains(t, rc.Text, "M&Ms x1 = 100₽")
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("customer_ticket")
	require.NoError(t, err)
	assert.Equal(t, CustomerTicket, v)

	v, err = ParseVariant(" Internal ")
	require.NoError(t, err)
	assert.Equal(t, InternalNotification, v)

	_, err = ParseVariant("sms")
	assert.Error(t, err)
}
