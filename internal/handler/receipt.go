package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-receipt-service/internal/mailer"
	"github.com/iliyamo/cinema-receipt-service/internal/model"
	"github.com/iliyamo/cinema-receipt-service/internal/service"
)

// BookingService is the part of service.BookingService the handlers use.
type BookingService interface {
	IssueTicket(ctx context.Context, req model.BookingRequest) (service.Outcome, error)
	NotifyBooking(ctx context.Context, req model.BookingRequest) (service.Outcome, error)
}

// ReceiptHandler serves the receipt endpoints.
type ReceiptHandler struct {
	Service BookingService
}

type bookingRequest struct {
	Email       string           `json:"email" validate:"omitempty,email"`
	MovieTitle  string           `json:"movieTitle" validate:"required"`
	MovieTime   string           `json:"movieTime"`
	Seats       []model.Seat     `json:"seats" validate:"max=500"`
	TicketPrice decimal.Decimal  `json:"ticketPrice"`
	Cart        []model.CartItem `json:"cart" validate:"max=100"`
}

func (r bookingRequest) toModel() model.BookingRequest {
	return model.BookingRequest{
		Email:       r.Email,
		MovieTitle:  r.MovieTitle,
		MovieTime:   r.MovieTime,
		Seats:       r.Seats,
		TicketPrice: r.TicketPrice,
		Cart:        r.Cart,
	}.Normalize()
}

// IssueTicket handles POST /v1/receipts.
func (h *ReceiptHandler) IssueTicket(c echo.Context) error {
	req, err := bindBooking(c)
	if err != nil {
		return err
	}
	out, err := h.Service.IssueTicket(c.Request().Context(), req)
	return respond(c, req, out, err, "Booking confirmed! Receipt created for "+req.Email)
}

// NotifyBooking handles POST /v1/notifications/booking.
func (h *ReceiptHandler) NotifyBooking(c echo.Context) error {
	req, err := bindBooking(c)
	if err != nil {
		return err
	}
	out, err := h.Service.NotifyBooking(c.Request().Context(), req)
	return respond(c, req, out, err, "Booking notification created for "+req.MovieTitle)
}

func bindBooking(c echo.Context) (model.BookingRequest, error) {
	var body bookingRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code == http.StatusUnsupportedMediaType {
			return model.BookingRequest{}, err
		}
		if he.Internal != nil {
			err = he.Internal
		}
		return model.BookingRequest{}, model.Invalid("", "invalid JSON body: %v", err)
	}
	body.Email = strings.TrimSpace(body.Email)
	body.MovieTitle = strings.TrimSpace(body.MovieTitle)
	if err := c.Validate(&body); err != nil {
		return model.BookingRequest{}, err
	}
	return body.toModel(), nil
}

func respond(c echo.Context, req model.BookingRequest, out service.Outcome, err error, message string) error {
	var cfgErr *mailer.ConfigurationError
	switch {
	case err == nil:
	case errors.As(err, &cfgErr):
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":        "Error: " + cfgErr.Error(),
			"receipt":      out.Receipt.Text,
			"receipt_html": out.Receipt.HTML,
			"total":        jsonNumber(out.Receipt.Total),
		})
	default:
		return err
	}

	body := echo.Map{
		"success":      true,
		"message":      message,
		"receipt":      out.Receipt.Text,
		"receipt_html": out.Receipt.HTML,
		"subject":      out.Receipt.Subject,
		"email":        req.Email,
		"total":        jsonNumber(out.Receipt.Total),
	}
	if d := out.Delivery; d != nil {
		body["email_sent"] = d.Sent
		if d.Error != "" {
			body["email_error"] = d.Error
		} else {
			body["email_error"] = nil
		}
	}
	return c.JSON(http.StatusOK, body)
}

func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
