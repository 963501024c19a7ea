// Package service wires the pure pricing and rendering core to its
// collaborators: the email dispatcher and the event publisher.  Both
// customer-facing and internal flows go through the same pipeline and
// differ only in the receipt variant and the delivery address.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-receipt-service/internal/logging"
	"github.com/iliyamo/cinema-receipt-service/internal/mailer"
	"github.com/iliyamo/cinema-receipt-service/internal/metrics"
	"github.com/iliyamo/cinema-receipt-service/internal/model"
	"github.com/iliyamo/cinema-receipt-service/internal/pricing"
	"github.com/iliyamo/cinema-receipt-service/internal/queue"
	"github.com/iliyamo/cinema-receipt-service/internal/receipt"
)

// Dispatcher delivers a rendered receipt to one address.  It returns
// *mailer.ConfigurationError when it lacks credentials and
// *mailer.DeliveryError when the transport fails.
type Dispatcher interface {
	Dispatch(ctx context.Context, rc receipt.Receipt, to string) error
}

// EventPublisher announces issued receipts to downstream consumers.
type EventPublisher interface {
	PublishReceiptIssued(ctx context.Context, event queue.ReceiptIssuedEvent) error
}

// DeliveryStatus reports what happened to the email for one receipt.
type DeliveryStatus struct {
	Attempted bool
	Sent      bool
	To        string
	Error     string
}

// Outcome is everything produced for one booking.  It is returned even
// alongside a ConfigurationError so the rendered receipt is never lost.
type Outcome struct {
	Receipt  receipt.Receipt
	Pricing  pricing.Result
	IssuedAt time.Time
	Delivery *DeliveryStatus
}

// Options configures a BookingService.
type Options struct {
	Renderer   receipt.Renderer
	Dispatcher Dispatcher     // nil disables email entirely
	Publisher  EventPublisher // nil disables events
	// EmailCustomers sends the customer ticket to the booking email.
	EmailCustomers bool
	// NotifyTo is the venue inbox for internal notifications.
	NotifyTo       string
	Clock          func() time.Time
	PublishTimeout time.Duration
}

// BookingService is stateless apart from its injected collaborators and
// is safe for concurrent use.
type BookingService struct {
	renderer       receipt.Renderer
	dispatcher     Dispatcher
	publisher      EventPublisher
	emailCustomers bool
	notifyTo       string
	clock          func() time.Time
	publishTimeout time.Duration
}

// New builds a BookingService.
func New(opts Options) *BookingService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 3 * time.Second
	}
	return &BookingService{
		renderer:       opts.Renderer,
		dispatcher:     opts.Dispatcher,
		publisher:      opts.Publisher,
		emailCustomers: opts.EmailCustomers,
		notifyTo:       opts.NotifyTo,
		clock:          opts.Clock,
		publishTimeout: opts.PublishTimeout,
	}
}

// IssueTicket renders the customer-facing ticket and, when customer
// emails are enabled, sends it to the booking email.
func (s *BookingService) IssueTicket(ctx context.Context, req model.BookingRequest) (Outcome, error) {
	out, err := s.prepare(ctx, req, receipt.CustomerTicket)
	if err != nil {
		return Outcome{}, err
	}
	if s.emailCustomers {
		if err := s.deliver(ctx, &out, req.Normalize().Email); err != nil {
			s.publish(ctx, req, out)
			return out, err
		}
	}
	s.publish(ctx, req, out)
	return out, nil
}

// NotifyBooking renders the internal booking alert and sends it to the
// venue inbox.  Delivery is always attempted; a missing transport or
// inbox yields *mailer.ConfigurationError together with the receipt.
func (s *BookingService) NotifyBooking(ctx context.Context, req model.BookingRequest) (Outcome, error) {
	out, err := s.prepare(ctx, req, receipt.InternalNotification)
	if err != nil {
		return Outcome{}, err
	}
	err = s.deliver(ctx, &out, s.notifyTo)
	s.publish(ctx, req, out)
	return out, err
}

func (s *BookingService) prepare(ctx context.Context, req model.BookingRequest, v receipt.Variant) (Outcome, error) {
	log := logging.FromContext(ctx).WithField("variant", v.String())

	res, err := pricing.Compute(req.TicketPrice, req.Seats, req.Cart)
	if err != nil {
		metrics.ReceiptsFailed.WithLabelValues(v.String(), reason(err)).Inc()
		log.WithError(err).Info("booking rejected")
		return Outcome{}, err
	}
	issuedAt := s.clock()
	rc, err := s.renderer.Render(req, res, v, issuedAt)
	if err != nil {
		metrics.ReceiptsFailed.WithLabelValues(v.String(), reason(err)).Inc()
		log.WithError(err).Info("booking rejected")
		return Outcome{}, err
	}

	metrics.ReceiptsIssued.WithLabelValues(v.String()).Inc()
	log.WithFields(logrus.Fields{
		"movie": req.MovieTitle,
		"seats": len(req.Seats),
		"total": res.Total.String(),
	}).Info("receipt rendered")
	return Outcome{Receipt: rc, Pricing: res, IssuedAt: issuedAt}, nil
}

// deliver attempts one send and records the result on out.  Only
// configuration problems are returned; transport failures are folded
// into the delivery status.
func (s *BookingService) deliver(ctx context.Context, out *Outcome, to string) error {
	v := out.Receipt.Variant.String()
	log := logging.FromContext(ctx).WithField("variant", v)
	status := &DeliveryStatus{To: to}
	out.Delivery = status

	var missing []string
	if s.dispatcher == nil {
		missing = append(missing, "email transport")
	}
	if to == "" {
		missing = append(missing, "recipient address")
	}
	if len(missing) > 0 {
		cfgErr := &mailer.ConfigurationError{Missing: missing}
		status.Error = cfgErr.Error()
		metrics.EmailsDispatched.WithLabelValues(v, "unconfigured").Inc()
		log.WithError(cfgErr).Error("email not configured")
		return cfgErr
	}

	status.Attempted = true
	start := time.Now()
	err := s.dispatcher.Dispatch(ctx, out.Receipt, to)
	metrics.EmailDuration.WithLabelValues(v).Observe(time.Since(start).Seconds())

	var cfgErr *mailer.ConfigurationError
	switch {
	case err == nil:
		status.Sent = true
		metrics.EmailsDispatched.WithLabelValues(v, "sent").Inc()
	case errors.As(err, &cfgErr):
		status.Attempted = false
		status.Error = err.Error()
		metrics.EmailsDispatched.WithLabelValues(v, "unconfigured").Inc()
		log.WithError(err).Error("email not configured")
		return err
	default:
		status.Error = err.Error()
		metrics.EmailsDispatched.WithLabelValues(v, "failed").Inc()
		log.WithError(err).Warn("email delivery failed")
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, req model.BookingRequest, out Outcome) {
	if s.publisher == nil {
		return
	}
	req = req.Normalize()
	ev := queue.ReceiptIssuedEvent{
		EventID:    queue.NewEventID(),
		Variant:    out.Receipt.Variant.String(),
		MovieTitle: req.MovieTitle,
		MovieTime:  req.MovieTime,
		Seats: lo.Map(model.SortedSeats(req.Seats), func(seat model.Seat, _ int) string {
			return seat.String()
		}),
		CustomerEmail: req.Email,
		TicketsTotal:  out.Pricing.TicketsTotal,
		FoodTotal:     out.Pricing.FoodTotal,
		Total:         out.Pricing.Total,
		Currency:      s.renderer.Venue.Currency,
		EmailSent:     out.Delivery != nil && out.Delivery.Sent,
		IssuedAt:      queue.FormatTime(out.IssuedAt),
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishReceiptIssued(pctx, ev); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("receipt event not published")
	}
}

func reason(err error) string {
	if model.IsValidation(err) {
		return "validation"
	}
	return "internal"
}
