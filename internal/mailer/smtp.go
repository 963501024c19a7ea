// Package mailer delivers rendered receipts over an SMTP relay.  It makes
// exactly one delivery attempt per call; retries, queues and connection
// pooling are deliberately absent.
package mailer

import (
	"context"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-receipt-service/internal/receipt"
)

// Config carries the SMTP relay credentials.  It is supplied when the
// sender is constructed and never read from the environment here.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Addr returns host:port of the relay.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate reports every missing setting at once.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "host")
	}
	if c.Port <= 0 {
		missing = append(missing, "port")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// sendFunc matches smtp.SendMail so tests can replace the transport.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends receipts through an SMTP relay.
type SMTPSender struct {
	cfg  Config
	send sendFunc
	now  func() time.Time
	log  *logrus.Entry
}

// NewSMTPSender builds a sender.  An incomplete config is accepted here
// and reported as *ConfigurationError on the first Dispatch, so the
// service can still render receipts when email is not set up.
func NewSMTPSender(cfg Config, log *logrus.Entry) *SMTPSender {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SMTPSender{
		cfg:  cfg,
		send: smtp.SendMail,
		now:  time.Now,
		log:  log.WithField("component", "mailer"),
	}
}

// Configured reports whether the sender has every credential it needs.
func (s *SMTPSender) Configured() bool { return s.cfg.Validate() == nil }

// Dispatch sends the receipt to the given address once.  It returns
// *ConfigurationError when credentials are missing and *DeliveryError
// when the relay rejects or cannot be reached.
func (s *SMTPSender) Dispatch(ctx context.Context, rc receipt.Receipt, to string) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &DeliveryError{To: to, Err: err}
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	sender, err := mail.ParseAddress(from)
	if err != nil {
		return &ConfigurationError{Missing: []string{"valid from address"}}
	}
	msg := Message{
		ID:      uuid.NewString() + "@" + s.cfg.Host,
		Date:    s.now(),
		Subject: rc.Subject,
		From:    sender.String(),
		To:      to,
		Text:    rc.Text,
		HTML:    rc.HTML,
	}
	raw, err := msg.Bytes()
	if err != nil {
		return &DeliveryError{To: to, Err: err}
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	start := time.Now()
	if err := s.send(s.cfg.Addr(), auth, sender.Address, []string{to}, raw); err != nil {
		s.log.WithError(err).WithField("to", to).Warn("email delivery failed")
		return &DeliveryError{To: to, Err: err}
	}
	s.log.WithFields(logrus.Fields{
		"to":       to,
		"subject":  rc.Subject,
		"duration": time.Since(start).String(),
	}).Info("email delivered")
	return nil
}
