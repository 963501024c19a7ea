package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-receipt-service/internal/receipt"
)

// ConsumerConfig controls the receipt audit consumer.
type ConsumerConfig struct {
	URL     string
	Queue   string
	LogPath string // audit file, one line per receipt
}

const maxBackoff = 30 * time.Second

// StartReceiptConsumer connects to RabbitMQ, declares the receipt queue
// and appends every event to the audit log.  It reconnects with
// exponential backoff and returns only once ctx is cancelled.  Malformed
// messages are dropped; audit-file failures are requeued.
func StartReceiptConsumer(ctx context.Context, cfg ConsumerConfig, log *logrus.Entry) error {
	if cfg.Queue == "" {
		cfg.Queue = ReceiptQueueName
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "receipt-consumer")

	backoff := time.Second
	for {
		conn, err := dial(ctx, cfg.URL)
		if err != nil {
			log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, cfg, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func nextBackoff(d time.Duration) time.Duration {
	return min(d*2, maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg ConsumerConfig, log *logrus.Entry) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(cfg.LogPath, d.Body); err != nil {
				requeue := shouldRequeue(err)
				log.WithError(err).WithField("requeue", requeue).Error("handle message failed")
				_ = d.Nack(false, requeue)
				if requeue && !sleep(ctx, time.Second) {
					return ctx.Err()
				}
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// errMalformed marks messages that can never be handled.
var errMalformed = errors.New("malformed receipt event")

func shouldRequeue(err error) bool {
	return err != nil && !errors.Is(err, errMalformed)
}

func handleMessage(path string, body []byte) error {
	var ev ReceiptIssuedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if ev.EventID == "" {
		return fmt.Errorf("%w: event without id", errMalformed)
	}
	if _, err := receipt.ParseVariant(ev.Variant); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatAuditLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatAuditLine(ev ReceiptIssuedEvent) string {
	return fmt.Sprintf("[%s] Receipt issued | event_id=%s | variant=%s | movie=%q | time=%q | seats=[%s] | email=%q | tickets=%s | food=%s | total=%s%s | email_sent=%t\n",
		ev.IssuedAt, ev.EventID, ev.Variant, ev.MovieTitle, ev.MovieTime, strings.Join(ev.Seats, ","),
		ev.CustomerEmail, ev.TicketsTotal, ev.FoodTotal, ev.Total, ev.Currency, ev.EmailSent)
}
