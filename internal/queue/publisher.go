package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const defaultDialTimeout = 5 * time.Second

// dial bounds the TCP connect and AMQP handshake by ctx's deadline, or by
// defaultDialTimeout when ctx has none.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
	timeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publisher announces issued receipts on a RabbitMQ queue.  Each publish
// opens its own connection; publish volume is one message per booking.
type Publisher struct {
	url   string
	queue string
	log   *logrus.Entry
}

// NewPublisher returns a publisher for the given broker URL and queue.
func NewPublisher(url, queue string, log *logrus.Entry) *Publisher {
	if queue == "" {
		queue = ReceiptQueueName
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Publisher{url: url, queue: queue, log: log.WithField("component", "queue-publisher")}
}

// PublishReceiptIssued publishes the event as a persistent JSON message.
// Errors are logged and returned so the caller can choose to ignore them.
func (p *Publisher) PublishReceiptIssued(ctx context.Context, event ReceiptIssuedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Error("marshal event failed")
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := dial(ctx, p.url)
	if err != nil {
		p.log.WithError(err).Warn("dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.WithError(err).Warn("queue declare failed")
		return fmt.Errorf("declare queue: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Type:         "ReceiptIssued",
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.WithError(err).Warn("publish failed")
		return fmt.Errorf("publish: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"variant":  event.Variant,
	}).Debug("receipt event published")
	return nil
}
