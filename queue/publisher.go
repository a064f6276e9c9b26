package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const defaultDialTimeout = 2 * time.Second

// Publisher sends events to a durable topic exchange. Each publish dials its
// own connection; event volume is a handful per room transition.
type Publisher struct {
	URL         string
	Exchange    string
	DialTimeout time.Duration
}

func NewPublisher(url, exchange string) *Publisher {
	if exchange == "" {
		exchange = "hotel.events"
	}
	return &Publisher{URL: url, Exchange: exchange, DialTimeout: defaultDialTimeout}
}

// dialTimeout is the configured timeout, shortened to the context deadline.
func (p *Publisher) dialTimeout(ctx context.Context) time.Duration {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return timeout
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	timeout := p.dialTimeout(ctx)
	if timeout <= 0 {
		return errors.Wrap(context.DeadlineExceeded, "rabbitmq dial")
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return errors.Wrap(err, "rabbitmq dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(
		p.Exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		return errors.Wrap(err, "rabbitmq exchange declare")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.Exchange, event.RoutingKey(), false, false, pub); err != nil {
		return errors.Wrap(err, "rabbitmq publish")
	}

	log.WithField("routing_key", event.RoutingKey()).Debug("event published")
	return nil
}

// Noop drops events; used when RABBITMQ_URL is empty.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
