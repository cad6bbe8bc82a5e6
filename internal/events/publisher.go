package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/wichananm65/clickshop-backend/internal/order"
)

// Publisher announces committed orders.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o order.Order) error
	Close() error
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	ch  channel
	now func() time.Time
}

// Dial connects to RabbitMQ and returns a publisher plus the connection so the
// caller can close it on shutdown.
func Dial(url string) (*RabbitPublisher, *amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newRabbitPublisher(ch)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return p, conn, nil
}

func newRabbitPublisher(ch channel) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", Exchange, err)
	}
	return &RabbitPublisher{ch: ch, now: time.Now}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishOrderCreated(ctx context.Context, o order.Order) error {
	env := BuildOrderCreatedEnvelope(o, p.now())
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(pubCtx, Exchange, OrderCreatedRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Timestamp:    env.OccurredAt,
		Type:         env.EventName,
		Body:         body,
	})
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, order.Order) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }
