package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkordes/wayfarer/internal/config"
	"github.com/pkordes/wayfarer/internal/domain"
)

// Broker owns one RabbitMQ connection and channel with the billing topology
// declared: a durable topic exchange and a durable queue bound to it.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cfg  config.AMQPConfig
}

// Dial connects and declares the topology.
func Dial(cfg config.AMQPConfig) (*Broker, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("events.Dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events.Dial: %w", err)
	}

	b := &Broker{conn: conn, ch: ch, cfg: cfg}
	if err := b.declare(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("events.Dial: %w", err)
	}
	return b, nil
}

func (b *Broker) declare() error {
	if err := b.ch.ExchangeDeclare(b.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	q, err := b.ch.QueueDeclare(b.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	return b.ch.QueueBind(q.Name, b.cfg.RoutingKey, b.cfg.Exchange, false, nil)
}

// Publisher returns a Sink that publishes to this broker and falls back to
// fallback when publishing fails.
func (b *Broker) Publisher(fallback Sink, logger *slog.Logger) *Publisher {
	return NewPublisher(b.ch, b.cfg.Exchange, b.cfg.RoutingKey, fallback, logger)
}

// Consume starts delivery from the queue with manual acknowledgement.
func (b *Broker) Consume() (<-chan amqp.Delivery, error) {
	if err := b.ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("events.Broker.Consume: %w", err)
	}
	msgs, err := b.ch.Consume(b.cfg.Queue, "wayfarer-api", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("events.Broker.Consume: %w", err)
	}
	return msgs, nil
}

// Close closes the channel and the connection.
func (b *Broker) Close() error {
	var errs []error
	if b.ch != nil {
		errs = append(errs, b.ch.Close())
	}
	if b.conn != nil {
		errs = append(errs, b.conn.Close())
	}
	return errors.Join(errs...)
}

// PublishChannel is the part of *amqp.Channel the publisher uses.
type PublishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher queues payment events on an exchange.
type Publisher struct {
	ch         PublishChannel
	exchange   string
	routingKey string
	fallback   Sink
	logger     *slog.Logger
}

// NewPublisher builds a Publisher. fallback may be nil, in which case a
// failed publish is returned to the caller.
func NewPublisher(ch PublishChannel, exchange, routingKey string, fallback Sink, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{ch: ch, exchange: exchange, routingKey: routingKey, fallback: fallback, logger: logger}
}

// Submit publishes ev as a persistent JSON message.
func (p *Publisher) Submit(ctx context.Context, ev domain.PaymentEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events.Publisher.Submit: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err == nil {
		return nil
	}
	if p.fallback == nil {
		return fmt.Errorf("events.Publisher.Submit: %w", err)
	}
	p.logger.WarnContext(ctx, "publish failed; applying payment event inline",
		"event_id", ev.ID, "event_type", string(ev.Type), "error", err)
	return p.fallback.Submit(ctx, ev)
}

// ErrDeliveriesClosed is returned by Consumer.Serve when the broker closes
// the delivery channel. Queued events are no longer applied after it.
var ErrDeliveriesClosed = errors.New("events: delivery channel closed")

// Consumer applies queued payment events.
type Consumer struct {
	handler EventHandler
	logger  *slog.Logger
}

// NewConsumer builds a Consumer that hands each event to h.
func NewConsumer(h EventHandler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{handler: h, logger: logger}
}

// Serve processes msgs until ctx is done, returning ctx.Err(), or until the
// channel closes, returning ErrDeliveriesClosed. Undecodable messages are
// dropped; everything else is acknowledged once handled.
func (c *Consumer) Serve(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev domain.PaymentEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil || ev.Type == "" {
		c.logger.ErrorContext(ctx, "dropping malformed payment event", "message_id", d.MessageId, "error", err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.ErrorContext(ctx, "nack failed", "error", nackErr)
		}
		return
	}

	c.handler.HandleEvent(ctx, ev)
	if err := d.Ack(false); err != nil {
		c.logger.ErrorContext(ctx, "ack failed", "event_id", ev.ID, "error", err)
	}
}
