// Package events carries payment events from the billing webhook to the
// subscription lifecycle, either inline or through RabbitMQ.
package events

import (
	"context"

	"github.com/pkordes/wayfarer/internal/domain"
)

// EventHandler applies a payment event. Failures are its own to log.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev domain.PaymentEvent)
}

// Sink accepts an event for processing.
type Sink interface {
	Submit(ctx context.Context, ev domain.PaymentEvent) error
}

// Inline applies events on the calling goroutine.
type Inline struct {
	handler EventHandler
}

// NewInline wraps h as a Sink.
func NewInline(h EventHandler) *Inline {
	return &Inline{handler: h}
}

// Submit applies ev immediately. It never fails: the handler logs its own errors.
func (i *Inline) Submit(ctx context.Context, ev domain.PaymentEvent) error {
	i.handler.HandleEvent(ctx, ev)
	return nil
}
