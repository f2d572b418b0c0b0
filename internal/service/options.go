// Package service contains the business logic for the Wayfarer API.
// Services validate inputs, enforce permission and limit rules, and
// orchestrate repo calls. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"io"
	"log/slog"
	"time"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

type options struct {
	now    Clock
	logger *slog.Logger
	ttl    time.Duration
}

// Option configures a service at construction.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.now = c
		}
	}
}

// WithLogger sets the logger used for best-effort side effects.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithInvitationTTL sets the default invitation lifetime.
func WithInvitationTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
