package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// SubscriptionLifecycle is the only writer of a user's premium fields.
// Activate, Renew and Deactivate are driven by payment events; SweepExpired
// by the scheduler.
type SubscriptionLifecycle struct {
	users  repo.UserRepo
	now    Clock
	logger *slog.Logger
}

// NewSubscriptionLifecycle constructs a SubscriptionLifecycle.
func NewSubscriptionLifecycle(users repo.UserRepo, opts ...Option) *SubscriptionLifecycle {
	o := buildOptions(opts)
	return &SubscriptionLifecycle{users: users, now: o.now, logger: o.logger}
}

// Activate turns premium on for userID with an expiry derived from plan and
// records the billing references.
func (s *SubscriptionLifecycle) Activate(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan, customerID, subscriptionID string) (domain.User, error) {
	expiresAt, err := plan.ExpiryFrom(s.now())
	if err != nil {
		return domain.User{}, fmt.Errorf("service.SubscriptionLifecycle.Activate: %w", err)
	}
	u, err := s.users.ActivatePremium(ctx, userID, plan, expiresAt, customerID, subscriptionID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.SubscriptionLifecycle.Activate: %w", err)
	}
	return u, nil
}

// Renew sets premium for the customer after a successful recurring payment.
// The expiry is plan-driven and stays where it is.
func (s *SubscriptionLifecycle) Renew(ctx context.Context, customerID string) (domain.User, error) {
	u, err := s.users.RenewPremium(ctx, customerID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.SubscriptionLifecycle.Renew: %w", err)
	}
	return u, nil
}

// Deactivate turns premium off for the customer and clears the subscription reference.
func (s *SubscriptionLifecycle) Deactivate(ctx context.Context, customerID string) (domain.User, error) {
	u, err := s.users.DeactivatePremium(ctx, customerID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.SubscriptionLifecycle.Deactivate: %w", err)
	}
	return u, nil
}

// SweepExpired clears premium on every user whose expiry has passed and
// returns how many were changed. Running it again immediately returns 0.
func (s *SubscriptionLifecycle) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.users.SweepExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service.SubscriptionLifecycle.SweepExpired: %w", err)
	}
	return n, nil
}

// activeSubscriptionStatuses are provider statuses that keep premium on.
var activeSubscriptionStatuses = map[string]bool{
	"active":   true,
	"trialing": true,
}

// HandleEvent applies a payment provider event. It never returns an error:
// failures are logged and the event counts as handled, so the provider does
// not redeliver it.
func (s *SubscriptionLifecycle) HandleEvent(ctx context.Context, ev domain.PaymentEvent) {
	log := s.logger.With("event_id", ev.ID, "event_type", string(ev.Type))

	var err error
	switch ev.Type {
	case domain.EventCheckoutCompleted:
		var userID uuid.UUID
		userID, err = uuid.Parse(ev.UserID)
		if err != nil {
			err = fmt.Errorf("%w: user id %q: %w", domain.ErrValidation, ev.UserID, err)
			break
		}
		_, err = s.Activate(ctx, userID, ev.Plan, ev.CustomerID, ev.SubscriptionID)
	case domain.EventPaymentSucceeded:
		_, err = s.Renew(ctx, ev.CustomerID)
	case domain.EventSubscriptionDeleted:
		_, err = s.Deactivate(ctx, ev.CustomerID)
	case domain.EventSubscriptionUpdated:
		if activeSubscriptionStatuses[ev.Status] {
			log.InfoContext(ctx, "subscription still active", "status", ev.Status)
			return
		}
		_, err = s.Deactivate(ctx, ev.CustomerID)
	case domain.EventPaymentFailed:
		log.WarnContext(ctx, "payment failed", "customer_id", ev.CustomerID)
		return
	default:
		log.DebugContext(ctx, "ignoring payment event")
		return
	}

	if err != nil {
		log.ErrorContext(ctx, "payment event failed", "customer_id", ev.CustomerID, "error", err)
		return
	}
	log.InfoContext(ctx, "payment event applied", "customer_id", ev.CustomerID)
}
