package domain

import (
	"fmt"
	"time"
)

// SubscriptionPlan is the billing interval chosen at checkout.
type SubscriptionPlan string

const (
	PlanNone    SubscriptionPlan = ""
	PlanMonthly SubscriptionPlan = "monthly"
	PlanYearly  SubscriptionPlan = "yearly"
)

// ExpiryFrom returns when a subscription bought at now on plan p lapses.
func (p SubscriptionPlan) ExpiryFrom(now time.Time) (time.Time, error) {
	switch p {
	case PlanMonthly:
		return now.AddDate(0, 1, 0), nil
	case PlanYearly:
		return now.AddDate(1, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: unknown subscription plan %q", ErrValidation, p)
}

// PaymentEventType names the payment provider events the lifecycle reacts to.
type PaymentEventType string

const (
	EventCheckoutCompleted   PaymentEventType = "checkout.session.completed"
	EventSubscriptionUpdated PaymentEventType = "customer.subscription.updated"
	EventSubscriptionDeleted PaymentEventType = "customer.subscription.deleted"
	EventPaymentSucceeded    PaymentEventType = "invoice.payment_succeeded"
	EventPaymentFailed       PaymentEventType = "invoice.payment_failed"
)

// PaymentEvent is the set of fields extracted from a provider webhook.
// Signature verification happens before one of these is built.
type PaymentEvent struct {
	ID   string           `json:"id"`
	Type PaymentEventType `json:"type"`

	// Set on checkout.session.completed from the session metadata.
	UserID string           `json:"user_id,omitempty"`
	Plan   SubscriptionPlan `json:"subscription_type,omitempty"`

	CustomerID     string `json:"customer_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`

	// Provider subscription status on customer.subscription.updated.
	Status string `json:"status,omitempty"`
}
