// Package domain contains the core data types for the Wayfarer travel journal.
// This package has no storage or transport dependencies and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Premium fields are written only by the
// subscription lifecycle; everything else by profile updates.
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	AvatarURL   string

	// Premium is the stored flag. It is not enough on its own: an expired
	// PremiumExpiresAt makes the user inactive even while the flag is still set.
	Premium bool
	// PremiumExpiresAt is nil for lifetime premium and for free users.
	PremiumExpiresAt *time.Time
	SubscriptionPlan SubscriptionPlan

	// Billing references from the payment provider. Empty for free users.
	BillingCustomerID     string
	BillingSubscriptionID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FriendStatus is where a friendship stands after one side asks for it.
// Only an accepted friendship counts for the friends visibility tier.
type FriendStatus string

const (
	// FriendPending means the other user has not asked back yet.
	FriendPending FriendStatus = "pending"
	// FriendAccepted means both users have asked.
	FriendAccepted FriendStatus = "accepted"
)
