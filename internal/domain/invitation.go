package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of a list invitation.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationRejected  InvitationStatus = "rejected"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

// DefaultInvitationTTL is how long an invitation stays acceptable when the
// caller does not choose an expiry.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationTransitions lists the states each state may move to.
// Terminal states have no entry.
var InvitationTransitions = map[InvitationStatus][]InvitationStatus{
	InvitationPending: {
		InvitationAccepted,
		InvitationRejected,
		InvitationCancelled,
		InvitationExpired,
	},
}

// CanTransition reports whether an invitation may move from one status to another.
func CanTransition(from, to InvitationStatus) bool {
	return slices.Contains(InvitationTransitions[from], to)
}

// Terminal reports whether no transition leaves s.
func (s InvitationStatus) Terminal() bool {
	return len(InvitationTransitions[s]) == 0
}

// ListInvitation asks InviteeID to collaborate on ListID at Level.
// At most one pending invitation exists per (ListID, InviteeID).
type ListInvitation struct {
	ID          uuid.UUID
	ListID      uuid.UUID
	InviterID   uuid.UUID
	InviteeID   uuid.UUID
	Level       PermissionLevel
	Status      InvitationStatus
	ExpiresAt   time.Time
	RespondedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpiredAt reports whether the invitation is past its expiry at now.
// Expiry is evaluated lazily: a pending row stays pending in storage until
// someone touches it.
func (i ListInvitation) ExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
