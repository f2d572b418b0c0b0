package domain

import (
	"time"

	"github.com/google/uuid"
)

// Visibility is the list-level default access applied when a user holds no
// explicit permission grant.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether v is one of the known visibility tiers.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityFriends, VisibilityPublic:
		return true
	}
	return false
}

// TravelList is the top-level aggregate: destinations belong to a list and
// journal entries are reachable through destinations.
// OwnerID is fixed at creation; no update path changes it.
type TravelList struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Title         string
	Description   string
	CoverImageURL string
	Visibility    Visibility

	// Permissions holds at most one entry per user, in grant order.
	Permissions []ListPermission

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PermissionFor returns the explicit grant for userID, if any.
func (l TravelList) PermissionFor(userID uuid.UUID) (ListPermission, bool) {
	for _, p := range l.Permissions {
		if p.UserID == userID {
			return p, true
		}
	}
	return ListPermission{}, false
}

// ListPermission is an explicit (user, level) grant on a list. It overrides
// the visibility tier for that user.
type ListPermission struct {
	ListID    uuid.UUID
	UserID    uuid.UUID
	Level     PermissionLevel
	GrantedAt time.Time
	GrantedBy uuid.UUID
}
