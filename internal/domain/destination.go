package domain

import (
	"time"

	"github.com/google/uuid"
)

// DestinationStatus tracks where a destination is in the travel plan.
type DestinationStatus string

const (
	StatusWishlist DestinationStatus = "Wishlist"
	StatusPlanned  DestinationStatus = "Planned"
	StatusVisited  DestinationStatus = "Visited"
)

// Valid reports whether s is a known status.
func (s DestinationStatus) Valid() bool {
	switch s {
	case StatusWishlist, StatusPlanned, StatusVisited:
		return true
	}
	return false
}

// Destination belongs to exactly one list. ListID is fixed at creation.
// DatePlanned is only meaningful when Status is Planned, DateVisited only when
// Status is Visited.
type Destination struct {
	ID          uuid.UUID
	ListID      uuid.UUID
	Name        string
	Country     string
	Notes       string
	Status      DestinationStatus
	DatePlanned *time.Time
	DateVisited *time.Time
	Images      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
