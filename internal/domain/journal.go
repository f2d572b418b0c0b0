package domain

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry is a post written by AuthorID about a destination.
// The number of Photos is bounded by the author's imagesPerJournal limit.
type JournalEntry struct {
	ID            uuid.UUID
	AuthorID      uuid.UUID
	DestinationID uuid.UUID
	Title         string
	Content       string
	Public        bool
	Photos        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
