package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UsageCounter answers "how many X exist right now" for the limit guard.
// Every call is a fresh count(*) against committed state; nothing is cached.
type UsageCounter interface {
	CountOwnedLists(ctx context.Context, userID uuid.UUID) (int64, error)
	CountDestinations(ctx context.Context, listID uuid.UUID) (int64, error)
	CountJournalEntries(ctx context.Context, authorID uuid.UUID) (int64, error)
	CountCollaborators(ctx context.Context, listID uuid.UUID) (int64, error)
}

type pgUsageCounter struct {
	db db
}

// NewUsageCounter constructs a UsageCounter backed by the provided db connection.
func NewUsageCounter(db db) UsageCounter {
	return &pgUsageCounter{db: db}
}

func (c *pgUsageCounter) CountOwnedLists(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := c.count(ctx, `SELECT count(*) FROM travel_lists WHERE owner_id = @id`, userID)
	if err != nil {
		return 0, fmt.Errorf("repo.UsageCounter.CountOwnedLists: %w", err)
	}
	return n, nil
}

func (c *pgUsageCounter) CountDestinations(ctx context.Context, listID uuid.UUID) (int64, error) {
	n, err := c.count(ctx, `SELECT count(*) FROM destinations WHERE list_id = @id`, listID)
	if err != nil {
		return 0, fmt.Errorf("repo.UsageCounter.CountDestinations: %w", err)
	}
	return n, nil
}

func (c *pgUsageCounter) CountJournalEntries(ctx context.Context, authorID uuid.UUID) (int64, error) {
	n, err := c.count(ctx, `SELECT count(*) FROM journal_entries WHERE author_id = @id`, authorID)
	if err != nil {
		return 0, fmt.Errorf("repo.UsageCounter.CountJournalEntries: %w", err)
	}
	return n, nil
}

func (c *pgUsageCounter) CountCollaborators(ctx context.Context, listID uuid.UUID) (int64, error) {
	n, err := c.count(ctx, `SELECT count(*) FROM list_permissions WHERE list_id = @id`, listID)
	if err != nil {
		return 0, fmt.Errorf("repo.UsageCounter.CountCollaborators: %w", err)
	}
	return n, nil
}

func (c *pgUsageCounter) count(ctx context.Context, q string, id uuid.UUID) (int64, error) {
	var n int64
	if err := c.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
