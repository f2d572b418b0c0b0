package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/wayfarer/internal/domain"
)

// JournalRepo defines the persistence operations for journal entries.
type JournalRepo interface {
	Create(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error)

	// GetByID returns domain.ErrNotFound if no entry has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.JournalEntry, error)

	// ListByDestination returns entries on a destination, newest first.
	ListByDestination(ctx context.Context, destinationID uuid.UUID) ([]domain.JournalEntry, error)

	// AppendPhoto adds url to the entry's photos only while the entry holds
	// fewer than limit photos. A full entry yields domain.ErrLimitExceeded.
	// domain.Unlimited skips the bound.
	AppendPhoto(ctx context.Context, id uuid.UUID, url string, limit domain.Limit) (domain.JournalEntry, error)

	// Delete removes the entry and returns its photo URLs.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type pgJournalRepo struct {
	db db
}

// NewJournalRepo constructs a JournalRepo backed by the provided db connection.
func NewJournalRepo(db db) JournalRepo {
	return &pgJournalRepo{db: db}
}

const journalColumns = `id, author_id, destination_id, title, content, public, photos, created_at, updated_at`

func (r *pgJournalRepo) Create(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error) {
	const q = `
		INSERT INTO journal_entries (author_id, destination_id, title, content, public, photos)
		VALUES (@author_id, @destination_id, @title, @content, @public, @photos)
		RETURNING ` + journalColumns

	photos := e.Photos
	if photos == nil {
		photos = []string{}
	}
	args := pgx.NamedArgs{
		"author_id":      e.AuthorID,
		"destination_id": e.DestinationID,
		"title":          e.Title,
		"content":        e.Content,
		"public":         e.Public,
		"photos":         photos,
	}

	result, err := scanJournalEntry(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("repo.JournalRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgJournalRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.JournalEntry, error) {
	const q = `SELECT ` + journalColumns + ` FROM journal_entries WHERE id = @id`

	result, err := scanJournalEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("repo.JournalRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgJournalRepo) ListByDestination(ctx context.Context, destinationID uuid.UUID) ([]domain.JournalEntry, error) {
	const q = `
		SELECT ` + journalColumns + `
		FROM journal_entries
		WHERE destination_id = @destination_id
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"destination_id": destinationID})
	if err != nil {
		return nil, fmt.Errorf("repo.JournalRepo.ListByDestination: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.JournalRepo.ListByDestination: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.JournalRepo.ListByDestination: rows: %w", err)
	}
	return entries, nil
}

func (r *pgJournalRepo) AppendPhoto(ctx context.Context, id uuid.UUID, url string, limit domain.Limit) (domain.JournalEntry, error) {
	const q = `
		UPDATE journal_entries
		SET photos = array_append(photos, @url), updated_at = now()
		WHERE id = @id
		  AND (@limit::bigint < 0 OR cardinality(photos) < @limit::bigint)
		RETURNING ` + journalColumns

	result, err := scanJournalEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "url": url, "limit": int64(limit)}))
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.JournalEntry{}, fmt.Errorf("repo.JournalRepo.AppendPhoto: %w", err)
	}

	// No row updated: either the entry is gone or it is already full.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return domain.JournalEntry{}, fmt.Errorf("repo.JournalRepo.AppendPhoto: %w", getErr)
	}
	return domain.JournalEntry{}, fmt.Errorf("repo.JournalRepo.AppendPhoto: %w", domain.ErrLimitExceeded)
}

func (r *pgJournalRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	const q = `DELETE FROM journal_entries WHERE id = @id RETURNING photos`

	var photos []string
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&photos); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repo.JournalRepo.Delete: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.JournalRepo.Delete: %w", err)
	}
	return photos, nil
}

func scanJournalEntry(s scanner) (domain.JournalEntry, error) {
	var (
		e             domain.JournalEntry
		id            pgtype.UUID
		authorID      pgtype.UUID
		destinationID pgtype.UUID
	)

	err := s.Scan(&id, &authorID, &destinationID, &e.Title, &e.Content, &e.Public, &e.Photos, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JournalEntry{}, domain.ErrNotFound
		}
		return domain.JournalEntry{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.AuthorID = uuid.UUID(authorID.Bytes)
	e.DestinationID = uuid.UUID(destinationID.Bytes)
	return e, nil
}
