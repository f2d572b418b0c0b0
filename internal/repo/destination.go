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

// DestinationRepo defines the persistence operations for destinations.
type DestinationRepo interface {
	// Create inserts a destination. Returns domain.ErrNotFound if the list
	// does not exist.
	Create(ctx context.Context, d domain.Destination) (domain.Destination, error)

	// GetByID returns domain.ErrNotFound if no destination has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Destination, error)

	// ListByList returns a list's destinations in creation order.
	ListByList(ctx context.Context, listID uuid.UUID) ([]domain.Destination, error)

	// Update overwrites name, country, notes, status and dates. list_id and
	// images are not touched.
	Update(ctx context.Context, d domain.Destination) (domain.Destination, error)

	// AppendImage adds url to the end of the images array in one statement.
	AppendImage(ctx context.Context, id uuid.UUID, url string) (domain.Destination, error)

	// Delete removes the destination and returns the image URLs it and its
	// journal entries referenced.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type pgDestinationRepo struct {
	db db
}

// NewDestinationRepo constructs a DestinationRepo backed by the provided db connection.
func NewDestinationRepo(db db) DestinationRepo {
	return &pgDestinationRepo{db: db}
}

const destinationColumns = `id, list_id, name, country, notes, status, date_planned, date_visited,
		images, created_at, updated_at`

func (r *pgDestinationRepo) Create(ctx context.Context, d domain.Destination) (domain.Destination, error) {
	const q = `
		INSERT INTO destinations (list_id, name, country, notes, status, date_planned, date_visited, images)
		VALUES (@list_id, @name, @country, @notes, @status, @date_planned, @date_visited, @images)
		RETURNING ` + destinationColumns

	images := d.Images
	if images == nil {
		images = []string{}
	}
	args := pgx.NamedArgs{
		"list_id":      d.ListID,
		"name":         d.Name,
		"country":      d.Country,
		"notes":        d.Notes,
		"status":       string(d.Status),
		"date_planned": dateArg(d.DatePlanned),
		"date_visited": dateArg(d.DateVisited),
		"images":       images,
	}

	result, err := scanDestination(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgDestinationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Destination, error) {
	const q = `SELECT ` + destinationColumns + ` FROM destinations WHERE id = @id`

	result, err := scanDestination(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDestinationRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]domain.Destination, error) {
	const q = `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE list_id = @list_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"list_id": listID})
	if err != nil {
		return nil, fmt.Errorf("repo.DestinationRepo.ListByList: %w", err)
	}
	defer rows.Close()

	dests := []domain.Destination{}
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DestinationRepo.ListByList: scan: %w", err)
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DestinationRepo.ListByList: rows: %w", err)
	}
	return dests, nil
}

func (r *pgDestinationRepo) Update(ctx context.Context, d domain.Destination) (domain.Destination, error) {
	const q = `
		UPDATE destinations
		SET name         = @name,
		    country      = @country,
		    notes        = @notes,
		    status       = @status,
		    date_planned = @date_planned,
		    date_visited = @date_visited,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + destinationColumns

	args := pgx.NamedArgs{
		"id":           d.ID,
		"name":         d.Name,
		"country":      d.Country,
		"notes":        d.Notes,
		"status":       string(d.Status),
		"date_planned": dateArg(d.DatePlanned),
		"date_visited": dateArg(d.DateVisited),
	}

	result, err := scanDestination(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgDestinationRepo) AppendImage(ctx context.Context, id uuid.UUID, url string) (domain.Destination, error) {
	const q = `
		UPDATE destinations
		SET images = array_append(images, @url), updated_at = now()
		WHERE id = @id
		RETURNING ` + destinationColumns

	result, err := scanDestination(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "url": url}))
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.AppendImage: %w", err)
	}
	return result, nil
}

func (r *pgDestinationRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	// Locking the destination blocks new journal entries under it, and
	// locking the entries blocks photo appends, until the cascade is done.
	const lockDestination = `SELECT images FROM destinations WHERE id = @id FOR UPDATE`
	const lockEntries = `
		SELECT unnest(photos) FROM (
			SELECT photos FROM journal_entries WHERE destination_id = @id FOR UPDATE
		) j`
	const del = `DELETE FROM destinations WHERE id = @id`

	args := pgx.NamedArgs{"id": id}

	var urls []string
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, lockDestination, args).Scan(&urls); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		photos, err := queryStrings(ctx, tx, lockEntries, args)
		if err != nil {
			return err
		}
		urls = append(urls, photos...)
		_, err = tx.Exec(ctx, del, args)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.DestinationRepo.Delete: %w", err)
	}
	return urls, nil
}

func scanDestination(s scanner) (domain.Destination, error) {
	var (
		d           domain.Destination
		id          pgtype.UUID
		listID      pgtype.UUID
		status      string
		datePlanned pgtype.Date
		dateVisited pgtype.Date
	)

	err := s.Scan(&id, &listID, &d.Name, &d.Country, &d.Notes, &status, &datePlanned, &dateVisited,
		&d.Images, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Destination{}, domain.ErrNotFound
		}
		return domain.Destination{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.ListID = uuid.UUID(listID.Bytes)
	d.Status = domain.DestinationStatus(status)
	d.DatePlanned = dateValue(datePlanned)
	d.DateVisited = dateValue(dateVisited)
	return d, nil
}
