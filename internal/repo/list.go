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

// ListRepo defines the persistence operations for travel lists and their
// explicit permission grants.
type ListRepo interface {
	// Create inserts a list. Permissions on the input are ignored.
	Create(ctx context.Context, list domain.TravelList) (domain.TravelList, error)

	// GetByID returns the list with its permissions in grant order.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TravelList, error)

	// ListByOwner returns the owner's lists, newest first, without permissions.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.TravelList, error)

	// ListPublic pages through public lists, newest first.
	// It returns the page items and the total number of public lists.
	ListPublic(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error)

	// Update overwrites title, description, cover and visibility. The owner
	// column is never written.
	Update(ctx context.Context, list domain.TravelList) (domain.TravelList, error)

	// Delete removes the list; destinations, journal entries, permissions
	// and invitations go with it through ON DELETE CASCADE. It returns every
	// image the list referenced at the moment of deletion: the cover, the
	// destination images and the journal photos.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)

	// UpsertPermission sets the level for (list, user) in one statement.
	// An existing entry keeps its position and grant time; only level and
	// granted_by change.
	UpsertPermission(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error)

	// AddPermission inserts a new entry and returns domain.ErrConflict if
	// the user already has one.
	AddPermission(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error)

	// RemovePermission deletes the entry for (list, user). Removing an entry
	// that does not exist is not an error.
	RemovePermission(ctx context.Context, listID, userID uuid.UUID) error

	// ListPermissions returns the grants on a list in grant order.
	ListPermissions(ctx context.Context, listID uuid.UUID) ([]domain.ListPermission, error)
}

type pgListRepo struct {
	db db
}

// NewListRepo constructs a ListRepo backed by the provided db connection.
func NewListRepo(db db) ListRepo {
	return &pgListRepo{db: db}
}

const listColumns = `id, owner_id, title, description, cover_image_url, visibility, created_at, updated_at`

const permissionColumns = `list_id, user_id, level, granted_at, granted_by`

func (r *pgListRepo) Create(ctx context.Context, list domain.TravelList) (domain.TravelList, error) {
	const q = `
		INSERT INTO travel_lists (owner_id, title, description, cover_image_url, visibility)
		VALUES (@owner_id, @title, @description, @cover_image_url, @visibility)
		RETURNING ` + listColumns

	args := pgx.NamedArgs{
		"owner_id":        list.OwnerID,
		"title":           list.Title,
		"description":     list.Description,
		"cover_image_url": list.CoverImageURL,
		"visibility":      string(list.Visibility),
	}

	result, err := scanList(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("repo.ListRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgListRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TravelList, error) {
	const q = `SELECT ` + listColumns + ` FROM travel_lists WHERE id = @id`

	result, err := scanList(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("repo.ListRepo.GetByID: %w", err)
	}

	result.Permissions, err = r.ListPermissions(ctx, id)
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("repo.ListRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgListRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.TravelList, error) {
	const q = `
		SELECT ` + listColumns + `
		FROM travel_lists
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC, id`

	lists, err := r.queryLists(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.ListRepo.ListByOwner: %w", err)
	}
	return lists, nil
}

func (r *pgListRepo) ListPublic(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error) {
	const countQ = `SELECT count(*) FROM travel_lists WHERE visibility = 'public'`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ListRepo.ListPublic: count: %w", err)
	}

	const q = `
		SELECT ` + listColumns + `
		FROM travel_lists
		WHERE visibility = 'public'
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	lists, err := r.queryLists(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ListRepo.ListPublic: %w", err)
	}
	return lists, total, nil
}

func (r *pgListRepo) Update(ctx context.Context, list domain.TravelList) (domain.TravelList, error) {
	const q = `
		UPDATE travel_lists
		SET title           = @title,
		    description     = @description,
		    cover_image_url = @cover_image_url,
		    visibility      = @visibility,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + listColumns

	args := pgx.NamedArgs{
		"id":              list.ID,
		"title":           list.Title,
		"description":     list.Description,
		"cover_image_url": list.CoverImageURL,
		"visibility":      string(list.Visibility),
	}

	result, err := scanList(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("repo.ListRepo.Update: %w", err)
	}

	result.Permissions, err = r.ListPermissions(ctx, list.ID)
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("repo.ListRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgListRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	// Each lock blocks writers one level down: inserting a destination needs
	// a key-share lock on the list, a journal entry one on its destination.
	// Nothing can be added between collecting the URLs and the cascade.
	const lockList = `SELECT cover_image_url FROM travel_lists WHERE id = @id FOR UPDATE`
	const lockDestinations = `
		SELECT unnest(images) FROM (
			SELECT images FROM destinations WHERE list_id = @id FOR UPDATE
		) d`
	const lockEntries = `
		SELECT unnest(photos) FROM (
			SELECT j.photos
			FROM journal_entries j
			JOIN destinations d ON d.id = j.destination_id
			WHERE d.list_id = @id
			FOR UPDATE OF j
		) j`
	const del = `DELETE FROM travel_lists WHERE id = @id`

	args := pgx.NamedArgs{"id": id}

	var urls []string
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var cover string
		if err := tx.QueryRow(ctx, lockList, args).Scan(&cover); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		urls = append(urls, cover)
		for _, q := range []string{lockDestinations, lockEntries} {
			found, err := queryStrings(ctx, tx, q, args)
			if err != nil {
				return err
			}
			urls = append(urls, found...)
		}
		_, err := tx.Exec(ctx, del, args)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ListRepo.Delete: %w", err)
	}
	return withoutEmpty(urls), nil
}

func (r *pgListRepo) UpsertPermission(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error) {
	const q = `
		INSERT INTO list_permissions (list_id, user_id, level, granted_by)
		VALUES (@list_id, @user_id, @level, @granted_by)
		ON CONFLICT (list_id, user_id) DO UPDATE
		SET level      = EXCLUDED.level,
		    granted_by = EXCLUDED.granted_by
		RETURNING ` + permissionColumns

	result, err := scanPermission(r.db.QueryRow(ctx, q, permissionArgs(p)))
	if err != nil {
		return domain.ListPermission{}, fmt.Errorf("repo.ListRepo.UpsertPermission: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgListRepo) AddPermission(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error) {
	const q = `
		INSERT INTO list_permissions (list_id, user_id, level, granted_by)
		VALUES (@list_id, @user_id, @level, @granted_by)
		RETURNING ` + permissionColumns

	result, err := scanPermission(r.db.QueryRow(ctx, q, permissionArgs(p)))
	if err != nil {
		return domain.ListPermission{}, fmt.Errorf("repo.ListRepo.AddPermission: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgListRepo) RemovePermission(ctx context.Context, listID, userID uuid.UUID) error {
	const q = `DELETE FROM list_permissions WHERE list_id = @list_id AND user_id = @user_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"list_id": listID, "user_id": userID}); err != nil {
		return fmt.Errorf("repo.ListRepo.RemovePermission: %w", err)
	}
	return nil
}

func (r *pgListRepo) ListPermissions(ctx context.Context, listID uuid.UUID) ([]domain.ListPermission, error) {
	const q = `
		SELECT ` + permissionColumns + `
		FROM list_permissions
		WHERE list_id = @list_id
		ORDER BY granted_at, seq`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"list_id": listID})
	if err != nil {
		return nil, fmt.Errorf("repo.ListRepo.ListPermissions: %w", err)
	}
	defer rows.Close()

	var perms []domain.ListPermission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ListRepo.ListPermissions: scan: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ListRepo.ListPermissions: rows: %w", err)
	}
	return perms, nil
}

func (r *pgListRepo) queryLists(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.TravelList, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []domain.TravelList{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return lists, nil
}

func permissionArgs(p domain.ListPermission) pgx.NamedArgs {
	grantedBy := pgtype.UUID{Bytes: p.GrantedBy, Valid: p.GrantedBy != uuid.Nil}
	return pgx.NamedArgs{
		"list_id":    p.ListID,
		"user_id":    p.UserID,
		"level":      string(p.Level),
		"granted_by": grantedBy,
	}
}

func scanList(s scanner) (domain.TravelList, error) {
	var (
		l          domain.TravelList
		id         pgtype.UUID
		ownerID    pgtype.UUID
		visibility string
	)

	err := s.Scan(&id, &ownerID, &l.Title, &l.Description, &l.CoverImageURL, &visibility, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelList{}, domain.ErrNotFound
		}
		return domain.TravelList{}, err
	}

	l.ID = uuid.UUID(id.Bytes)
	l.OwnerID = uuid.UUID(ownerID.Bytes)
	l.Visibility = domain.Visibility(visibility)
	return l, nil
}

func scanPermission(s scanner) (domain.ListPermission, error) {
	var (
		p         domain.ListPermission
		listID    pgtype.UUID
		userID    pgtype.UUID
		level     string
		grantedBy pgtype.UUID
	)

	if err := s.Scan(&listID, &userID, &level, &p.GrantedAt, &grantedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ListPermission{}, domain.ErrNotFound
		}
		return domain.ListPermission{}, err
	}

	p.ListID = uuid.UUID(listID.Bytes)
	p.UserID = uuid.UUID(userID.Bytes)
	p.Level = domain.PermissionLevel(level)
	if grantedBy.Valid {
		p.GrantedBy = uuid.UUID(grantedBy.Bytes)
	}
	return p, nil
}

// queryStrings runs a single-column text query.
func withoutEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func queryStrings(ctx context.Context, db db, q string, args pgx.NamedArgs) ([]string, error) {
	rows, err := db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
