package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/wayfarer/internal/domain"
)

// InvitationRepo defines the persistence operations for list invitations.
// Every status change is a compare-and-set on status = 'pending', so two
// concurrent responses cannot both succeed.
type InvitationRepo interface {
	// Create inserts a pending invitation. A second pending invitation for
	// the same (list, invitee) violates a partial unique index and yields
	// domain.ErrConflict.
	Create(ctx context.Context, inv domain.ListInvitation) (domain.ListInvitation, error)

	// GetByID returns domain.ErrNotFound if no invitation has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.ListInvitation, error)

	// FindPending returns the pending invitation for (list, invitee), or
	// domain.ErrNotFound.
	FindPending(ctx context.Context, listID, inviteeID uuid.UUID) (domain.ListInvitation, error)

	// Transition moves a pending invitation to status. It returns
	// domain.ErrInvalidState when the invitation is no longer pending.
	Transition(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, now time.Time) (domain.ListInvitation, error)

	// Accept marks a pending, unexpired invitation accepted and upserts the
	// invitee's permission on the list in a single statement. Only the
	// list_permissions row for the invitee is written.
	// Returns domain.ErrInvalidState when the guard does not match.
	Accept(ctx context.Context, id uuid.UUID, now time.Time) (domain.ListPermission, error)

	// DeletePending removes a pending invitation. Returns
	// domain.ErrInvalidState when it is no longer pending.
	DeletePending(ctx context.Context, id uuid.UUID) error

	// ExpireStale marks every pending invitation addressed to inviteeID whose
	// expiry has passed as expired and returns how many changed.
	ExpireStale(ctx context.Context, inviteeID uuid.UUID, now time.Time) (int64, error)

	// ListPendingForInvitee returns pending invitations addressed to inviteeID,
	// newest first.
	ListPendingForInvitee(ctx context.Context, inviteeID uuid.UUID) ([]domain.ListInvitation, error)

	// ListByList returns every invitation on a list, newest first.
	ListByList(ctx context.Context, listID uuid.UUID) ([]domain.ListInvitation, error)
}

type pgInvitationRepo struct {
	db db
}

// NewInvitationRepo constructs an InvitationRepo backed by the provided db connection.
func NewInvitationRepo(db db) InvitationRepo {
	return &pgInvitationRepo{db: db}
}

const invitationColumns = `id, list_id, inviter_id, invitee_id, level, status, expires_at,
		responded_at, created_at, updated_at`

func (r *pgInvitationRepo) Create(ctx context.Context, inv domain.ListInvitation) (domain.ListInvitation, error) {
	const q = `
		INSERT INTO list_invitations (list_id, inviter_id, invitee_id, level, status, expires_at)
		VALUES (@list_id, @inviter_id, @invitee_id, @level, 'pending', @expires_at)
		RETURNING ` + invitationColumns

	args := pgx.NamedArgs{
		"list_id":    inv.ListID,
		"inviter_id": inv.InviterID,
		"invitee_id": inv.InviteeID,
		"level":      string(inv.Level),
		"expires_at": inv.ExpiresAt,
	}

	result, err := scanInvitation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("repo.InvitationRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgInvitationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ListInvitation, error) {
	const q = `SELECT ` + invitationColumns + ` FROM list_invitations WHERE id = @id`

	result, err := scanInvitation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("repo.InvitationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgInvitationRepo) FindPending(ctx context.Context, listID, inviteeID uuid.UUID) (domain.ListInvitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM list_invitations
		WHERE list_id = @list_id AND invitee_id = @invitee_id AND status = 'pending'`

	result, err := scanInvitation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"list_id": listID, "invitee_id": inviteeID}))
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("repo.InvitationRepo.FindPending: %w", err)
	}
	return result, nil
}

func (r *pgInvitationRepo) Transition(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, now time.Time) (domain.ListInvitation, error) {
	const q = `
		UPDATE list_invitations
		SET status       = @status,
		    responded_at = CASE WHEN @status IN ('accepted', 'rejected') THEN @now ELSE responded_at END,
		    updated_at   = now()
		WHERE id = @id AND status = 'pending'
		RETURNING ` + invitationColumns

	result, err := scanInvitation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status), "now": now}))
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("repo.InvitationRepo.Transition: %w", r.guardErr(ctx, id, err))
	}
	return result, nil
}

func (r *pgInvitationRepo) Accept(ctx context.Context, id uuid.UUID, now time.Time) (domain.ListPermission, error) {
	const q = `
		WITH accepted AS (
			UPDATE list_invitations
			SET status = 'accepted', responded_at = @now, updated_at = now()
			WHERE id = @id AND status = 'pending' AND expires_at >= @now
			RETURNING list_id, invitee_id, inviter_id, level
		), granted AS (
			INSERT INTO list_permissions (list_id, user_id, level, granted_by)
			SELECT list_id, invitee_id, level, inviter_id FROM accepted
			ON CONFLICT (list_id, user_id) DO UPDATE
			SET level      = EXCLUDED.level,
			    granted_by = EXCLUDED.granted_by
			RETURNING ` + permissionColumns + `
		)
		SELECT ` + permissionColumns + ` FROM granted`

	result, err := scanPermission(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "now": now}))
	if err != nil {
		return domain.ListPermission{}, fmt.Errorf("repo.InvitationRepo.Accept: %w", r.guardErr(ctx, id, err))
	}
	return result, nil
}

func (r *pgInvitationRepo) DeletePending(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM list_invitations WHERE id = @id AND status = 'pending'`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.InvitationRepo.DeletePending: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.InvitationRepo.DeletePending: %w", r.guardErr(ctx, id, domain.ErrNotFound))
	}
	return nil
}

func (r *pgInvitationRepo) ExpireStale(ctx context.Context, inviteeID uuid.UUID, now time.Time) (int64, error) {
	const q = `
		UPDATE list_invitations
		SET status = 'expired', updated_at = now()
		WHERE invitee_id = @invitee_id AND status = 'pending' AND expires_at < @now`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"invitee_id": inviteeID, "now": now})
	if err != nil {
		return 0, fmt.Errorf("repo.InvitationRepo.ExpireStale: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgInvitationRepo) ListPendingForInvitee(ctx context.Context, inviteeID uuid.UUID) ([]domain.ListInvitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM list_invitations
		WHERE invitee_id = @invitee_id AND status = 'pending'
		ORDER BY created_at DESC, id`

	invs, err := r.query(ctx, q, pgx.NamedArgs{"invitee_id": inviteeID})
	if err != nil {
		return nil, fmt.Errorf("repo.InvitationRepo.ListPendingForInvitee: %w", err)
	}
	return invs, nil
}

func (r *pgInvitationRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]domain.ListInvitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM list_invitations
		WHERE list_id = @list_id
		ORDER BY created_at DESC, id`

	invs, err := r.query(ctx, q, pgx.NamedArgs{"list_id": listID})
	if err != nil {
		return nil, fmt.Errorf("repo.InvitationRepo.ListByList: %w", err)
	}
	return invs, nil
}

// guardErr tells a missing invitation apart from one whose status guard did
// not match, after a conditional write affected no rows.
func (r *pgInvitationRepo) guardErr(ctx context.Context, id uuid.UUID, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return domain.ErrInvalidState
}

func (r *pgInvitationRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.ListInvitation, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := []domain.ListInvitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return invs, nil
}

func scanInvitation(s scanner) (domain.ListInvitation, error) {
	var (
		inv         domain.ListInvitation
		id          pgtype.UUID
		listID      pgtype.UUID
		inviterID   pgtype.UUID
		inviteeID   pgtype.UUID
		level       string
		status      string
		respondedAt pgtype.Timestamptz
	)

	err := s.Scan(&id, &listID, &inviterID, &inviteeID, &level, &status, &inv.ExpiresAt,
		&respondedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ListInvitation{}, domain.ErrNotFound
		}
		return domain.ListInvitation{}, err
	}

	inv.ID = uuid.UUID(id.Bytes)
	inv.ListID = uuid.UUID(listID.Bytes)
	inv.InviterID = uuid.UUID(inviterID.Bytes)
	inv.InviteeID = uuid.UUID(inviteeID.Bytes)
	inv.Level = domain.PermissionLevel(level)
	inv.Status = domain.InvitationStatus(status)
	inv.RespondedAt = timeValue(respondedAt)
	return inv, nil
}
