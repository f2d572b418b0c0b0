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

// UserRepo defines the persistence operations for users, their friendships and
// the premium fields written by the subscription lifecycle.
type UserRepo interface {
	// Create inserts a user. Returns domain.ErrConflict if the email is taken
	// (case-insensitively).
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// GetByID returns domain.ErrNotFound if no user has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// AddFriend records userID asking friendID to be friends. It reports
	// FriendAccepted when friendID had already asked userID, and
	// FriendPending otherwise. Idempotent.
	AddFriend(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error)

	// RemoveFriend deletes both directions, which ends a friendship or
	// withdraws or declines a request. Idempotent.
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error

	// AreFriends reports whether both users have asked each other.
	AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error)

	// ListFriends returns userID's accepted friends, oldest friendship first.
	ListFriends(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// ListFriendRequests returns the users who asked userID and have not
	// been asked back, oldest request first.
	ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// ActivatePremium sets premium, the expiry and the billing references.
	ActivatePremium(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan, expiresAt time.Time, customerID, subscriptionID string) (domain.User, error)

	// RenewPremium sets premium=true for the user holding customerID.
	// The expiry is left as it is.
	RenewPremium(ctx context.Context, customerID string) (domain.User, error)

	// DeactivatePremium sets premium=false and clears the subscription
	// reference for the user holding customerID.
	DeactivatePremium(ctx context.Context, customerID string) (domain.User, error)

	// SweepExpired clears premium on every user whose expiry is at or before
	// now, in one statement, and returns how many rows changed.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, email, display_name, avatar_url, premium, premium_expires_at,
		subscription_plan, billing_customer_id, billing_subscription_id, created_at, updated_at`

func (r *pgUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (email, display_name, avatar_url)
		VALUES (@email, @display_name, @avatar_url)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"email":        u.Email,
		"display_name": u.DisplayName,
		"avatar_url":   u.AvatarURL,
	}

	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower(@email)`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error) {
	// The reverse row is never written by this statement, so the snapshot
	// the SELECT sees is enough.
	const q = `
		WITH asked AS (
			INSERT INTO user_friends (user_id, friend_id)
			VALUES (@a, @b)
			ON CONFLICT DO NOTHING
		)
		SELECT EXISTS (
			SELECT 1 FROM user_friends WHERE user_id = @b AND friend_id = @a
		)`

	var mutual bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"a": userID, "b": friendID}).Scan(&mutual); err != nil {
		return "", fmt.Errorf("repo.UserRepo.AddFriend: %w", mapWriteErr(err))
	}
	if mutual {
		return domain.FriendAccepted, nil
	}
	return domain.FriendPending, nil
}

func (r *pgUserRepo) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	const q = `
		DELETE FROM user_friends
		WHERE (user_id = @a AND friend_id = @b)
		   OR (user_id = @b AND friend_id = @a)`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"a": userID, "b": friendID}); err != nil {
		return fmt.Errorf("repo.UserRepo.RemoveFriend: %w", err)
	}
	return nil
}

func (r *pgUserRepo) AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	const q = `
		SELECT count(*) = 2 FROM user_friends
		WHERE (user_id = @a AND friend_id = @b)
		   OR (user_id = @b AND friend_id = @a)`

	var ok bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"a": userID, "b": friendID}).Scan(&ok); err != nil {
		return false, fmt.Errorf("repo.UserRepo.AreFriends: %w", err)
	}
	return ok, nil
}

func (r *pgUserRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT mine.friend_id
		FROM user_friends mine
		JOIN user_friends theirs
		  ON theirs.user_id = mine.friend_id AND theirs.friend_id = mine.user_id
		WHERE mine.user_id = @user_id
		ORDER BY GREATEST(mine.created_at, theirs.created_at), mine.friend_id`

	ids, err := r.queryIDs(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListFriends: %w", err)
	}
	return ids, nil
}

func (r *pgUserRepo) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT req.user_id
		FROM user_friends req
		WHERE req.friend_id = @user_id
		  AND NOT EXISTS (
			SELECT 1 FROM user_friends back
			WHERE back.user_id = @user_id AND back.friend_id = req.user_id
		  )
		ORDER BY req.created_at, req.user_id`

	ids, err := r.queryIDs(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListFriendRequests: %w", err)
	}
	return ids, nil
}

func (r *pgUserRepo) queryIDs(ctx context.Context, q string, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ids, nil
}

func (r *pgUserRepo) ActivatePremium(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan, expiresAt time.Time, customerID, subscriptionID string) (domain.User, error) {
	const q = `
		UPDATE users
		SET premium                 = true,
		    premium_expires_at      = @expires_at,
		    subscription_plan       = @plan,
		    billing_customer_id     = @customer_id,
		    billing_subscription_id = @subscription_id,
		    updated_at              = now()
		WHERE id = @id
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"id":              userID,
		"expires_at":      expiresAt,
		"plan":            string(plan),
		"customer_id":     textArg(customerID),
		"subscription_id": textArg(subscriptionID),
	}

	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.ActivatePremium: %w", mapWriteErr(err))
	}
	return result, nil
}

func (r *pgUserRepo) RenewPremium(ctx context.Context, customerID string) (domain.User, error) {
	const q = `
		UPDATE users
		SET premium = true, updated_at = now()
		WHERE billing_customer_id = @customer_id
		RETURNING ` + userColumns

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"customer_id": customerID}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.RenewPremium: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) DeactivatePremium(ctx context.Context, customerID string) (domain.User, error) {
	const q = `
		UPDATE users
		SET premium                 = false,
		    subscription_plan       = '',
		    billing_subscription_id = NULL,
		    updated_at              = now()
		WHERE billing_customer_id = @customer_id
		RETURNING ` + userColumns

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"customer_id": customerID}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.DeactivatePremium: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE users
		SET premium            = false,
		    premium_expires_at = NULL,
		    updated_at         = now()
		WHERE premium
		  AND premium_expires_at IS NOT NULL
		  AND premium_expires_at <= @now`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"now": now})
	if err != nil {
		return 0, fmt.Errorf("repo.UserRepo.SweepExpired: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u              domain.User
		id             pgtype.UUID
		expiresAt      pgtype.Timestamptz
		plan           string
		customerID     pgtype.Text
		subscriptionID pgtype.Text
	)

	err := s.Scan(&id, &u.Email, &u.DisplayName, &u.AvatarURL, &u.Premium, &expiresAt,
		&plan, &customerID, &subscriptionID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	u.ID = uuid.UUID(id.Bytes)
	u.PremiumExpiresAt = timeValue(expiresAt)
	u.SubscriptionPlan = domain.SubscriptionPlan(plan)
	u.BillingCustomerID = customerID.String
	u.BillingSubscriptionID = subscriptionID.String
	return u, nil
}
