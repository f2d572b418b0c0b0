// Package repo contains all database access logic for the Wayfarer API.
// Each aggregate has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/wayfarer/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Connect opens a pool and pings it, retrying with a linear backoff while the
// database is still starting.
func Connect(ctx context.Context, dsn string, attempts int, interval time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.Connect: parse config: %w", err)
	}
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("repo.Connect: %w", errors.Join(ctx.Err(), lastErr))
		case <-time.After(time.Duration(i+1) * interval):
		}
	}
	return nil, fmt.Errorf("repo.Connect: giving up after %d attempts: %w", attempts, lastErr)
}

// isUniqueViolation detects PostgreSQL unique constraint violations (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation detects SQLSTATE 23503, raised when a referenced row is missing.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// mapWriteErr converts constraint violations into domain errors.
func mapWriteErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return err
}

// dateArg converts an optional calendar date into a pgtype.Date; nil becomes NULL.
func dateArg(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

// dateValue is the inverse of dateArg.
func dateValue(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// timeValue converts a nullable timestamptz into a *time.Time.
func timeValue(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

// textArg maps "" to NULL for nullable text columns with a unique constraint.
func textArg(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
