package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
	"github.com/pkordes/wayfarer/testutil"
)

// newTestTx wraps testutil.NewTx; every repo in a test shares the one
// rolled-back transaction.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

// createUser inserts a user with a unique email.
func createUser(t *testing.T, tx pgx.Tx) domain.User {
	t.Helper()
	u, err := repo.NewUserRepo(tx).Create(context.Background(), domain.User{
		Email:       uuid.NewString() + "@example.com",
		DisplayName: "Test User",
	})
	require.NoError(t, err, "create user")
	return u
}

// createList inserts a private list owned by ownerID.
func createList(t *testing.T, tx pgx.Tx, ownerID uuid.UUID) domain.TravelList {
	t.Helper()
	l, err := repo.NewListRepo(tx).Create(context.Background(), domain.TravelList{
		OwnerID:    ownerID,
		Title:      "Iceland Ring Road",
		Visibility: domain.VisibilityPrivate,
	})
	require.NoError(t, err, "create list")
	return l
}

// createDestination inserts a wishlist destination on listID.
func createDestination(t *testing.T, tx pgx.Tx, listID uuid.UUID) domain.Destination {
	t.Helper()
	d, err := repo.NewDestinationRepo(tx).Create(context.Background(), domain.Destination{
		ListID: listID,
		Name:   "Reykjavik",
		Status: domain.StatusWishlist,
	})
	require.NoError(t, err, "create destination")
	return d
}
