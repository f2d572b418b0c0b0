package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/service"
)

// fixedNow is the clock every test runs at.
var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newPolicy(t *testing.T) *service.EntitlementPolicy {
	t.Helper()
	p, err := service.NewEntitlementPolicy(domain.FreeLimits(), domain.PremiumLimits(), service.WithClock(fixedClock))
	require.NoError(t, err)
	return p
}

func freeUser() domain.User {
	return domain.User{ID: uuid.New(), Email: "free@example.com"}
}

func premiumUser() domain.User {
	expires := fixedNow.AddDate(0, 1, 0)
	return domain.User{ID: uuid.New(), Email: "premium@example.com", Premium: true, PremiumExpiresAt: &expires}
}

// usersByID returns a mockUserRepo whose GetByID serves the given users and
// reports domain.ErrNotFound for anyone else.
func usersByID(users ...domain.User) *mockUserRepo {
	byID := map[uuid.UUID]domain.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	return &mockUserRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.User, error) {
			u, ok := byID[id]
			if !ok {
				return domain.User{}, domain.ErrNotFound
			}
			return u, nil
		},
		areFriends: func(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return false, nil },
	}
}

// listsByID returns a mockListRepo whose GetByID serves the given lists.
func listsByID(lists ...domain.TravelList) *mockListRepo {
	byID := map[uuid.UUID]domain.TravelList{}
	for _, l := range lists {
		byID[l.ID] = l
	}
	return &mockListRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.TravelList, error) {
			l, ok := byID[id]
			if !ok {
				return domain.TravelList{}, domain.ErrNotFound
			}
			return l, nil
		},
	}
}

// fixedUsage reports the same count for every resource.
func fixedUsage(n int64) *mockUsageCounter {
	count := func(context.Context, uuid.UUID) (int64, error) { return n, nil }
	return &mockUsageCounter{
		countOwnedLists:     count,
		countDestinations:   count,
		countJournalEntries: count,
		countCollaborators:  count,
	}
}

func listOwnedBy(ownerID uuid.UUID, vis domain.Visibility, perms ...domain.ListPermission) domain.TravelList {
	id := uuid.New()
	for i := range perms {
		perms[i].ListID = id
	}
	return domain.TravelList{ID: id, OwnerID: ownerID, Title: "Alps", Visibility: vis, Permissions: perms}
}

func ptr[T any](v T) *T { return &v }
