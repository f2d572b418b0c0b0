package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/service"
)

func newListService(t *testing.T, lists *mockListRepo, usage *mockUsageCounter, cleaner service.ImageCleaner, users ...domain.User) *service.ListService {
	t.Helper()
	ur := usersByID(users...)
	return service.NewListService(lists, service.NewPermissionResolver(lists, ur), service.NewLimitGuard(ur, usage, newPolicy(t)), cleaner)
}

func echoCreate(_ context.Context, l domain.TravelList) (domain.TravelList, error) {
	l.ID = uuid.New()
	return l, nil
}

func TestListService_Create_DefaultsToPrivate(t *testing.T) {
	u := freeUser()
	lists := &mockListRepo{create: echoCreate}
	svc := newListService(t, lists, fixedUsage(0), nil, u)

	got, err := svc.Create(context.Background(), u.ID, service.ListInput{Title: ptr("  Japan  ")})

	require.NoError(t, err)
	assert.Equal(t, "Japan", got.Title)
	assert.Equal(t, domain.VisibilityPrivate, got.Visibility)
	assert.Equal(t, u.ID, got.OwnerID)
}

func TestListService_Create_Validation(t *testing.T) {
	u := freeUser()
	svc := newListService(t, &mockListRepo{}, fixedUsage(0), nil, u)

	tests := map[string]service.ListInput{
		"missing title":      {},
		"blank title":        {Title: ptr("   ")},
		"unknown visibility": {Title: ptr("x"), Visibility: ptr(domain.Visibility("secret"))},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), u.ID, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

// Scenario: a free user with three lists cannot create a fourth; once
// premium, they can.
func TestListService_Create_FreeLimitThenPremium(t *testing.T) {
	u := freeUser()
	lists := &mockListRepo{create: echoCreate}
	svc := newListService(t, lists, fixedUsage(3), nil, u)

	_, err := svc.Create(context.Background(), u.ID, service.ListInput{Title: ptr("Fourth")})

	var limitErr *domain.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, domain.ResourceLists, limitErr.Resource)
	assert.Equal(t, int64(3), limitErr.Current)
	assert.Equal(t, domain.Limit(3), limitErr.Limit)

	expires := fixedNow.AddDate(0, 1, 0)
	u.Premium, u.PremiumExpiresAt = true, &expires
	svc = newListService(t, lists, fixedUsage(3), nil, u)

	_, err = svc.Create(context.Background(), u.ID, service.ListInput{Title: ptr("Fourth")})
	assert.NoError(t, err)
}

func TestListService_Get_NonViewerForbidden(t *testing.T) {
	list := listOwnedBy(uuid.New(), domain.VisibilityPrivate)
	svc := newListService(t, listsByID(list), fixedUsage(0), nil)

	_, _, err := svc.Get(context.Background(), list.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListService_Get_ReturnsLevel(t *testing.T) {
	list := listOwnedBy(uuid.New(), domain.VisibilityPublic)
	svc := newListService(t, listsByID(list), fixedUsage(0), nil)

	got, level, err := svc.Get(context.Background(), list.ID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, list.ID, got.ID)
	assert.Equal(t, domain.LevelView, level)
}

func TestListService_Update_KeepsOwner(t *testing.T) {
	owner, contributor := uuid.New(), uuid.New()
	list := listOwnedBy(owner, domain.VisibilityPrivate, domain.ListPermission{UserID: contributor, Level: domain.LevelContribute})
	lists := listsByID(list)
	var saved domain.TravelList
	lists.update = func(_ context.Context, l domain.TravelList) (domain.TravelList, error) {
		saved = l
		return l, nil
	}
	svc := newListService(t, lists, fixedUsage(0), nil)

	got, err := svc.Update(context.Background(), list.ID, contributor, service.ListInput{
		Title:      ptr("Alps 2026"),
		Visibility: ptr(domain.VisibilityFriends),
	})

	require.NoError(t, err)
	assert.Equal(t, "Alps 2026", got.Title)
	assert.Equal(t, domain.VisibilityFriends, got.Visibility)
	assert.Equal(t, owner, saved.OwnerID)
}

func TestListService_Update_SuggestForbidden(t *testing.T) {
	suggester := uuid.New()
	list := listOwnedBy(uuid.New(), domain.VisibilityPrivate, domain.ListPermission{UserID: suggester, Level: domain.LevelSuggest})
	svc := newListService(t, listsByID(list), fixedUsage(0), nil)

	_, err := svc.Update(context.Background(), list.ID, suggester, service.ListInput{Title: ptr("x")})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Co-owners can edit the list but never delete it.
func TestListService_CoOwnerUpdateButNotDelete(t *testing.T) {
	coOwner := uuid.New()
	list := listOwnedBy(uuid.New(), domain.VisibilityPrivate, domain.ListPermission{UserID: coOwner, Level: domain.LevelCoOwner})
	lists := listsByID(list)
	lists.update = func(_ context.Context, l domain.TravelList) (domain.TravelList, error) { return l, nil }
	svc := newListService(t, lists, fixedUsage(0), nil)

	_, err := svc.Update(context.Background(), list.ID, coOwner, service.ListInput{Title: ptr("Renamed")})
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), list.ID, coOwner)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListService_Delete_ReturnsAndCleansImages(t *testing.T) {
	owner := uuid.New()
	list := listOwnedBy(owner, domain.VisibilityPrivate)
	urls := []string{"https://img/cover.jpg", "https://img/dest.jpg", "https://img/journal.jpg"}
	lists := listsByID(list)
	var deleted uuid.UUID
	lists.delete = func(_ context.Context, id uuid.UUID) ([]string, error) {
		deleted = id
		return urls, nil
	}
	cleaner := &mockCleaner{}
	svc := newListService(t, lists, fixedUsage(0), cleaner)

	got, err := svc.Delete(context.Background(), list.ID, owner)

	require.NoError(t, err)
	assert.Equal(t, list.ID, deleted)
	assert.ElementsMatch(t, urls, got)
	assert.Equal(t, [][]string{urls}, cleaner.deleted)
}

func TestListService_Delete_CleanupFailureIsNotAnError(t *testing.T) {
	owner := uuid.New()
	list := listOwnedBy(owner, domain.VisibilityPrivate)
	lists := listsByID(list)
	lists.delete = func(context.Context, uuid.UUID) ([]string, error) { return []string{"https://img/a.jpg"}, nil }
	svc := newListService(t, lists, fixedUsage(0), &mockCleaner{err: errors.New("s3 down")})

	got, err := svc.Delete(context.Background(), list.ID, owner)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListService_Delete_NotFound(t *testing.T) {
	svc := newListService(t, listsByID(), fixedUsage(0), nil)

	_, err := svc.Delete(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListService_ListPublic(t *testing.T) {
	want := []domain.TravelList{listOwnedBy(uuid.New(), domain.VisibilityPublic)}
	lists := &mockListRepo{
		listPublic: func(_ context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error) {
			assert.Equal(t, 2, p.Page)
			return want, 11, nil
		},
	}
	svc := newListService(t, lists, fixedUsage(0), nil)

	got, total, err := svc.ListPublic(context.Background(), domain.PaginationParams{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(11), total)
}
