package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. Calling an unset one panics, which fails the test loudly.

type mockUserRepo struct {
	create            func(ctx context.Context, u domain.User) (domain.User, error)
	getByID           func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByEmail        func(ctx context.Context, email string) (domain.User, error)
	addFriend         func(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error)
	removeFriend      func(ctx context.Context, userID, friendID uuid.UUID) error
	areFriends        func(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	listFriends       func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	listRequests      func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	activatePremium   func(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan, expiresAt time.Time, customerID, subscriptionID string) (domain.User, error)
	renewPremium      func(ctx context.Context, customerID string) (domain.User, error)
	deactivatePremium func(ctx context.Context, customerID string) (domain.User, error)
	sweepExpired      func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error) {
	return m.addFriend(ctx, userID, friendID)
}
func (m *mockUserRepo) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return m.removeFriend(ctx, userID, friendID)
}
func (m *mockUserRepo) AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	return m.areFriends(ctx, userID, friendID)
}
func (m *mockUserRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m.listFriends(ctx, userID)
}
func (m *mockUserRepo) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m.listRequests(ctx, userID)
}
func (m *mockUserRepo) ActivatePremium(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan, expiresAt time.Time, customerID, subscriptionID string) (domain.User, error) {
	return m.activatePremium(ctx, userID, plan, expiresAt, customerID, subscriptionID)
}
func (m *mockUserRepo) RenewPremium(ctx context.Context, customerID string) (domain.User, error) {
	return m.renewPremium(ctx, customerID)
}
func (m *mockUserRepo) DeactivatePremium(ctx context.Context, customerID string) (domain.User, error) {
	return m.deactivatePremium(ctx, customerID)
}
func (m *mockUserRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.sweepExpired(ctx, now)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockListRepo struct {
	create           func(ctx context.Context, l domain.TravelList) (domain.TravelList, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.TravelList, error)
	listByOwner      func(ctx context.Context, ownerID uuid.UUID) ([]domain.TravelList, error)
	listPublic       func(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error)
	update           func(ctx context.Context, l domain.TravelList) (domain.TravelList, error)
	delete           func(ctx context.Context, id uuid.UUID) ([]string, error)
	upsertPermission func(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error)
	addPermission    func(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error)
	removePermission func(ctx context.Context, listID, userID uuid.UUID) error
	listPermissions  func(ctx context.Context, listID uuid.UUID) ([]domain.ListPermission, error)
}

func (m *mockListRepo) Create(ctx context.Context, l domain.TravelList) (domain.TravelList, error) {
	return m.create(ctx, l)
}
func (m *mockListRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TravelList, error) {
	return m.getByID(ctx, id)
}
func (m *mockListRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.TravelList, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockListRepo) ListPublic(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error) {
	return m.listPublic(ctx, p)
}
func (m *mockListRepo) Update(ctx context.Context, l domain.TravelList) (domain.TravelList, error) {
	return m.update(ctx, l)
}
func (m *mockListRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	return m.delete(ctx, id)
}
func (m *mockListRepo) UpsertPermission(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error) {
	return m.upsertPermission(ctx, p)
}
func (m *mockListRepo) AddPermission(ctx context.Context, p domain.ListPermission) (domain.ListPermission, error) {
	return m.addPermission(ctx, p)
}
func (m *mockListRepo) RemovePermission(ctx context.Context, listID, userID uuid.UUID) error {
	return m.removePermission(ctx, listID, userID)
}
func (m *mockListRepo) ListPermissions(ctx context.Context, listID uuid.UUID) ([]domain.ListPermission, error) {
	return m.listPermissions(ctx, listID)
}

var _ repo.ListRepo = (*mockListRepo)(nil)

type mockUsageCounter struct {
	countOwnedLists     func(ctx context.Context, userID uuid.UUID) (int64, error)
	countDestinations   func(ctx context.Context, listID uuid.UUID) (int64, error)
	countJournalEntries func(ctx context.Context, authorID uuid.UUID) (int64, error)
	countCollaborators  func(ctx context.Context, listID uuid.UUID) (int64, error)
}

func (m *mockUsageCounter) CountOwnedLists(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.countOwnedLists(ctx, userID)
}
func (m *mockUsageCounter) CountDestinations(ctx context.Context, listID uuid.UUID) (int64, error) {
	return m.countDestinations(ctx, listID)
}
func (m *mockUsageCounter) CountJournalEntries(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return m.countJournalEntries(ctx, authorID)
}
func (m *mockUsageCounter) CountCollaborators(ctx context.Context, listID uuid.UUID) (int64, error) {
	return m.countCollaborators(ctx, listID)
}

var _ repo.UsageCounter = (*mockUsageCounter)(nil)

type mockInvitationRepo struct {
	create                func(ctx context.Context, inv domain.ListInvitation) (domain.ListInvitation, error)
	getByID               func(ctx context.Context, id uuid.UUID) (domain.ListInvitation, error)
	findPending           func(ctx context.Context, listID, inviteeID uuid.UUID) (domain.ListInvitation, error)
	transition            func(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, now time.Time) (domain.ListInvitation, error)
	accept                func(ctx context.Context, id uuid.UUID, now time.Time) (domain.ListPermission, error)
	deletePending         func(ctx context.Context, id uuid.UUID) error
	expireStale           func(ctx context.Context, inviteeID uuid.UUID, now time.Time) (int64, error)
	listPendingForInvitee func(ctx context.Context, inviteeID uuid.UUID) ([]domain.ListInvitation, error)
	listByList            func(ctx context.Context, listID uuid.UUID) ([]domain.ListInvitation, error)
}

func (m *mockInvitationRepo) Create(ctx context.Context, inv domain.ListInvitation) (domain.ListInvitation, error) {
	return m.create(ctx, inv)
}
func (m *mockInvitationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ListInvitation, error) {
	return m.getByID(ctx, id)
}
func (m *mockInvitationRepo) FindPending(ctx context.Context, listID, inviteeID uuid.UUID) (domain.ListInvitation, error) {
	return m.findPending(ctx, listID, inviteeID)
}
func (m *mockInvitationRepo) Transition(ctx context.Context, id uuid.UUID, status domain.InvitationStatus, now time.Time) (domain.ListInvitation, error) {
	return m.transition(ctx, id, status, now)
}
func (m *mockInvitationRepo) Accept(ctx context.Context, id uuid.UUID, now time.Time) (domain.ListPermission, error) {
	return m.accept(ctx, id, now)
}
func (m *mockInvitationRepo) DeletePending(ctx context.Context, id uuid.UUID) error {
	return m.deletePending(ctx, id)
}
func (m *mockInvitationRepo) ExpireStale(ctx context.Context, inviteeID uuid.UUID, now time.Time) (int64, error) {
	return m.expireStale(ctx, inviteeID, now)
}
func (m *mockInvitationRepo) ListPendingForInvitee(ctx context.Context, inviteeID uuid.UUID) ([]domain.ListInvitation, error) {
	return m.listPendingForInvitee(ctx, inviteeID)
}
func (m *mockInvitationRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]domain.ListInvitation, error) {
	return m.listByList(ctx, listID)
}

var _ repo.InvitationRepo = (*mockInvitationRepo)(nil)

type mockDestinationRepo struct {
	create      func(ctx context.Context, d domain.Destination) (domain.Destination, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Destination, error)
	listByList  func(ctx context.Context, listID uuid.UUID) ([]domain.Destination, error)
	update      func(ctx context.Context, d domain.Destination) (domain.Destination, error)
	appendImage func(ctx context.Context, id uuid.UUID, url string) (domain.Destination, error)
	delete      func(ctx context.Context, id uuid.UUID) ([]string, error)
}

func (m *mockDestinationRepo) Create(ctx context.Context, d domain.Destination) (domain.Destination, error) {
	return m.create(ctx, d)
}
func (m *mockDestinationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Destination, error) {
	return m.getByID(ctx, id)
}
func (m *mockDestinationRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]domain.Destination, error) {
	return m.listByList(ctx, listID)
}
func (m *mockDestinationRepo) Update(ctx context.Context, d domain.Destination) (domain.Destination, error) {
	return m.update(ctx, d)
}
func (m *mockDestinationRepo) AppendImage(ctx context.Context, id uuid.UUID, url string) (domain.Destination, error) {
	return m.appendImage(ctx, id, url)
}
func (m *mockDestinationRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	return m.delete(ctx, id)
}

var _ repo.DestinationRepo = (*mockDestinationRepo)(nil)

type mockJournalRepo struct {
	create            func(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error)
	getByID           func(ctx context.Context, id uuid.UUID) (domain.JournalEntry, error)
	listByDestination func(ctx context.Context, destinationID uuid.UUID) ([]domain.JournalEntry, error)
	appendPhoto       func(ctx context.Context, id uuid.UUID, url string, limit domain.Limit) (domain.JournalEntry, error)
	delete            func(ctx context.Context, id uuid.UUID) ([]string, error)
}

func (m *mockJournalRepo) Create(ctx context.Context, e domain.JournalEntry) (domain.JournalEntry, error) {
	return m.create(ctx, e)
}
func (m *mockJournalRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.JournalEntry, error) {
	return m.getByID(ctx, id)
}
func (m *mockJournalRepo) ListByDestination(ctx context.Context, destinationID uuid.UUID) ([]domain.JournalEntry, error) {
	return m.listByDestination(ctx, destinationID)
}
func (m *mockJournalRepo) AppendPhoto(ctx context.Context, id uuid.UUID, url string, limit domain.Limit) (domain.JournalEntry, error) {
	return m.appendPhoto(ctx, id, url, limit)
}
func (m *mockJournalRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	return m.delete(ctx, id)
}

var _ repo.JournalRepo = (*mockJournalRepo)(nil)

type mockCleaner struct {
	deleted [][]string
	err     error
}

func (m *mockCleaner) DeleteImages(_ context.Context, urls []string) error {
	m.deleted = append(m.deleted, urls)
	return m.err
}

type mockNotifier struct {
	calls int
	err   error
}

func (m *mockNotifier) InvitationCreated(_ context.Context, _ domain.ListInvitation, _ domain.TravelList, _, _ domain.User) error {
	m.calls++
	return m.err
}
