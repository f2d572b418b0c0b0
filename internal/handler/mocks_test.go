package handler_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/handler"
	"github.com/pkordes/wayfarer/internal/service"
)

// Function-field test doubles for the handler.*Servicer interfaces.
// Set only the method fields your test needs.

type mockListServicer struct {
	create     func(ctx context.Context, ownerID uuid.UUID, in service.ListInput) (domain.TravelList, error)
	get        func(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error)
	listOwned  func(ctx context.Context, userID uuid.UUID) ([]domain.TravelList, error)
	listPublic func(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error)
	update     func(ctx context.Context, listID, userID uuid.UUID, in service.ListInput) (domain.TravelList, error)
	delete     func(ctx context.Context, listID, userID uuid.UUID) ([]string, error)
}

func (m *mockListServicer) Create(ctx context.Context, ownerID uuid.UUID, in service.ListInput) (domain.TravelList, error) {
	return m.create(ctx, ownerID, in)
}
func (m *mockListServicer) Get(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error) {
	return m.get(ctx, listID, userID)
}
func (m *mockListServicer) ListOwned(ctx context.Context, userID uuid.UUID) ([]domain.TravelList, error) {
	return m.listOwned(ctx, userID)
}
func (m *mockListServicer) ListPublic(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error) {
	return m.listPublic(ctx, p)
}
func (m *mockListServicer) Update(ctx context.Context, listID, userID uuid.UUID, in service.ListInput) (domain.TravelList, error) {
	return m.update(ctx, listID, userID, in)
}
func (m *mockListServicer) Delete(ctx context.Context, listID, userID uuid.UUID) ([]string, error) {
	return m.delete(ctx, listID, userID)
}

var _ handler.ListServicer = (*mockListServicer)(nil)

type mockDestinationServicer struct {
	create     func(ctx context.Context, listID, userID uuid.UUID, in service.DestinationInput) (domain.Destination, error)
	listByList func(ctx context.Context, listID, userID uuid.UUID) ([]domain.Destination, error)
	get        func(ctx context.Context, id, userID uuid.UUID) (domain.Destination, error)
	update     func(ctx context.Context, id, userID uuid.UUID, in service.DestinationInput) (domain.Destination, error)
	addImage   func(ctx context.Context, id, userID uuid.UUID, url string) (domain.Destination, error)
	delete     func(ctx context.Context, id, userID uuid.UUID) ([]string, error)
}

func (m *mockDestinationServicer) Create(ctx context.Context, listID, userID uuid.UUID, in service.DestinationInput) (domain.Destination, error) {
	return m.create(ctx, listID, userID, in)
}
func (m *mockDestinationServicer) ListByList(ctx context.Context, listID, userID uuid.UUID) ([]domain.Destination, error) {
	return m.listByList(ctx, listID, userID)
}
func (m *mockDestinationServicer) Get(ctx context.Context, id, userID uuid.UUID) (domain.Destination, error) {
	return m.get(ctx, id, userID)
}
func (m *mockDestinationServicer) Update(ctx context.Context, id, userID uuid.UUID, in service.DestinationInput) (domain.Destination, error) {
	return m.update(ctx, id, userID, in)
}
func (m *mockDestinationServicer) AddImage(ctx context.Context, id, userID uuid.UUID, url string) (domain.Destination, error) {
	return m.addImage(ctx, id, userID, url)
}
func (m *mockDestinationServicer) Delete(ctx context.Context, id, userID uuid.UUID) ([]string, error) {
	return m.delete(ctx, id, userID)
}

var _ handler.DestinationServicer = (*mockDestinationServicer)(nil)

type mockJournalServicer struct {
	create            func(ctx context.Context, authorID, destinationID uuid.UUID, in service.JournalInput) (domain.JournalEntry, error)
	get               func(ctx context.Context, id, userID uuid.UUID) (domain.JournalEntry, error)
	listByDestination func(ctx context.Context, destinationID, userID uuid.UUID) ([]domain.JournalEntry, error)
	addPhoto          func(ctx context.Context, id, userID uuid.UUID, url string) (domain.JournalEntry, error)
	delete            func(ctx context.Context, id, userID uuid.UUID) ([]string, error)
}

func (m *mockJournalServicer) Create(ctx context.Context, authorID, destinationID uuid.UUID, in service.JournalInput) (domain.JournalEntry, error) {
	return m.create(ctx, authorID, destinationID, in)
}
func (m *mockJournalServicer) Get(ctx context.Context, id, userID uuid.UUID) (domain.JournalEntry, error) {
	return m.get(ctx, id, userID)
}
func (m *mockJournalServicer) ListByDestination(ctx context.Context, destinationID, userID uuid.UUID) ([]domain.JournalEntry, error) {
	return m.listByDestination(ctx, destinationID, userID)
}
func (m *mockJournalServicer) AddPhoto(ctx context.Context, id, userID uuid.UUID, url string) (domain.JournalEntry, error) {
	return m.addPhoto(ctx, id, userID, url)
}
func (m *mockJournalServicer) Delete(ctx context.Context, id, userID uuid.UUID) ([]string, error) {
	return m.delete(ctx, id, userID)
}

var _ handler.JournalServicer = (*mockJournalServicer)(nil)

type mockInvitationServicer struct {
	create         func(ctx context.Context, in service.CreateInvitationInput) (domain.ListInvitation, error)
	accept         func(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error)
	reject         func(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error)
	cancel         func(ctx context.Context, id, actingUserID uuid.UUID) error
	revoke         func(ctx context.Context, listID, actingUserID, userID uuid.UUID) error
	listForInvitee func(ctx context.Context, userID uuid.UUID) ([]domain.ListInvitation, error)
	listForList    func(ctx context.Context, listID, actingUserID uuid.UUID) ([]domain.ListInvitation, error)
}

func (m *mockInvitationServicer) Create(ctx context.Context, in service.CreateInvitationInput) (domain.ListInvitation, error) {
	return m.create(ctx, in)
}
func (m *mockInvitationServicer) Accept(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error) {
	return m.accept(ctx, id, actingUserID)
}
func (m *mockInvitationServicer) Reject(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error) {
	return m.reject(ctx, id, actingUserID)
}
func (m *mockInvitationServicer) Cancel(ctx context.Context, id, actingUserID uuid.UUID) error {
	return m.cancel(ctx, id, actingUserID)
}
func (m *mockInvitationServicer) Revoke(ctx context.Context, listID, actingUserID, userID uuid.UUID) error {
	return m.revoke(ctx, listID, actingUserID, userID)
}
func (m *mockInvitationServicer) ListForInvitee(ctx context.Context, userID uuid.UUID) ([]domain.ListInvitation, error) {
	return m.listForInvitee(ctx, userID)
}
func (m *mockInvitationServicer) ListForList(ctx context.Context, listID, actingUserID uuid.UUID) ([]domain.ListInvitation, error) {
	return m.listForList(ctx, listID, actingUserID)
}

var _ handler.InvitationServicer = (*mockInvitationServicer)(nil)

type mockUserServicer struct {
	getByID      func(ctx context.Context, id uuid.UUID) (domain.User, error)
	addFriend    func(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error)
	removeFriend func(ctx context.Context, userID, friendID uuid.UUID) error
	listFriends  func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	listRequests func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockUserServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserServicer) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error) {
	return m.addFriend(ctx, userID, friendID)
}
func (m *mockUserServicer) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return m.removeFriend(ctx, userID, friendID)
}
func (m *mockUserServicer) ListFriends(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m.listFriends(ctx, userID)
}
func (m *mockUserServicer) ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m.listRequests(ctx, userID)
}

var _ handler.UserServicer = (*mockUserServicer)(nil)

type mockEntitlementServicer struct {
	summary func(ctx context.Context, userID uuid.UUID) (service.EntitlementSummary, error)
}

func (m *mockEntitlementServicer) Summary(ctx context.Context, userID uuid.UUID) (service.EntitlementSummary, error) {
	return m.summary(ctx, userID)
}

var _ handler.EntitlementServicer = (*mockEntitlementServicer)(nil)

type mockPaymentSink struct {
	events []domain.PaymentEvent
	err    error
}

func (m *mockPaymentSink) Submit(_ context.Context, ev domain.PaymentEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

var _ handler.PaymentEventSink = (*mockPaymentSink)(nil)
