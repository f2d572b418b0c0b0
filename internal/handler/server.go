// Package handler implements the HTTP handlers for the Wayfarer API.
// All handlers are methods on Server. They are split into resource files
// (list.go, invitation.go, ...) but share the same Server struct so they can
// reach its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/service"
)

// The Servicer interfaces are declared here, in the consumer package, so
// handler tests can inject function-field mocks without a database.

// ListServicer is the list behaviour the handlers depend on.
type ListServicer interface {
	Create(ctx context.Context, ownerID uuid.UUID, in service.ListInput) (domain.TravelList, error)
	Get(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error)
	ListOwned(ctx context.Context, userID uuid.UUID) ([]domain.TravelList, error)
	ListPublic(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error)
	Update(ctx context.Context, listID, userID uuid.UUID, in service.ListInput) (domain.TravelList, error)
	Delete(ctx context.Context, listID, userID uuid.UUID) ([]string, error)
}

// DestinationServicer is the destination behaviour the handlers depend on.
type DestinationServicer interface {
	Create(ctx context.Context, listID, userID uuid.UUID, in service.DestinationInput) (domain.Destination, error)
	ListByList(ctx context.Context, listID, userID uuid.UUID) ([]domain.Destination, error)
	Get(ctx context.Context, id, userID uuid.UUID) (domain.Destination, error)
	Update(ctx context.Context, id, userID uuid.UUID, in service.DestinationInput) (domain.Destination, error)
	AddImage(ctx context.Context, id, userID uuid.UUID, url string) (domain.Destination, error)
	Delete(ctx context.Context, id, userID uuid.UUID) ([]string, error)
}

// JournalServicer is the journal behaviour the handlers depend on.
type JournalServicer interface {
	Create(ctx context.Context, authorID, destinationID uuid.UUID, in service.JournalInput) (domain.JournalEntry, error)
	Get(ctx context.Context, id, userID uuid.UUID) (domain.JournalEntry, error)
	ListByDestination(ctx context.Context, destinationID, userID uuid.UUID) ([]domain.JournalEntry, error)
	AddPhoto(ctx context.Context, id, userID uuid.UUID, url string) (domain.JournalEntry, error)
	Delete(ctx context.Context, id, userID uuid.UUID) ([]string, error)
}

// InvitationServicer is the invitation behaviour the handlers depend on.
type InvitationServicer interface {
	Create(ctx context.Context, in service.CreateInvitationInput) (domain.ListInvitation, error)
	Accept(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error)
	Reject(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error)
	Cancel(ctx context.Context, id, actingUserID uuid.UUID) error
	Revoke(ctx context.Context, listID, actingUserID, userID uuid.UUID) error
	ListForInvitee(ctx context.Context, userID uuid.UUID) ([]domain.ListInvitation, error)
	ListForList(ctx context.Context, listID, actingUserID uuid.UUID) ([]domain.ListInvitation, error)
}

// UserServicer is the profile and friend behaviour the handlers depend on.
type UserServicer interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	AddFriend(ctx context.Context, userID, friendID uuid.UUID) (domain.FriendStatus, error)
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListFriendRequests(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// EntitlementServicer reports a user's plan and usage.
type EntitlementServicer interface {
	Summary(ctx context.Context, userID uuid.UUID) (service.EntitlementSummary, error)
}

// PaymentEventSink accepts a normalised payment event from the billing webhook.
// It either applies the event inline or queues it.
type PaymentEventSink interface {
	Submit(ctx context.Context, ev domain.PaymentEvent) error
}

// Services bundles the Server's dependencies. A nil field disables the
// routes that need it.
type Services struct {
	Lists        ListServicer
	Destinations DestinationServicer
	Journal      JournalServicer
	Invitations  InvitationServicer
	Users        UserServicer
	Entitlements EntitlementServicer
	Payments     PaymentEventSink
}

// Server holds the dependencies shared by every handler.
type Server struct {
	lists        ListServicer
	destinations DestinationServicer
	journal      JournalServicer
	invitations  InvitationServicer
	users        UserServicer
	entitlements EntitlementServicer
	payments     PaymentEventSink
	logger       *slog.Logger
}

// NewServer constructs the Server. logger may be nil.
func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		lists:        svc.Lists,
		destinations: svc.Destinations,
		journal:      svc.Journal,
		invitations:  svc.Invitations,
		users:        svc.Users,
		entitlements: svc.Entitlements,
		payments:     svc.Payments,
		logger:       logger,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}

// Routes returns the API router. auth guards every route except the health
// check, the API description and the billing webhook, which webhookAuth
// guards instead. The webhook is not mounted when webhookAuth is nil.
func (s *Server) Routes(auth, webhookAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	if s.payments != nil && webhookAuth != nil {
		r.With(webhookAuth).Post("/webhooks/billing", s.PostBillingWebhook)
	}

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}

		if s.users != nil {
			r.Get("/me", s.GetMe)
			r.Get("/me/friends", s.ListFriends)
			r.Get("/me/friend-requests", s.ListFriendRequests)
			r.Post("/me/friends/{userID}", s.AddFriend)
			r.Delete("/me/friends/{userID}", s.RemoveFriend)
		}
		if s.entitlements != nil {
			r.Get("/me/entitlement", s.GetEntitlement)
		}

		if s.lists != nil {
			r.Route("/lists", func(r chi.Router) {
				r.Post("/", s.CreateList)
				r.Get("/", s.ListOwnedLists)
				r.Get("/public", s.ListPublicLists)
				r.Route("/{listID}", func(r chi.Router) {
					r.Get("/", s.GetList)
					r.Put("/", s.UpdateList)
					r.Delete("/", s.DeleteList)
					if s.destinations != nil {
						r.Post("/destinations", s.CreateDestination)
						r.Get("/destinations", s.ListDestinations)
						r.Get("/export", s.ExportList)
					}
					if s.invitations != nil {
						r.Post("/invitations", s.CreateInvitation)
						r.Get("/invitations", s.ListListInvitations)
						r.Delete("/collaborators/{userID}", s.RevokeCollaborator)
					}
				})
			})
		}

		if s.destinations != nil {
			r.Route("/destinations/{destinationID}", func(r chi.Router) {
				r.Get("/", s.GetDestination)
				r.Put("/", s.UpdateDestination)
				r.Delete("/", s.DeleteDestination)
				r.Post("/images", s.AddDestinationImage)
				if s.journal != nil {
					r.Post("/journal", s.CreateJournalEntry)
					r.Get("/journal", s.ListJournalEntries)
				}
			})
		}

		if s.journal != nil {
			r.Route("/journal/{entryID}", func(r chi.Router) {
				r.Get("/", s.GetJournalEntry)
				r.Delete("/", s.DeleteJournalEntry)
				r.Post("/photos", s.AddJournalPhoto)
			})
		}

		if s.invitations != nil {
			r.Get("/invitations", s.ListMyInvitations)
			r.Route("/invitations/{invitationID}", func(r chi.Router) {
				r.Post("/accept", s.AcceptInvitation)
				r.Post("/reject", s.RejectInvitation)
				r.Delete("/", s.CancelInvitation)
			})
		}
	})

	return r
}
