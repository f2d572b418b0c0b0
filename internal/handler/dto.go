package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/service"
)

// Request and response bodies. Field names are snake_case on the wire.

// Pagination describes one page of a paged listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Permission is an explicit grant on a list.
type Permission struct {
	UserID    uuid.UUID `json:"user_id"`
	Level     string    `json:"level"`
	GrantedAt time.Time `json:"granted_at"`
}

// List is the wire form of a travel list.
type List struct {
	ID            uuid.UUID    `json:"id"`
	OwnerID       uuid.UUID    `json:"owner_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	CoverImageURL string       `json:"cover_image_url,omitempty"`
	Visibility    string       `json:"visibility"`
	Permissions   []Permission `json:"permissions"`
	MyPermission  string       `json:"my_permission,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// ListRequest is the body of POST and PUT /lists. Omitted fields are left
// unchanged on update.
type ListRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	CoverImageURL *string `json:"cover_image_url"`
	Visibility    *string `json:"visibility"`
}

// ListPage is one page of public lists.
type ListPage struct {
	Data       []List     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// DeletedImages reports the image URLs a delete released.
type DeletedImages struct {
	ImageURLs []string `json:"image_urls"`
}

// Destination is the wire form of a destination.
type Destination struct {
	ID          uuid.UUID           `json:"id"`
	ListID      uuid.UUID           `json:"list_id"`
	Name        string              `json:"name"`
	Country     string              `json:"country,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Status      string              `json:"status"`
	DatePlanned *openapi_types.Date `json:"date_planned,omitempty"`
	DateVisited *openapi_types.Date `json:"date_visited,omitempty"`
	Images      []string            `json:"images"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// DestinationRequest is the body of POST and PUT destination routes.
type DestinationRequest struct {
	Name        *string             `json:"name"`
	Country     *string             `json:"country"`
	Notes       *string             `json:"notes"`
	Status      *string             `json:"status"`
	DatePlanned *openapi_types.Date `json:"date_planned"`
	DateVisited *openapi_types.Date `json:"date_visited"`
}

// ImageRequest carries an already uploaded image URL.
type ImageRequest struct {
	URL string `json:"url"`
}

// JournalEntry is the wire form of a journal entry.
type JournalEntry struct {
	ID            uuid.UUID `json:"id"`
	AuthorID      uuid.UUID `json:"author_id"`
	DestinationID uuid.UUID `json:"destination_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Public        bool      `json:"public"`
	Photos        []string  `json:"photos"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// JournalRequest is the body of POST /destinations/{id}/journal.
type JournalRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Public  bool     `json:"public"`
	Photos  []string `json:"photos"`
}

// Invitation is the wire form of a list invitation.
type Invitation struct {
	ID          uuid.UUID  `json:"id"`
	ListID      uuid.UUID  `json:"list_id"`
	InviterID   uuid.UUID  `json:"inviter_id"`
	InviteeID   uuid.UUID  `json:"invitee_id"`
	Level       string     `json:"level"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InvitationRequest is the body of POST /lists/{id}/invitations. The invitee
// is named by id or e-mail; expires_at wins over ttl_hours.
type InvitationRequest struct {
	InviteeID    *uuid.UUID           `json:"invitee_id"`
	InviteeEmail *openapi_types.Email `json:"invitee_email"`
	Level        string               `json:"level"`
	ExpiresAt    *time.Time           `json:"expires_at"`
	TTLHours     *int                 `json:"ttl_hours"`
}

// User is the wire form of the caller's profile.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	Premium          bool       `json:"premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	SubscriptionPlan string     `json:"subscription_plan,omitempty"`
}

// Usage is the per-user part of the entitlement summary.
type Usage struct {
	Lists          int64 `json:"lists"`
	JournalEntries int64 `json:"journal_entries"`
}

// Entitlement is the body of GET /me/entitlement. Unlimited is -1.
type Entitlement struct {
	Active bool            `json:"active"`
	Limits domain.LimitSet `json:"limits"`
	Usage  Usage           `json:"usage"`
}

// Friends is the body of GET /me/friends and GET /me/friend-requests.
type Friends struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

// Friendship is the body of POST /me/friends/{userID}.
type Friendship struct {
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"`
}

// --- mapping helpers --------------------------------------------------------

func listToResponse(l domain.TravelList, mine domain.PermissionLevel) List {
	perms := make([]Permission, len(l.Permissions))
	for i, p := range l.Permissions {
		perms[i] = Permission{UserID: p.UserID, Level: string(p.Level), GrantedAt: p.GrantedAt}
	}
	return List{
		ID:            l.ID,
		OwnerID:       l.OwnerID,
		Title:         l.Title,
		Description:   l.Description,
		CoverImageURL: l.CoverImageURL,
		Visibility:    string(l.Visibility),
		Permissions:   perms,
		MyPermission:  string(mine),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func listsToResponse(lists []domain.TravelList) []List {
	out := make([]List, len(lists))
	for i, l := range lists {
		out[i] = listToResponse(l, domain.LevelNone)
	}
	return out
}

func (b ListRequest) toInput() service.ListInput {
	in := service.ListInput{
		Title:         b.Title,
		Description:   b.Description,
		CoverImageURL: b.CoverImageURL,
	}
	if b.Visibility != nil {
		v := domain.Visibility(*b.Visibility)
		in.Visibility = &v
	}
	return in
}

func dateOrNil(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func timeOrNil(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func destinationToResponse(d domain.Destination) Destination {
	return Destination{
		ID:          d.ID,
		ListID:      d.ListID,
		Name:        d.Name,
		Country:     d.Country,
		Notes:       d.Notes,
		Status:      string(d.Status),
		DatePlanned: dateOrNil(d.DatePlanned),
		DateVisited: dateOrNil(d.DateVisited),
		Images:      nonNil(d.Images),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (b DestinationRequest) toInput() service.DestinationInput {
	in := service.DestinationInput{
		Name:        b.Name,
		Country:     b.Country,
		Notes:       b.Notes,
		DatePlanned: timeOrNil(b.DatePlanned),
		DateVisited: timeOrNil(b.DateVisited),
	}
	if b.Status != nil {
		st := domain.DestinationStatus(*b.Status)
		in.Status = &st
	}
	return in
}

func journalToResponse(e domain.JournalEntry) JournalEntry {
	return JournalEntry{
		ID:            e.ID,
		AuthorID:      e.AuthorID,
		DestinationID: e.DestinationID,
		Title:         e.Title,
		Content:       e.Content,
		Public:        e.Public,
		Photos:        nonNil(e.Photos),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func invitationToResponse(inv domain.ListInvitation) Invitation {
	return Invitation{
		ID:          inv.ID,
		ListID:      inv.ListID,
		InviterID:   inv.InviterID,
		InviteeID:   inv.InviteeID,
		Level:       string(inv.Level),
		Status:      string(inv.Status),
		ExpiresAt:   inv.ExpiresAt,
		RespondedAt: inv.RespondedAt,
		CreatedAt:   inv.CreatedAt,
	}
}

func invitationsToResponse(invs []domain.ListInvitation) []Invitation {
	out := make([]Invitation, len(invs))
	for i, inv := range invs {
		out[i] = invitationToResponse(inv)
	}
	return out
}

func userToResponse(u domain.User) User {
	return User{
		ID:               u.ID,
		Email:            u.Email,
		DisplayName:      u.DisplayName,
		AvatarURL:        u.AvatarURL,
		Premium:          u.Premium,
		PremiumExpiresAt: u.PremiumExpiresAt,
		SubscriptionPlan: string(u.SubscriptionPlan),
	}
}
