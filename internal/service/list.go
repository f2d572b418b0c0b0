package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// ListInput carries the writable fields of a list. On update, nil pointers
// leave the field unchanged.
type ListInput struct {
	Title         *string
	Description   *string
	CoverImageURL *string
	Visibility    *domain.Visibility
}

// ListService implements the travel list operations.
type ListService struct {
	lists   repo.ListRepo
	perms   *PermissionResolver
	guard   *LimitGuard
	cleaner ImageCleaner
	logger  *slog.Logger
}

// NewListService constructs a ListService. cleaner may be nil.
func NewListService(lists repo.ListRepo, perms *PermissionResolver, guard *LimitGuard, cleaner ImageCleaner, opts ...Option) *ListService {
	o := buildOptions(opts)
	return &ListService{lists: lists, perms: perms, guard: guard, cleaner: cleaner, logger: o.logger}
}

// Create makes a new list owned by ownerID. It refuses with a
// *domain.LimitExceededError when the owner is at their list limit.
func (s *ListService) Create(ctx context.Context, ownerID uuid.UUID, in ListInput) (domain.TravelList, error) {
	list := domain.TravelList{OwnerID: ownerID, Visibility: domain.VisibilityPrivate}
	applyListInput(&list, in)
	if err := validateList(list); err != nil {
		return domain.TravelList{}, fmt.Errorf("service.ListService.Create: %w", err)
	}

	decision, err := s.guard.CanCreateList(ctx, ownerID)
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("service.ListService.Create: %w", err)
	}
	if err := decision.Err(); err != nil {
		return domain.TravelList{}, fmt.Errorf("service.ListService.Create: %w", err)
	}

	created, err := s.lists.Create(ctx, list)
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("service.ListService.Create: %w", err)
	}
	return created, nil
}

// Get returns the list and the caller's level on it.
func (s *ListService) Get(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error) {
	list, level, err := s.perms.RequireView(ctx, listID, userID)
	if err != nil {
		return domain.TravelList{}, domain.LevelNone, fmt.Errorf("service.ListService.Get: %w", err)
	}
	return list, level, nil
}

// ListOwned returns the lists userID owns.
func (s *ListService) ListOwned(ctx context.Context, userID uuid.UUID) ([]domain.TravelList, error) {
	lists, err := s.lists.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListService.ListOwned: %w", err)
	}
	return lists, nil
}

// ListPublic pages through public lists.
func (s *ListService) ListPublic(ctx context.Context, p domain.PaginationParams) ([]domain.TravelList, int64, error) {
	lists, total, err := s.lists.ListPublic(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListService.ListPublic: %w", err)
	}
	return lists, total, nil
}

// Update changes the list's own fields. The owner, a contributor or a
// co-owner may update; ownership itself never changes.
func (s *ListService) Update(ctx context.Context, listID, userID uuid.UUID, in ListInput) (domain.TravelList, error) {
	list, _, err := s.perms.RequireMutate(ctx, listID, userID)
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("service.ListService.Update: %w", err)
	}

	applyListInput(&list, in)
	if err := validateList(list); err != nil {
		return domain.TravelList{}, fmt.Errorf("service.ListService.Update: %w", err)
	}

	updated, err := s.lists.Update(ctx, list)
	if err != nil {
		return domain.TravelList{}, fmt.Errorf("service.ListService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes the list and everything under it. Only the owner may
// delete. It returns the image URLs the list referenced, which have been
// handed to the image cleaner.
func (s *ListService) Delete(ctx context.Context, listID, userID uuid.UUID) ([]string, error) {
	list, _, err := s.perms.Load(ctx, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListService.Delete: %w", err)
	}
	if !s.perms.CanDelete(list, userID) {
		return nil, fmt.Errorf("service.ListService.Delete: %w", domain.ErrForbidden)
	}

	urls, err := s.lists.Delete(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("service.ListService.Delete: %w", err)
	}

	cleanupImages(ctx, s.cleaner, s.logger, urls)
	return urls, nil
}

func applyListInput(l *domain.TravelList, in ListInput) {
	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.CoverImageURL != nil {
		l.CoverImageURL = strings.TrimSpace(*in.CoverImageURL)
	}
	if in.Visibility != nil {
		l.Visibility = *in.Visibility
	}
}

func validateList(l domain.TravelList) error {
	if l.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !l.Visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", domain.ErrValidation, l.Visibility)
	}
	return nil
}
