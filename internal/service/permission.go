package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// PermissionResolver is the single place that decides what a user may do
// with a list. Handlers and other services go through it instead of
// comparing owner ids themselves.
type PermissionResolver struct {
	lists repo.ListRepo
	users repo.UserRepo
}

// NewPermissionResolver constructs a PermissionResolver.
func NewPermissionResolver(lists repo.ListRepo, users repo.UserRepo) *PermissionResolver {
	return &PermissionResolver{lists: lists, users: users}
}

// Resolve returns the level userID holds on an already loaded list.
// The owner's friend set is only queried for friends-visibility lists.
func (p *PermissionResolver) Resolve(ctx context.Context, list domain.TravelList, userID uuid.UUID) (domain.PermissionLevel, error) {
	var friendErr error
	level := domain.ResolvePermission(list, userID, func() bool {
		ok, err := p.users.AreFriends(ctx, list.OwnerID, userID)
		friendErr = err
		return ok
	})
	if friendErr != nil {
		return domain.LevelNone, fmt.Errorf("service.PermissionResolver.Resolve: %w", friendErr)
	}
	return level, nil
}

// Load fetches the list and resolves userID's level on it.
func (p *PermissionResolver) Load(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error) {
	list, err := p.lists.GetByID(ctx, listID)
	if err != nil {
		return domain.TravelList{}, domain.LevelNone, fmt.Errorf("service.PermissionResolver.Load: %w", err)
	}
	level, err := p.Resolve(ctx, list, userID)
	if err != nil {
		return domain.TravelList{}, domain.LevelNone, err
	}
	return list, level, nil
}

// CanView reports whether userID can read list.
func (p *PermissionResolver) CanView(ctx context.Context, list domain.TravelList, userID uuid.UUID) (bool, error) {
	level, err := p.Resolve(ctx, list, userID)
	return level.CanView(), err
}

// CanMutate reports whether userID may update list and its destinations:
// the owner, or a contribute or co-owner grant.
func (p *PermissionResolver) CanMutate(ctx context.Context, list domain.TravelList, userID uuid.UUID) (bool, error) {
	level, err := p.Resolve(ctx, list, userID)
	return level.CanMutate(), err
}

// CanManage reports whether userID may invite collaborators and revoke
// grants: the owner or a co-owner grant.
func (p *PermissionResolver) CanManage(ctx context.Context, list domain.TravelList, userID uuid.UUID) (bool, error) {
	level, err := p.Resolve(ctx, list, userID)
	return level == domain.LevelCoOwner, err
}

// CanDelete reports whether userID may delete list. Only the owner can;
// a co-owner grant is not enough.
func (p *PermissionResolver) CanDelete(list domain.TravelList, userID uuid.UUID) bool {
	return domain.CanDelete(list, userID)
}

// RequireView loads the list and returns domain.ErrForbidden unless userID can read it.
func (p *PermissionResolver) RequireView(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error) {
	return p.require(ctx, listID, userID, domain.PermissionLevel.CanView)
}

// RequireMutate loads the list and returns domain.ErrForbidden unless userID can change it.
func (p *PermissionResolver) RequireMutate(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error) {
	return p.require(ctx, listID, userID, domain.PermissionLevel.CanMutate)
}

// RequireManage loads the list and returns domain.ErrForbidden unless userID can manage collaborators.
func (p *PermissionResolver) RequireManage(ctx context.Context, listID, userID uuid.UUID) (domain.TravelList, domain.PermissionLevel, error) {
	return p.require(ctx, listID, userID, func(l domain.PermissionLevel) bool { return l == domain.LevelCoOwner })
}

// UpsertPermission grants level to the user, replacing any existing grant.
func (p *PermissionResolver) UpsertPermission(ctx context.Context, perm domain.ListPermission) (domain.ListPermission, error) {
	if !perm.Level.Valid() {
		return domain.ListPermission{}, fmt.Errorf("service.PermissionResolver.UpsertPermission: %w: unknown level %q", domain.ErrValidation, perm.Level)
	}
	result, err := p.lists.UpsertPermission(ctx, perm)
	if err != nil {
		return domain.ListPermission{}, fmt.Errorf("service.PermissionResolver.UpsertPermission: %w", err)
	}
	return result, nil
}

// AddPermission grants level to a user who holds no grant yet. It returns
// domain.ErrConflict when a grant already exists.
func (p *PermissionResolver) AddPermission(ctx context.Context, perm domain.ListPermission) (domain.ListPermission, error) {
	if !perm.Level.Valid() {
		return domain.ListPermission{}, fmt.Errorf("service.PermissionResolver.AddPermission: %w: unknown level %q", domain.ErrValidation, perm.Level)
	}
	result, err := p.lists.AddPermission(ctx, perm)
	if err != nil {
		return domain.ListPermission{}, fmt.Errorf("service.PermissionResolver.AddPermission: %w", err)
	}
	return result, nil
}

// RemovePermission drops userID's grant on listID. Removing a missing grant succeeds.
func (p *PermissionResolver) RemovePermission(ctx context.Context, listID, userID uuid.UUID) error {
	if err := p.lists.RemovePermission(ctx, listID, userID); err != nil {
		return fmt.Errorf("service.PermissionResolver.RemovePermission: %w", err)
	}
	return nil
}

func (p *PermissionResolver) require(ctx context.Context, listID, userID uuid.UUID, allowed func(domain.PermissionLevel) bool) (domain.TravelList, domain.PermissionLevel, error) {
	list, level, err := p.Load(ctx, listID, userID)
	if err != nil {
		return domain.TravelList{}, domain.LevelNone, err
	}
	if !allowed(level) {
		return domain.TravelList{}, level, domain.ErrForbidden
	}
	return list, level, nil
}
