package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// InvitationNotifier tells an invitee about a new invitation. Delivery is
// best effort: a failure is logged and the invitation still stands.
type InvitationNotifier interface {
	InvitationCreated(ctx context.Context, inv domain.ListInvitation, list domain.TravelList, inviter, invitee domain.User) error
}

// CreateInvitationInput identifies the invitee by id or, when InviteeID is
// uuid.Nil, by email. ExpiresAt wins over TTL; a zero TTL means the service default.
type CreateInvitationInput struct {
	ListID       uuid.UUID
	InviterID    uuid.UUID
	InviteeID    uuid.UUID
	InviteeEmail string
	Level        domain.PermissionLevel
	TTL          time.Duration
	ExpiresAt    *time.Time
}

// InvitationService runs the invitation state machine. Every status change
// is checked against domain.InvitationTransitions and then written with a
// pending-only guard, so concurrent responses cannot both win.
type InvitationService struct {
	invitations repo.InvitationRepo
	users       repo.UserRepo
	perms       *PermissionResolver
	guard       *LimitGuard
	notifier    InvitationNotifier
	now         Clock
	ttl         time.Duration
	logger      *slog.Logger
}

// NewInvitationService constructs an InvitationService. notifier may be nil.
func NewInvitationService(
	invitations repo.InvitationRepo,
	users repo.UserRepo,
	perms *PermissionResolver,
	guard *LimitGuard,
	notifier InvitationNotifier,
	opts ...Option,
) *InvitationService {
	o := buildOptions(opts)
	ttl := o.ttl
	if ttl <= 0 {
		ttl = domain.DefaultInvitationTTL
	}
	return &InvitationService{
		invitations: invitations,
		users:       users,
		perms:       perms,
		guard:       guard,
		notifier:    notifier,
		now:         o.now,
		ttl:         ttl,
		logger:      o.logger,
	}
}

// Create invites a user to collaborate on a list.
func (s *InvitationService) Create(ctx context.Context, in CreateInvitationInput) (domain.ListInvitation, error) {
	if !in.Level.Valid() {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: %w: unknown level %q", domain.ErrValidation, in.Level)
	}

	list, _, err := s.perms.RequireManage(ctx, in.ListID, in.InviterID)
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: %w", err)
	}

	invitee, err := s.resolveInvitee(ctx, in)
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: invitee: %w", err)
	}
	if invitee.ID == list.OwnerID || invitee.ID == in.InviterID {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: %w: cannot invite the list owner or yourself", domain.ErrValidation)
	}

	// A user who already holds a grant only changes level, so the
	// collaborator count does not grow.
	if _, ok := list.PermissionFor(invitee.ID); !ok {
		if err := s.checkCollaboratorLimit(ctx, list); err != nil {
			return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: %w", err)
		}
	}

	now := s.now()
	if err := s.clearStalePending(ctx, list.ID, invitee.ID, now); err != nil {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: %w", err)
	}

	expiresAt := now.Add(s.ttl)
	switch {
	case in.ExpiresAt != nil:
		expiresAt = *in.ExpiresAt
	case in.TTL > 0:
		expiresAt = now.Add(in.TTL)
	}
	if !expiresAt.After(now) {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: %w: expiry must be in the future", domain.ErrValidation)
	}

	inv, err := s.invitations.Create(ctx, domain.ListInvitation{
		ListID:    list.ID,
		InviterID: in.InviterID,
		InviteeID: invitee.ID,
		Level:     in.Level,
		Status:    domain.InvitationPending,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Create: %w", err)
	}

	s.notify(ctx, inv, list, invitee)
	return inv, nil
}

// Accept grants the invitee the invited level. An invitation past its expiry
// is moved to expired instead and the call fails with domain.ErrExpired.
// A new collaborator is checked against the owner's collaborator limit again,
// since other invitations may have been accepted after this one was sent.
func (s *InvitationService) Accept(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error) {
	inv, now, err := s.respondable(ctx, "Accept", id, actingUserID, domain.InvitationAccepted)
	if err != nil {
		return domain.ListInvitation{}, err
	}

	list, _, err := s.perms.Load(ctx, inv.ListID, inv.InviteeID)
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Accept: %w", err)
	}
	if _, ok := list.PermissionFor(inv.InviteeID); !ok {
		if err := s.checkCollaboratorLimit(ctx, list); err != nil {
			return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Accept: %w", err)
		}
	}

	if _, err := s.invitations.Accept(ctx, id, now); err != nil {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Accept: %w", err)
	}

	inv.Status = domain.InvitationAccepted
	inv.RespondedAt = &now
	return inv, nil
}

// Reject declines the invitation. No permission changes.
func (s *InvitationService) Reject(ctx context.Context, id, actingUserID uuid.UUID) (domain.ListInvitation, error) {
	_, now, err := s.respondable(ctx, "Reject", id, actingUserID, domain.InvitationRejected)
	if err != nil {
		return domain.ListInvitation{}, err
	}

	inv, err := s.invitations.Transition(ctx, id, domain.InvitationRejected, now)
	if err != nil {
		return domain.ListInvitation{}, fmt.Errorf("service.InvitationService.Reject: %w", err)
	}
	return inv, nil
}

// Cancel withdraws a pending invitation. Only the inviter may cancel, and
// the row is deleted rather than kept as a tombstone.
func (s *InvitationService) Cancel(ctx context.Context, id, actingUserID uuid.UUID) error {
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.InvitationService.Cancel: %w", err)
	}
	if inv.InviterID != actingUserID {
		return fmt.Errorf("service.InvitationService.Cancel: %w", domain.ErrForbidden)
	}
	if !domain.CanTransition(inv.Status, domain.InvitationCancelled) {
		return fmt.Errorf("service.InvitationService.Cancel: %w: invitation is %s", domain.ErrInvalidState, inv.Status)
	}
	if err := s.invitations.DeletePending(ctx, id); err != nil {
		return fmt.Errorf("service.InvitationService.Cancel: %w", err)
	}
	return nil
}

// RemovePermissionsOnRevoke drops userID's grant on listID. Removing a grant
// that is already gone succeeds.
func (s *InvitationService) RemovePermissionsOnRevoke(ctx context.Context, listID, userID uuid.UUID) error {
	if err := s.perms.RemovePermission(ctx, listID, userID); err != nil {
		return fmt.Errorf("service.InvitationService.RemovePermissionsOnRevoke: %w", err)
	}
	return nil
}

// Revoke ends userID's collaboration on listID on behalf of actingUserID,
// who must be able to manage the list.
func (s *InvitationService) Revoke(ctx context.Context, listID, actingUserID, userID uuid.UUID) error {
	if _, _, err := s.perms.RequireManage(ctx, listID, actingUserID); err != nil {
		return fmt.Errorf("service.InvitationService.Revoke: %w", err)
	}
	return s.RemovePermissionsOnRevoke(ctx, listID, userID)
}

// ListForInvitee returns the user's pending invitations. Stale ones are moved
// to expired first so they never show up as actionable.
func (s *InvitationService) ListForInvitee(ctx context.Context, userID uuid.UUID) ([]domain.ListInvitation, error) {
	if _, err := s.invitations.ExpireStale(ctx, userID, s.now()); err != nil {
		return nil, fmt.Errorf("service.InvitationService.ListForInvitee: %w", err)
	}
	invs, err := s.invitations.ListPendingForInvitee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.InvitationService.ListForInvitee: %w", err)
	}
	return invs, nil
}

// ListForList returns every invitation on a list for someone who can manage it.
// Pending invitations past their expiry are reported as expired.
func (s *InvitationService) ListForList(ctx context.Context, listID, actingUserID uuid.UUID) ([]domain.ListInvitation, error) {
	if _, _, err := s.perms.RequireManage(ctx, listID, actingUserID); err != nil {
		return nil, fmt.Errorf("service.InvitationService.ListForList: %w", err)
	}
	invs, err := s.invitations.ListByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("service.InvitationService.ListForList: %w", err)
	}
	now := s.now()
	for i := range invs {
		if invs[i].Status == domain.InvitationPending && invs[i].ExpiredAt(now) {
			invs[i].Status = domain.InvitationExpired
		}
	}
	return invs, nil
}

// respondable loads the invitation and runs the checks shared by accept and
// reject: actor is the invitee, the move to target is allowed, and the
// invitation has not expired. It returns the instant the expiry was judged
// at; callers write with that same instant.
func (s *InvitationService) respondable(ctx context.Context, op string, id, actingUserID uuid.UUID, target domain.InvitationStatus) (domain.ListInvitation, time.Time, error) {
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return domain.ListInvitation{}, time.Time{}, fmt.Errorf("service.InvitationService.%s: %w", op, err)
	}
	if inv.InviteeID != actingUserID {
		return domain.ListInvitation{}, time.Time{}, fmt.Errorf("service.InvitationService.%s: %w", op, domain.ErrForbidden)
	}
	if !domain.CanTransition(inv.Status, target) {
		return domain.ListInvitation{}, time.Time{}, fmt.Errorf("service.InvitationService.%s: %w: invitation is %s", op, domain.ErrInvalidState, inv.Status)
	}
	now := s.now()
	if inv.ExpiredAt(now) {
		if _, err := s.invitations.Transition(ctx, id, domain.InvitationExpired, now); err != nil && !errors.Is(err, domain.ErrInvalidState) {
			return domain.ListInvitation{}, time.Time{}, fmt.Errorf("service.InvitationService.%s: mark expired: %w", op, err)
		}
		return domain.ListInvitation{}, time.Time{}, fmt.Errorf("service.InvitationService.%s: %w", op, domain.ErrExpired)
	}
	return inv, now, nil
}

// checkCollaboratorLimit counts grants on list against its owner's limit.
func (s *InvitationService) checkCollaboratorLimit(ctx context.Context, list domain.TravelList) error {
	decision, err := s.guard.CanAddCollaborator(ctx, list.ID, list.OwnerID)
	if err != nil {
		return err
	}
	return decision.Err()
}

func (s *InvitationService) resolveInvitee(ctx context.Context, in CreateInvitationInput) (domain.User, error) {
	if in.InviteeID != uuid.Nil {
		return s.users.GetByID(ctx, in.InviteeID)
	}
	email := strings.TrimSpace(in.InviteeEmail)
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: invitee email or id is required", domain.ErrValidation)
	}
	return s.users.GetByEmail(ctx, email)
}

// clearStalePending expires a pending invitation for the pair that is past
// its expiry, and reports a live one as a conflict.
func (s *InvitationService) clearStalePending(ctx context.Context, listID, inviteeID uuid.UUID, now time.Time) error {
	existing, err := s.invitations.FindPending(ctx, listID, inviteeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !existing.ExpiredAt(now) {
		return fmt.Errorf("%w: a pending invitation already exists", domain.ErrConflict)
	}
	if _, err := s.invitations.Transition(ctx, existing.ID, domain.InvitationExpired, now); err != nil && !errors.Is(err, domain.ErrInvalidState) {
		return err
	}
	return nil
}

func (s *InvitationService) notify(ctx context.Context, inv domain.ListInvitation, list domain.TravelList, invitee domain.User) {
	if s.notifier == nil {
		return
	}
	inviter, err := s.users.GetByID(ctx, inv.InviterID)
	if err != nil {
		s.logger.WarnContext(ctx, "invitation notify: load inviter", "invitation_id", inv.ID, "error", err)
		return
	}
	if err := s.notifier.InvitationCreated(ctx, inv, list, inviter, invitee); err != nil {
		s.logger.WarnContext(ctx, "invitation notify failed", "invitation_id", inv.ID, "error", err)
	}
}
