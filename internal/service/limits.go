package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// LimitGuard answers "may this user create one more X". A denial is returned
// as a LimitDecision with Allowed=false, never as an error. Errors mean the
// user does not exist or storage failed.
//
// Check and insert are separate statements, so two concurrent creates at
// current == limit-1 can both pass. The overshoot is at most one per racing
// request; limits are a soft cap.
type LimitGuard struct {
	users  repo.UserRepo
	usage  repo.UsageCounter
	policy *EntitlementPolicy
}

// NewLimitGuard constructs a LimitGuard.
func NewLimitGuard(users repo.UserRepo, usage repo.UsageCounter, policy *EntitlementPolicy) *LimitGuard {
	return &LimitGuard{users: users, usage: usage, policy: policy}
}

// CanCreateList checks the number of lists userID owns.
func (g *LimitGuard) CanCreateList(ctx context.Context, userID uuid.UUID) (domain.LimitDecision, error) {
	return g.check(ctx, "CanCreateList", userID, domain.ResourceLists, func() (int64, error) {
		return g.usage.CountOwnedLists(ctx, userID)
	})
}

// CanAddDestination counts destinations on listID against userID's limit.
func (g *LimitGuard) CanAddDestination(ctx context.Context, listID, userID uuid.UUID) (domain.LimitDecision, error) {
	return g.check(ctx, "CanAddDestination", userID, domain.ResourceDestinationsPerList, func() (int64, error) {
		return g.usage.CountDestinations(ctx, listID)
	})
}

// CanCreateJournalEntry counts entries authored by userID.
func (g *LimitGuard) CanCreateJournalEntry(ctx context.Context, userID uuid.UUID) (domain.LimitDecision, error) {
	return g.check(ctx, "CanCreateJournalEntry", userID, domain.ResourceJournalEntries, func() (int64, error) {
		return g.usage.CountJournalEntries(ctx, userID)
	})
}

// CanAddImage checks one more photo on an entry that already holds
// currentImageCount. It does not count anything in storage.
func (g *LimitGuard) CanAddImage(ctx context.Context, userID uuid.UUID, currentImageCount int64) (domain.LimitDecision, error) {
	return g.check(ctx, "CanAddImage", userID, domain.ResourceImagesPerJournal, func() (int64, error) {
		return currentImageCount, nil
	})
}

// CanAddCollaborator counts permission grants on listID against userID's
// limit. Callers pass the list owner.
func (g *LimitGuard) CanAddCollaborator(ctx context.Context, listID, userID uuid.UUID) (domain.LimitDecision, error) {
	return g.check(ctx, "CanAddCollaborator", userID, domain.ResourceCollaboratorsPerList, func() (int64, error) {
		return g.usage.CountCollaborators(ctx, listID)
	})
}

// EntitlementSummary is what a user sees on their plan page.
type EntitlementSummary struct {
	Active         bool
	Limits         domain.LimitSet
	Lists          int64
	JournalEntries int64
}

// Summary reports the user's tier, limits and the per-user usage counts.
func (g *LimitGuard) Summary(ctx context.Context, userID uuid.UUID) (EntitlementSummary, error) {
	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return EntitlementSummary{}, fmt.Errorf("service.LimitGuard.Summary: %w", err)
	}
	lists, err := g.usage.CountOwnedLists(ctx, userID)
	if err != nil {
		return EntitlementSummary{}, fmt.Errorf("service.LimitGuard.Summary: %w", err)
	}
	entries, err := g.usage.CountJournalEntries(ctx, userID)
	if err != nil {
		return EntitlementSummary{}, fmt.Errorf("service.LimitGuard.Summary: %w", err)
	}
	return EntitlementSummary{
		Active:         g.policy.IsActive(u),
		Limits:         g.policy.LimitsFor(u),
		Lists:          lists,
		JournalEntries: entries,
	}, nil
}

func (g *LimitGuard) check(ctx context.Context, op string, userID uuid.UUID, r domain.Resource, count func() (int64, error)) (domain.LimitDecision, error) {
	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return domain.LimitDecision{}, fmt.Errorf("service.LimitGuard.%s: %w", op, err)
	}
	limit := g.policy.LimitsFor(u).For(r)

	current, err := count()
	if err != nil {
		return domain.LimitDecision{}, fmt.Errorf("service.LimitGuard.%s: %w", op, err)
	}
	return domain.NewLimitDecision(r, current, limit), nil
}
