package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// JournalInput carries the fields of a new journal entry.
type JournalInput struct {
	Title   string
	Content string
	Public  bool
	Photos  []string
}

// JournalService implements journal entry operations.
type JournalService struct {
	entries      repo.JournalRepo
	destinations repo.DestinationRepo
	perms        *PermissionResolver
	guard        *LimitGuard
	cleaner      ImageCleaner
	logger       *slog.Logger
}

// NewJournalService constructs a JournalService. cleaner may be nil.
func NewJournalService(entries repo.JournalRepo, destinations repo.DestinationRepo, perms *PermissionResolver, guard *LimitGuard, cleaner ImageCleaner, opts ...Option) *JournalService {
	o := buildOptions(opts)
	return &JournalService{
		entries:      entries,
		destinations: destinations,
		perms:        perms,
		guard:        guard,
		cleaner:      cleaner,
		logger:       o.logger,
	}
}

// Create writes a journal entry on a destination whose list the author can
// view. Both the author's entry limit and the per-entry photo limit apply.
func (s *JournalService) Create(ctx context.Context, authorID, destinationID uuid.UUID, in JournalInput) (domain.JournalEntry, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w: title is required", domain.ErrValidation)
	}

	dest, err := s.destinations.GetByID(ctx, destinationID)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w", err)
	}
	if _, _, err := s.perms.RequireView(ctx, dest.ListID, authorID); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w", err)
	}

	decision, err := s.guard.CanCreateJournalEntry(ctx, authorID)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w", err)
	}
	if err := decision.Err(); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w", err)
	}

	if n := len(in.Photos); n > 0 {
		// Adding the n-th photo to an entry that holds n-1.
		decision, err := s.guard.CanAddImage(ctx, authorID, int64(n-1))
		if err != nil {
			return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w", err)
		}
		if err := decision.Err(); err != nil {
			return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w", err)
		}
	}

	created, err := s.entries.Create(ctx, domain.JournalEntry{
		AuthorID:      authorID,
		DestinationID: destinationID,
		Title:         in.Title,
		Content:       in.Content,
		Public:        in.Public,
		Photos:        in.Photos,
	})
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Create: %w", err)
	}
	return created, nil
}

// Get returns an entry that is public, written by userID, or on a list
// userID can view.
func (s *JournalService) Get(ctx context.Context, id, userID uuid.UUID) (domain.JournalEntry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Get: %w", err)
	}
	if e.Public || (userID != uuid.Nil && e.AuthorID == userID) {
		return e, nil
	}

	dest, err := s.destinations.GetByID(ctx, e.DestinationID)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Get: %w", err)
	}
	if _, _, err := s.perms.RequireView(ctx, dest.ListID, userID); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.Get: %w", err)
	}
	return e, nil
}

// ListByDestination returns the entries on a destination whose list userID can view.
func (s *JournalService) ListByDestination(ctx context.Context, destinationID, userID uuid.UUID) ([]domain.JournalEntry, error) {
	dest, err := s.destinations.GetByID(ctx, destinationID)
	if err != nil {
		return nil, fmt.Errorf("service.JournalService.ListByDestination: %w", err)
	}
	if _, _, err := s.perms.RequireView(ctx, dest.ListID, userID); err != nil {
		return nil, fmt.Errorf("service.JournalService.ListByDestination: %w", err)
	}
	entries, err := s.entries.ListByDestination(ctx, destinationID)
	if err != nil {
		return nil, fmt.Errorf("service.JournalService.ListByDestination: %w", err)
	}
	return entries, nil
}

// AddPhoto appends a photo to the author's entry. The limit is checked
// against the stored photo count, then enforced again inside the append
// statement so concurrent uploads cannot overshoot.
func (s *JournalService) AddPhoto(ctx context.Context, id, userID uuid.UUID, url string) (domain.JournalEntry, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.AddPhoto: %w: url is required", domain.ErrValidation)
	}

	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.AddPhoto: %w", err)
	}
	if e.AuthorID != userID {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.AddPhoto: %w", domain.ErrForbidden)
	}

	decision, err := s.guard.CanAddImage(ctx, userID, int64(len(e.Photos)))
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.AddPhoto: %w", err)
	}
	if err := decision.Err(); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.AddPhoto: %w", err)
	}

	updated, err := s.entries.AppendPhoto(ctx, id, url, decision.Limit)
	if errors.Is(err, domain.ErrLimitExceeded) {
		// Lost a race with another upload; the entry is now full.
		full := domain.LimitDecision{Resource: domain.ResourceImagesPerJournal, Current: int64(decision.Limit), Limit: decision.Limit}
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.AddPhoto: %w", full.Err())
	}
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("service.JournalService.AddPhoto: %w", err)
	}
	return updated, nil
}

// Delete removes the author's entry and returns its photo URLs.
func (s *JournalService) Delete(ctx context.Context, id, userID uuid.UUID) ([]string, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.JournalService.Delete: %w", err)
	}
	if e.AuthorID != userID {
		return nil, fmt.Errorf("service.JournalService.Delete: %w", domain.ErrForbidden)
	}
	photos, err := s.entries.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.JournalService.Delete: %w", err)
	}
	cleanupImages(ctx, s.cleaner, s.logger, photos)
	return photos, nil
}
