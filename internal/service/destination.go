package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// DestinationInput carries the writable fields of a destination. On update,
// nil pointers leave the field unchanged.
type DestinationInput struct {
	Name        *string
	Country     *string
	Notes       *string
	Status      *domain.DestinationStatus
	DatePlanned *time.Time
	DateVisited *time.Time
}

// DestinationService implements destination operations. Access follows the
// parent list: reading needs view, every write needs mutate.
type DestinationService struct {
	destinations repo.DestinationRepo
	perms        *PermissionResolver
	guard        *LimitGuard
	cleaner      ImageCleaner
	logger       *slog.Logger
}

// NewDestinationService constructs a DestinationService. cleaner may be nil.
func NewDestinationService(destinations repo.DestinationRepo, perms *PermissionResolver, guard *LimitGuard, cleaner ImageCleaner, opts ...Option) *DestinationService {
	o := buildOptions(opts)
	return &DestinationService{destinations: destinations, perms: perms, guard: guard, cleaner: cleaner, logger: o.logger}
}

// Create adds a destination to listID. The per-list limit is taken from
// userID's entitlement.
func (s *DestinationService) Create(ctx context.Context, listID, userID uuid.UUID, in DestinationInput) (domain.Destination, error) {
	if _, _, err := s.perms.RequireMutate(ctx, listID, userID); err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Create: %w", err)
	}

	d := domain.Destination{ListID: listID, Status: domain.StatusWishlist}
	applyDestinationInput(&d, in)
	if err := validateDestination(d); err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Create: %w", err)
	}

	decision, err := s.guard.CanAddDestination(ctx, listID, userID)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Create: %w", err)
	}
	if err := decision.Err(); err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Create: %w", err)
	}

	created, err := s.destinations.Create(ctx, d)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Create: %w", err)
	}
	return created, nil
}

// ListByList returns the destinations on a list the caller can view.
func (s *DestinationService) ListByList(ctx context.Context, listID, userID uuid.UUID) ([]domain.Destination, error) {
	if _, _, err := s.perms.RequireView(ctx, listID, userID); err != nil {
		return nil, fmt.Errorf("service.DestinationService.ListByList: %w", err)
	}
	dests, err := s.destinations.ListByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("service.DestinationService.ListByList: %w", err)
	}
	return dests, nil
}

// Get returns one destination if the caller can view its list.
func (s *DestinationService) Get(ctx context.Context, id, userID uuid.UUID) (domain.Destination, error) {
	d, err := s.destinations.GetByID(ctx, id)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Get: %w", err)
	}
	if _, _, err := s.perms.RequireView(ctx, d.ListID, userID); err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Get: %w", err)
	}
	return d, nil
}

// Update changes a destination. Changing the status clears a date that no
// longer matches it; supplying a date that does not match the resulting
// status is a validation error.
func (s *DestinationService) Update(ctx context.Context, id, userID uuid.UUID, in DestinationInput) (domain.Destination, error) {
	d, err := s.loadForWrite(ctx, id, userID)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Update: %w", err)
	}

	applyDestinationInput(&d, in)
	if err := validateDestination(d); err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Update: %w", err)
	}

	updated, err := s.destinations.Update(ctx, d)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.Update: %w", err)
	}
	return updated, nil
}

// AddImage appends an already uploaded image URL.
func (s *DestinationService) AddImage(ctx context.Context, id, userID uuid.UUID, url string) (domain.Destination, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.AddImage: %w: url is required", domain.ErrValidation)
	}
	if _, err := s.loadForWrite(ctx, id, userID); err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.AddImage: %w", err)
	}
	d, err := s.destinations.AppendImage(ctx, id, url)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("service.DestinationService.AddImage: %w", err)
	}
	return d, nil
}

// Delete removes the destination and its journal entries, and returns the
// image URLs they referenced.
func (s *DestinationService) Delete(ctx context.Context, id, userID uuid.UUID) ([]string, error) {
	if _, err := s.loadForWrite(ctx, id, userID); err != nil {
		return nil, fmt.Errorf("service.DestinationService.Delete: %w", err)
	}
	urls, err := s.destinations.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.DestinationService.Delete: %w", err)
	}
	cleanupImages(ctx, s.cleaner, s.logger, urls)
	return urls, nil
}

func (s *DestinationService) loadForWrite(ctx context.Context, id, userID uuid.UUID) (domain.Destination, error) {
	d, err := s.destinations.GetByID(ctx, id)
	if err != nil {
		return domain.Destination{}, err
	}
	if _, _, err := s.perms.RequireMutate(ctx, d.ListID, userID); err != nil {
		return domain.Destination{}, err
	}
	return d, nil
}

func applyDestinationInput(d *domain.Destination, in DestinationInput) {
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Country != nil {
		d.Country = strings.TrimSpace(*in.Country)
	}
	if in.Notes != nil {
		d.Notes = *in.Notes
	}
	if in.Status != nil && *in.Status != d.Status {
		d.Status = *in.Status
		if d.Status != domain.StatusPlanned {
			d.DatePlanned = nil
		}
		if d.Status != domain.StatusVisited {
			d.DateVisited = nil
		}
	}
	if in.DatePlanned != nil {
		d.DatePlanned = in.DatePlanned
	}
	if in.DateVisited != nil {
		d.DateVisited = in.DateVisited
	}
}

func validateDestination(d domain.Destination) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, d.Status)
	}
	if d.DatePlanned != nil && d.Status != domain.StatusPlanned {
		return fmt.Errorf("%w: datePlanned requires status Planned", domain.ErrValidation)
	}
	if d.DateVisited != nil && d.Status != domain.StatusVisited {
		return fmt.Errorf("%w: dateVisited requires status Visited", domain.ErrValidation)
	}
	return nil
}
