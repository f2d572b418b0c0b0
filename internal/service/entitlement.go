package service

import (
	"fmt"

	"github.com/pkordes/wayfarer/internal/domain"
)

// EntitlementPolicy decides whether a user's premium subscription is active
// and which limit table applies. It does no I/O.
type EntitlementPolicy struct {
	free    domain.LimitSet
	premium domain.LimitSet
	now     Clock
}

// NewEntitlementPolicy builds a policy from the two limit tables.
// It rejects tables where premium is stricter than free for any resource.
func NewEntitlementPolicy(free, premium domain.LimitSet, opts ...Option) (*EntitlementPolicy, error) {
	if err := free.Validate(); err != nil {
		return nil, fmt.Errorf("service.NewEntitlementPolicy: free: %w", err)
	}
	if err := premium.Validate(); err != nil {
		return nil, fmt.Errorf("service.NewEntitlementPolicy: premium: %w", err)
	}
	for _, r := range domain.Resources {
		if !premium.For(r).AtLeast(free.For(r)) {
			return nil, fmt.Errorf("service.NewEntitlementPolicy: %w: premium %s limit %d is below free limit %d",
				domain.ErrValidation, r, premium.For(r), free.For(r))
		}
	}

	o := buildOptions(opts)
	return &EntitlementPolicy{free: free, premium: premium, now: o.now}, nil
}

// IsActive reports whether u currently holds premium. The stored flag is not
// enough: a past expiry makes the user inactive even while the flag is set.
func (p *EntitlementPolicy) IsActive(u domain.User) bool {
	if !u.Premium {
		return false
	}
	return u.PremiumExpiresAt == nil || u.PremiumExpiresAt.After(p.now())
}

// LimitsFor returns the premium table for active users and the free table otherwise.
func (p *EntitlementPolicy) LimitsFor(u domain.User) domain.LimitSet {
	if p.IsActive(u) {
		return p.premium
	}
	return p.free
}
