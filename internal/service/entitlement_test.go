package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/service"
)

func TestEntitlementPolicy_IsActive(t *testing.T) {
	past := fixedNow.Add(-time.Second)
	future := fixedNow.Add(time.Hour)

	tests := []struct {
		name string
		user domain.User
		want bool
	}{
		{"free user", domain.User{}, false},
		{"premium flag with past expiry", domain.User{Premium: true, PremiumExpiresAt: &past}, false},
		{"premium flag expiring exactly now", domain.User{Premium: true, PremiumExpiresAt: ptr(fixedNow)}, false},
		{"premium with future expiry", domain.User{Premium: true, PremiumExpiresAt: &future}, true},
		{"lifetime premium", domain.User{Premium: true}, true},
		{"future expiry without flag", domain.User{PremiumExpiresAt: &future}, false},
	}

	p := newPolicy(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.IsActive(tc.user))
		})
	}
}

func TestEntitlementPolicy_LimitsFor(t *testing.T) {
	p := newPolicy(t)
	past := fixedNow.Add(-24 * time.Hour)

	assert.Equal(t, domain.FreeLimits(), p.LimitsFor(freeUser()))
	assert.Equal(t, domain.PremiumLimits(), p.LimitsFor(premiumUser()))
	assert.Equal(t, domain.FreeLimits(), p.LimitsFor(domain.User{Premium: true, PremiumExpiresAt: &past}),
		"a stale premium flag gets the free table")
}

func TestEntitlementPolicy_PremiumNeverBelowFree(t *testing.T) {
	p := newPolicy(t)
	free := p.LimitsFor(freeUser())
	premium := p.LimitsFor(premiumUser())

	for _, r := range domain.Resources {
		assert.True(t, premium.For(r).AtLeast(free.For(r)), "premium %s limit %d below free %d", r, premium.For(r), free.For(r))
	}
}

func TestNewEntitlementPolicy_RejectsPremiumBelowFree(t *testing.T) {
	premium := domain.PremiumLimits()
	premium.ImagesPerJournal = 0

	_, err := service.NewEntitlementPolicy(domain.FreeLimits(), premium)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewEntitlementPolicy_RejectsUnlimitedFreeWithFinitePremium(t *testing.T) {
	free := domain.FreeLimits()
	free.Lists = domain.Unlimited
	premium := domain.PremiumLimits()
	premium.Lists = 1000

	_, err := service.NewEntitlementPolicy(free, premium)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewEntitlementPolicy_RejectsNegativeLimit(t *testing.T) {
	free := domain.FreeLimits()
	free.JournalEntries = -5

	_, err := service.NewEntitlementPolicy(free, domain.PremiumLimits())

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewEntitlementPolicy_AcceptsSubstituteTables(t *testing.T) {
	tiny := domain.LimitSet{Lists: 1, DestinationsPerList: 1, JournalEntries: 1, ImagesPerJournal: 1, CollaboratorsPerList: 1}

	p, err := service.NewEntitlementPolicy(tiny, tiny, service.WithClock(fixedClock))

	require.NoError(t, err)
	assert.Equal(t, domain.Limit(1), p.LimitsFor(premiumUser()).Lists)
}
