package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
)

func TestSubscriptionPlan_ExpiryFrom(t *testing.T) {
	now := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)

	monthly, err := domain.PlanMonthly.ExpiryFrom(now)
	require.NoError(t, err)
	// AddDate normalises Feb 31 to Mar 3.
	assert.Equal(t, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), monthly)

	yearly, err := domain.PlanYearly.ExpiryFrom(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 1, 31, 9, 0, 0, 0, time.UTC), yearly)

	_, err = domain.PlanNone.ExpiryFrom(now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
