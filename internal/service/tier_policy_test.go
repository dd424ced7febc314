package service

import (
	"testing"

	"cardioalert/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestTierPolicyLookup(t *testing.T) {
	p := NewTierPolicy(config.PricingConfig{
		TierPrices:    [3]int64{100, 200, 300},
		TierHospitals: [3]int{1, 3, 10},
	})

	assert.Equal(t, Tier{Level: 1, PriceMinor: 100, HospitalCount: 1}, p.Lookup(1))
	assert.Equal(t, Tier{Level: 2, PriceMinor: 200, HospitalCount: 3}, p.Lookup(2))
	assert.Equal(t, Tier{Level: 3, PriceMinor: 300, HospitalCount: 10}, p.Lookup(3))

	assert.Less(t, p.Lookup(1).PriceMinor, p.Lookup(2).PriceMinor)
	assert.Less(t, p.Lookup(2).PriceMinor, p.Lookup(3).PriceMinor)
}

func TestTierPolicyUnknownTierFallsBackToTierOne(t *testing.T) {
	p := NewTierPolicy(config.PricingConfig{
		TierPrices:    [3]int64{100, 200, 300},
		TierHospitals: [3]int{1, 3, 10},
	})

	for _, level := range []int{0, -1, 4, 99} {
		assert.Equal(t, p.Lookup(1), p.Lookup(level), "tier %d", level)
		assert.False(t, ValidTier(level))
	}
}
