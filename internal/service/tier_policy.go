package service

import "cardioalert/internal/config"

// Tier is the price and fan-out width of one alert tier
type Tier struct {
	Level         int   `json:"level"`
	PriceMinor    int64 `json:"price_minor"`
	HospitalCount int   `json:"hospital_count"`
}

// TierPolicy maps a tier level to its price and hospital count.
// Values are loaded once at start and never change for a run.
type TierPolicy struct {
	tiers [3]Tier
}

func NewTierPolicy(cfg config.PricingConfig) *TierPolicy {
	p := &TierPolicy{}
	for i := range p.tiers {
		p.tiers[i] = Tier{
			Level:         i + 1,
			PriceMinor:    cfg.TierPrices[i],
			HospitalCount: cfg.TierHospitals[i],
		}
	}
	return p
}

// ValidTier reports whether level is one of the offered tiers
func ValidTier(level int) bool {
	return level >= 1 && level <= 3
}

// Lookup returns the tier for level. Unknown levels get tier 1's values.
func (p *TierPolicy) Lookup(level int) Tier {
	if !ValidTier(level) {
		return p.tiers[0]
	}
	return p.tiers[level-1]
}
