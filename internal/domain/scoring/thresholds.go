package scoring

import (
	"fmt"
	"math"
)

// Tier holds the three boundaries of one metric's score curve, expressed in
// the metric's own unit. Excellent < Good < Poor.
type Tier struct {
	Excellent float64 `json:"excellent" koanf:"excellent"`
	Good      float64 `json:"good" koanf:"good"`
	Poor      float64 `json:"poor" koanf:"poor"`
}

// Thresholds groups the tiers of the three metrics. Deviation and completion
// are fractions of the target radius; smoothness is in degrees.
type Thresholds struct {
	Deviation  Tier `json:"deviation" koanf:"deviation"`
	Smoothness Tier `json:"smoothness" koanf:"smoothness"`
	Completion Tier `json:"completion" koanf:"completion"`
}

// DefaultThresholds returns the tiers used at difficulty 50 without penalty.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Deviation:  Tier{Excellent: 0.05, Good: 0.10, Poor: 0.20},
		Smoothness: Tier{Excellent: 15, Good: 30, Poor: 45},
		Completion: Tier{Excellent: 0.05, Good: 0.10, Poor: 0.20},
	}
}

// Scale returns a copy of t with every boundary divided by m. Multipliers
// above 1 shrink the tolerance band.
func (t Thresholds) Scale(m float64) Thresholds {
	return Thresholds{
		Deviation:  t.Deviation.scale(m),
		Smoothness: t.Smoothness.scale(m),
		Completion: t.Completion.scale(m),
	}
}

func (t Tier) scale(m float64) Tier {
	return Tier{
		Excellent: safeDiv(t.Excellent, m),
		Good:      safeDiv(t.Good, m),
		Poor:      safeDiv(t.Poor, m),
	}
}

// Validate reports whether every tier is finite, non-negative and strictly
// increasing.
func (t Thresholds) Validate() error {
	for _, named := range []struct {
		name string
		tier Tier
	}{
		{"deviation", t.Deviation},
		{"smoothness", t.Smoothness},
		{"completion", t.Completion},
	} {
		if err := named.tier.validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidThresholds, named.name, err)
		}
	}
	return nil
}

func (t Tier) validate() error {
	for _, v := range []float64{t.Excellent, t.Good, t.Poor} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite boundary %v", v)
		}
	}
	if t.Excellent < 0 {
		return fmt.Errorf("excellent %v is negative", t.Excellent)
	}
	if t.Excellent >= t.Good || t.Good >= t.Poor {
		return fmt.Errorf("tiers must satisfy excellent < good < poor, got %v/%v/%v", t.Excellent, t.Good, t.Poor)
	}
	return nil
}
