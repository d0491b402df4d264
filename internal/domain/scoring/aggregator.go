// Package scoring turns a completed stroke and its target circle into three
// geometric subscores and a weighted overall score.
//
// Scoring is a pure function of its input. Difficulty is applied by dividing
// every threshold boundary by a multiplier before any metric is mapped, so the
// measurements themselves never depend on difficulty.
package scoring

import (
	"math"

	"github.com/okian/tracescore/internal/domain/geometry"
)

// Overall score weights.
const (
	deviationWeight  = 0.5
	smoothnessWeight = 0.3
	completionWeight = 0.2
)

// Difficulty bounds.
const (
	MinDifficulty     = 0
	MaxDifficulty     = 100
	DefaultDifficulty = 50
)

// Tuning controls how difficulty and penalty mode shrink the thresholds:
//
//	multiplier = (DifficultyBase + level/100 * DifficultySpan) * (penalty ? PenaltyMultiplier : 1)
type Tuning struct {
	DifficultyBase    float64 `json:"difficulty_base" koanf:"difficulty_base"`
	DifficultySpan    float64 `json:"difficulty_span" koanf:"difficulty_span"`
	PenaltyMultiplier float64 `json:"penalty_multiplier" koanf:"penalty_multiplier"`
}

// DefaultTuning returns a multiplier range of [0.5, 1.5] and a 1.25 penalty.
func DefaultTuning() Tuning {
	return Tuning{
		DifficultyBase:    0.5,
		DifficultySpan:    1.0,
		PenaltyMultiplier: 1.25,
	}
}

// Validate reports whether every multiplier at every difficulty is positive.
func (t Tuning) Validate() error {
	switch {
	case t.DifficultyBase <= 0:
		return ErrInvalidTuning
	case t.DifficultyBase+t.DifficultySpan <= 0:
		return ErrInvalidTuning
	case t.PenaltyMultiplier <= 0:
		return ErrInvalidTuning
	}
	return nil
}

// Multiplier returns the threshold divisor for a difficulty level and penalty
// flag. Levels outside [0, 100] are clamped.
func (t Tuning) Multiplier(level int, penalty bool) float64 {
	level = max(MinDifficulty, min(MaxDifficulty, level))
	m := t.DifficultyBase + float64(level)/MaxDifficulty*t.DifficultySpan
	if penalty {
		m *= t.PenaltyMultiplier
	}
	return m
}

// Input is one completed attempt to be scored.
type Input struct {
	Stroke     geometry.Stroke
	Circle     geometry.Circle
	Difficulty int
	Penalty    bool
	// Thresholds replaces the aggregator defaults for this call when set.
	Thresholds *Thresholds
}

// Subscores is the result of scoring one stroke. Every field is in [0, 100]
// and rounded to two decimals.
type Subscores struct {
	StrokeDeviation   float64 `json:"stroke_deviation"`
	AngularSmoothness float64 `json:"angular_smoothness"`
	CompletionOffset  float64 `json:"completion_offset"`
	OverallScore      float64 `json:"overall_score"`
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithThresholds sets the default thresholds used when an input carries none.
func WithThresholds(t Thresholds) Option {
	return func(a *Aggregator) {
		if t.Validate() == nil {
			a.thresholds = t
		}
	}
}

// WithTuning sets the difficulty and penalty tuning.
func WithTuning(t Tuning) Option {
	return func(a *Aggregator) {
		if t.Validate() == nil {
			a.tuning = t
		}
	}
}

// Aggregator combines the deviation, smoothness and completion scorers. It is
// immutable after construction and safe for concurrent use.
type Aggregator struct {
	thresholds Thresholds
	tuning     Tuning
}

// NewAggregator creates an aggregator with default thresholds and tuning.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		thresholds: DefaultThresholds(),
		tuning:     DefaultTuning(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thresholds returns the default thresholds of a.
func (a *Aggregator) Thresholds() Thresholds { return a.thresholds }

// Tuning returns the difficulty tuning of a.
func (a *Aggregator) Tuning() Tuning { return a.tuning }

// EffectiveThresholds returns the thresholds the metrics see for in, after
// overrides and difficulty scaling.
func (a *Aggregator) EffectiveThresholds(in Input) Thresholds {
	base := a.thresholds
	if in.Thresholds != nil {
		base = *in.Thresholds
	}
	return base.Scale(a.tuning.Multiplier(in.Difficulty, in.Penalty))
}

// Score evaluates a completed stroke.
func (a *Aggregator) Score(in Input) Subscores {
	t := a.EffectiveThresholds(in)

	dev := StrokeDeviation(in.Stroke, in.Circle, t)
	smooth := AngularSmoothness(in.Stroke, t)
	comp := CompletionOffset(in.Stroke, in.Circle, t)
	overall := dev*deviationWeight + smooth*smoothnessWeight + comp*completionWeight

	return Subscores{
		StrokeDeviation:   round2(dev),
		AngularSmoothness: round2(smooth),
		CompletionOffset:  round2(comp),
		OverallScore:      round2(clamp(overall, 0, maxScore)),
	}
}

var defaultAggregator = NewAggregator()

// Score evaluates a stroke with the default thresholds and tuning. A nil
// thresholds argument uses the defaults.
func Score(stroke geometry.Stroke, circle geometry.Circle, difficulty int, penalty bool, thresholds *Thresholds) Subscores {
	return defaultAggregator.Score(Input{
		Stroke:     stroke,
		Circle:     circle,
		Difficulty: difficulty,
		Penalty:    penalty,
		Thresholds: thresholds,
	})
}

// Valid reports whether every field of s is a finite value in [0, 100].
func (s Subscores) Valid() bool {
	for _, v := range []float64{s.StrokeDeviation, s.AngularSmoothness, s.CompletionOffset, s.OverallScore} {
		if math.IsNaN(v) || v < 0 || v > maxScore {
			return false
		}
	}
	return true
}
