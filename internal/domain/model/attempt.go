// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/scoring"
)

// Attempt is one completed stroke submitted for scoring.
type Attempt struct {
	ID          string              // caller supplied or generated
	BatchID     string              // set when the attempt is part of a batch
	Stroke      geometry.Stroke     // raw, unsmoothed samples
	Circle      geometry.Circle     // target
	Difficulty  int                 // 0..100
	Penalty     bool                // penalty mode shrinks tolerances further
	Thresholds  *scoring.Thresholds // optional per-attempt override
	SubmittedAt time.Time           // when the attempt entered the service
}

// Input converts the attempt into the scoring input.
func (a *Attempt) Input() scoring.Input {
	return scoring.Input{
		Stroke:     a.Stroke,
		Circle:     a.Circle,
		Difficulty: a.Difficulty,
		Penalty:    a.Penalty,
		Thresholds: a.Thresholds,
	}
}

// Result is the outcome of scoring one attempt.
type Result struct {
	AttemptID string
	BatchID   string
	Scores    scoring.Subscores
	Err       error
	ScoredAt  time.Time
}

// Batch is the outcome of a batch submission. Results follow the order of
// the submitted attempts.
type Batch struct {
	ID      string
	Results []Result
}

// Diagnostics are auxiliary measures of a stroke that do not feed the
// overall score.
type Diagnostics struct {
	Points           int     `json:"points"`
	MeanRadius       float64 `json:"mean_radius"`
	RadiusStdDev     float64 `json:"radius_std_dev"`
	MeanTurningAngle float64 `json:"mean_turning_angle_deg"`
	ClosureGap       float64 `json:"closure_gap"`
}

// Analyze computes the diagnostics of s against c.
func Analyze(s geometry.Stroke, c geometry.Circle) Diagnostics {
	return Diagnostics{
		Points:           len(s),
		MeanRadius:       geometry.MeanRadius(s, c),
		RadiusStdDev:     geometry.StdDeviationOfRadii(s, c),
		MeanTurningAngle: geometry.MeanTurningAngle(s),
		ClosureGap:       geometry.ClosureGap(s, c),
	}
}
