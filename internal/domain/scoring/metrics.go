package scoring

import (
	"github.com/okian/tracescore/internal/domain/geometry"
	"gonum.org/v1/gonum/stat"
)

// StrokeDeviation scores how closely the points of s follow the boundary of
// c. The mean normalized radial error is mapped through the deviation tier.
// Strokes with fewer than two points score 0.
func StrokeDeviation(s geometry.Stroke, c geometry.Circle, t Thresholds) float64 {
	if len(s) < 2 {
		return 0
	}
	errs := make([]float64, len(s))
	for i, p := range s {
		errs[i] = geometry.RadialError(p, c)
	}
	return deviationBand.apply(stat.Mean(errs, nil), t.Deviation)
}

// AngularSmoothness scores how little the direction of s jitters between
// consecutive segments. The mean turning angle in degrees is mapped through
// the smoothness tier. Strokes with fewer than three points score 100.
func AngularSmoothness(s geometry.Stroke, t Thresholds) float64 {
	if len(s) < 3 {
		return maxScore
	}
	return smoothnessBand.apply(geometry.MeanTurningAngle(s), t.Smoothness)
}

// CompletionOffset scores how well s closes on itself: the gap between its
// first and last point, as a fraction of the radius of c, is mapped through
// the completion tier. Strokes with fewer than two points score 0.
func CompletionOffset(s geometry.Stroke, c geometry.Circle, t Thresholds) float64 {
	if len(s) < 2 {
		return 0
	}
	return completionBand.apply(geometry.ClosureGap(s, c), t.Completion)
}
