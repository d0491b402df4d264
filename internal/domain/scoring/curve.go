package scoring

import "math"

const maxScore = 100

// band is the output side of a score curve: the score reached at the good
// boundary, at the poor boundary, and once the error doubles past poor.
type band struct {
	atGood float64
	atPoor float64
	floor  float64
}

var (
	deviationBand  = band{atGood: 80, atPoor: 50, floor: 0}
	smoothnessBand = band{atGood: 75, atPoor: 40, floor: 0}
	completionBand = band{atGood: 85, atPoor: 60, floor: 0}
)

func (b band) apply(value float64, t Tier) float64 {
	return mapThreshold(value, t.Excellent, t.Good, t.Poor, b.atGood, b.atPoor, b.floor)
}

// mapThreshold maps a metric value onto a four-segment piecewise-linear curve:
//
//	value <= excellent          -> 100
//	excellent < value <= good   -> 100 .. scoreAtGood
//	good < value <= poor        -> scoreAtGood .. scoreAtPoor
//	value > poor                -> scoreAtPoor .. floorScore
//
// The last segment reaches floorScore when value - poor equals poor.
func mapThreshold(value, excellent, good, poor, scoreAtGood, scoreAtPoor, floorScore float64) float64 {
	var score float64
	switch {
	case value <= excellent:
		score = maxScore
	case value <= good:
		t := safeDiv(value-excellent, good-excellent)
		score = maxScore - t*(maxScore-scoreAtGood)
	case value <= poor:
		t := safeDiv(value-good, poor-good)
		score = scoreAtGood - t*(scoreAtGood-scoreAtPoor)
	default:
		t := math.Min(1, safeDiv(value-poor, poor))
		score = scoreAtPoor - t*(scoreAtPoor-floorScore)
	}
	return clamp(score, 0, maxScore)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		den = 1
	}
	return num / den
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round2 rounds v to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
