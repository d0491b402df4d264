// Package smoothing reduces sampling jitter in a stroke while it is being
// drawn. It runs once per input sample, so it makes exactly one O(n) pass and
// never iterates to convergence.
package smoothing

import (
	"math"

	"github.com/okian/tracescore/internal/domain/geometry"
)

// Strength bounds.
const (
	lowPrecisionCutoff = 30
	lowPrecisionFactor = 0.1
	minStrength        = 0.05
	strengthDivisor    = 200
	maxPrecision       = 100
)

// Strength returns the blend factor applied to interior points for the given
// precision. Precision at or below 30 favours latency and uses a fixed 0.1.
func Strength(precision int) float64 {
	if precision <= lowPrecisionCutoff {
		return lowPrecisionFactor
	}
	return math.Max(minStrength, float64(maxPrecision-precision)/strengthDivisor)
}

// Smooth returns a new stroke of the same length as points in which each
// interior point is pulled toward the midpoint of its raw neighbours. The
// first and last points are copied unchanged so the closure gap of the stroke
// is preserved. Strokes shorter than three points are returned as a copy.
func Smooth(points geometry.Stroke, precision int) geometry.Stroke {
	out := points.Clone()
	if len(points) < 3 {
		return out
	}
	k := Strength(precision)
	for i := 1; i < len(points)-1; i++ {
		prev, cur, next := points[i-1], points[i], points[i+1]
		out[i] = geometry.Point{
			X: cur.X + (prev.X+next.X-2*cur.X)*k,
			Y: cur.Y + (prev.Y+next.Y-2*cur.Y)*k,
		}
	}
	return out
}
