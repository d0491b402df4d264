package geometry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Radii returns the distance from every point of s to the center of c.
func Radii(s Stroke, c Circle) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = Distance(p, c)
	}
	return out
}

// MeanRadius returns the mean distance from the points of s to the center of
// c. An empty stroke yields 0.
func MeanRadius(s Stroke, c Circle) float64 {
	if len(s) == 0 {
		return 0
	}
	return stat.Mean(Radii(s, c), nil)
}

// StdDeviationOfRadii returns the population standard deviation of the
// point-to-center distances. It measures radial symmetry independently of
// whether the stroke matches the target radius. Fewer than two points yield 0.
func StdDeviationOfRadii(s Stroke, c Circle) float64 {
	if len(s) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(Radii(s, c), nil)
	return std
}

// MeanTurningAngle returns the mean direction change along s in degrees,
// skipping points adjacent to a zero-length segment. Strokes with no
// measurable turn yield 0.
func MeanTurningAngle(s Stroke) float64 {
	angles := TurningAngles(s)
	return safeDiv(floats.Sum(angles), float64(len(angles)))
}

// ClosureGap returns the distance between the first and last point of s as a
// fraction of the radius of c. Fewer than two points yield 0.
func ClosureGap(s Stroke, c Circle) float64 {
	if len(s) < 2 {
		return 0
	}
	return c.Normalize(s[0].Distance(s[len(s)-1]))
}
