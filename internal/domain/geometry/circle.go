package geometry

import "math"

// Circle is the reference target a stroke is judged against. Radius is
// expected to be positive; callers own that invariant.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Center returns the center of c.
func (c Circle) Center() Point {
	return Point{X: c.X, Y: c.Y}
}

// Distance returns the euclidean distance from p to the center of c, not to
// its boundary.
func Distance(p Point, c Circle) float64 {
	return math.Hypot(p.X-c.X, p.Y-c.Y)
}

// RadialError returns |Distance(p, c) - r| / r, the distance from p to the
// boundary of c as a fraction of the radius.
func RadialError(p Point, c Circle) float64 {
	return safeDiv(math.Abs(Distance(p, c)-c.Radius), c.Radius)
}

// Normalize divides d by the radius of c.
func (c Circle) Normalize(d float64) float64 {
	return safeDiv(d, c.Radius)
}
