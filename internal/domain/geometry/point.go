// Package geometry contains the value types shared by the stroke pipeline and
// the distance and angle helpers built on them.
//
// Every function is pure. Divisions substitute 1 for a zero denominator so
// that degenerate input yields a finite result instead of NaN or Inf.
package geometry

import (
	"fmt"
	"math"
)

// Point is a single sampled location in screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (pt Point) String() string {
	return fmt.Sprintf("(%g, %g)", pt.X, pt.Y)
}

// Sub returns the vector from o to pt.
func (pt Point) Sub(o Point) Vec2 {
	return Vec2{X: pt.X - o.X, Y: pt.Y - o.Y}
}

// Distance returns the euclidean distance between two points.
func (pt Point) Distance(o Point) float64 {
	return math.Hypot(pt.X-o.X, pt.Y-o.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (pt Point) IsFinite() bool {
	return !math.IsNaN(pt.X) && !math.IsInf(pt.X, 0) &&
		!math.IsNaN(pt.Y) && !math.IsInf(pt.Y, 0)
}

// Vec2 is a displacement between two points.
type Vec2 struct {
	X float64
	Y float64
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Hypot returns the length of v.
func (v Vec2) Hypot() float64 {
	return math.Hypot(v.X, v.Y)
}

// Stroke is an ordered sequence of points; index order is sampling order.
type Stroke []Point

// First returns the first point of the stroke and false if it is empty.
func (s Stroke) First() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[0], true
}

// Last returns the last point of the stroke and false if it is empty.
func (s Stroke) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Clone returns a copy of s that shares no memory with it.
func (s Stroke) Clone() Stroke {
	if s == nil {
		return nil
	}
	out := make(Stroke, len(s))
	copy(out, s)
	return out
}

// safeDiv divides num by den, using 1 in place of a zero denominator.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		den = 1
	}
	return num / den
}
