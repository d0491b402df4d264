package geometry

import "math"

// AngleBetween returns the angle at p2, in radians, formed by the rays from
// p2 to p1 and from p2 to p3. Zero-length rays yield π/2.
func AngleBetween(p1, p2, p3 Point) float64 {
	a := p1.Sub(p2)
	b := p3.Sub(p2)
	cos := safeDiv(a.Dot(b), a.Hypot()*b.Hypot())
	// floating point drift can push |cos| slightly past 1
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}

// TurningAngle returns the change of direction at p2 between the segment
// p1→p2 and the segment p2→p3, in radians. A straight continuation is 0 and a
// full reversal is π.
func TurningAngle(p1, p2, p3 Point) float64 {
	return math.Pi - AngleBetween(p1, p2, p3)
}

// TurningAngles returns the turning angle, in degrees, at every interior
// point of s whose incoming and outgoing segments both have non-zero length.
func TurningAngles(s Stroke) []float64 {
	if len(s) < 3 {
		return nil
	}
	out := make([]float64, 0, len(s)-2)
	for i := 1; i < len(s)-1; i++ {
		in := s[i].Sub(s[i-1])
		outSeg := s[i+1].Sub(s[i])
		if in.Hypot() == 0 || outSeg.Hypot() == 0 {
			continue
		}
		out = append(out, TurningAngle(s[i-1], s[i], s[i+1])*180/math.Pi)
	}
	return out
}
