package geometry_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/okian/tracescore/internal/domain/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistance(t *testing.T) {
	Convey("Given a circle centered away from the origin", t, func() {
		c := geometry.Circle{X: 10, Y: 20, Radius: 5}

		Convey("Then Distance measures to the center, not the boundary", func() {
			So(geometry.Distance(geometry.Pt(13, 24), c), ShouldEqual, 5)
			So(geometry.Distance(geometry.Pt(10, 20), c), ShouldEqual, 0)
		})

		Convey("And RadialError is the boundary distance as a fraction of the radius", func() {
			So(geometry.RadialError(geometry.Pt(13, 24), c), ShouldEqual, 0)
			So(geometry.RadialError(geometry.Pt(10, 20), c), ShouldEqual, 1)
			So(geometry.RadialError(geometry.Pt(20, 20), c), ShouldEqual, 1)
		})
	})

	Convey("Given a zero-radius circle", t, func() {
		c := geometry.Circle{}

		Convey("Then normalization divides by 1 instead of 0", func() {
			So(geometry.RadialError(geometry.Pt(3, 4), c), ShouldEqual, 5)
			So(c.Normalize(7), ShouldEqual, 7)
		})
	})
}

func TestAngleBetween(t *testing.T) {
	Convey("Given three points", t, func() {
		Convey("When they form a right angle", func() {
			a := geometry.AngleBetween(geometry.Pt(1, 0), geometry.Pt(0, 0), geometry.Pt(0, 1))
			So(a, ShouldAlmostEqual, math.Pi/2, 1e-12)
		})

		Convey("When they are collinear and continue forward", func() {
			a := geometry.AngleBetween(geometry.Pt(-1, 0), geometry.Pt(0, 0), geometry.Pt(1, 0))
			So(a, ShouldEqual, math.Pi)
			So(geometry.TurningAngle(geometry.Pt(-1, 0), geometry.Pt(0, 0), geometry.Pt(1, 0)), ShouldEqual, 0)
		})

		Convey("When the stroke doubles back", func() {
			So(geometry.TurningAngle(geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(0, 0)), ShouldEqual, math.Pi)
		})

		Convey("When the cosine drifts just past 1", func() {
			a := geometry.AngleBetween(geometry.Pt(1e8, 1), geometry.Pt(0, 0), geometry.Pt(1e8, 1))
			So(math.IsNaN(a), ShouldBeFalse)
			So(a, ShouldAlmostEqual, 0, 1e-6)
		})

		Convey("When a ray has zero length", func() {
			a := geometry.AngleBetween(geometry.Pt(0, 0), geometry.Pt(0, 0), geometry.Pt(1, 0))
			So(math.IsNaN(a), ShouldBeFalse)
			So(a, ShouldEqual, math.Pi/2)
		})
	})
}

func TestTurningAngles(t *testing.T) {
	cases := []struct {
		name string
		in   geometry.Stroke
		want []float64
	}{
		{"short", geometry.Stroke{geometry.Pt(0, 0), geometry.Pt(1, 1)}, nil},
		{"straight", geometry.Stroke{geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(2, 0)}, []float64{0}},
		{"square corner", geometry.Stroke{geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(1, 1)}, []float64{90}},
		{"duplicate skipped", geometry.Stroke{geometry.Pt(0, 0), geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(1, 1)}, []float64{90}},
		{"all duplicates", geometry.Stroke{geometry.Pt(2, 2), geometry.Pt(2, 2), geometry.Pt(2, 2)}, []float64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := geometry.TurningAngles(tc.in)
			if d := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateEmpty()); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestDiagnostics(t *testing.T) {
	Convey("Given points at radii 90 and 110 around the origin", t, func() {
		c := geometry.Circle{Radius: 100}
		s := geometry.Stroke{geometry.Pt(90, 0), geometry.Pt(0, 110), geometry.Pt(-90, 0), geometry.Pt(0, -110)}

		Convey("Then the mean radius is 100 and the population std-dev is 10", func() {
			So(geometry.MeanRadius(s, c), ShouldAlmostEqual, 100, 1e-9)
			So(geometry.StdDeviationOfRadii(s, c), ShouldAlmostEqual, 10, 1e-9)
		})

		Convey("And the mean turning angle of the square path is 90 degrees", func() {
			So(geometry.MeanTurningAngle(s), ShouldAlmostEqual, 90, 1e-9)
		})

		Convey("And the closure gap is measured in radii", func() {
			So(geometry.ClosureGap(s, c), ShouldAlmostEqual, math.Hypot(90, 110)/100, 1e-12)
		})
	})

	Convey("Given degenerate strokes", t, func() {
		c := geometry.Circle{Radius: 10}

		Convey("Then every diagnostic is 0", func() {
			So(geometry.MeanRadius(nil, c), ShouldEqual, 0)
			So(geometry.StdDeviationOfRadii(geometry.Stroke{geometry.Pt(1, 1)}, c), ShouldEqual, 0)
			So(geometry.MeanTurningAngle(geometry.Stroke{geometry.Pt(1, 1), geometry.Pt(1, 1), geometry.Pt(1, 1)}), ShouldEqual, 0)
			So(geometry.ClosureGap(geometry.Stroke{geometry.Pt(1, 1)}, c), ShouldEqual, 0)
		})
	})
}

func TestStroke(t *testing.T) {
	Convey("Given a stroke", t, func() {
		s := geometry.Stroke{geometry.Pt(1, 2), geometry.Pt(3, 4)}

		Convey("Then Clone does not share memory", func() {
			c := s.Clone()
			c[0].X = 99
			So(s[0].X, ShouldEqual, 1)
		})

		Convey("And First and Last return the end points", func() {
			first, ok := s.First()
			So(ok, ShouldBeTrue)
			So(first, ShouldResemble, geometry.Pt(1, 2))
			last, ok := s.Last()
			So(ok, ShouldBeTrue)
			So(last, ShouldResemble, geometry.Pt(3, 4))
		})

		Convey("And an empty stroke has no end points", func() {
			_, ok := geometry.Stroke(nil).First()
			So(ok, ShouldBeFalse)
			So(geometry.Stroke(nil).Clone(), ShouldBeNil)
		})
	})

	Convey("Given non-finite coordinates", t, func() {
		So(geometry.Pt(math.NaN(), 0).IsFinite(), ShouldBeFalse)
		So(geometry.Pt(0, math.Inf(1)).IsFinite(), ShouldBeFalse)
		So(geometry.Pt(1, 1).IsFinite(), ShouldBeTrue)
	})
}
