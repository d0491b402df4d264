package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	service "github.com/okian/tracescore/internal/app"
	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/internal/domain/scoring"
	"github.com/okian/tracescore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// circleStroke samples n+1 points of the full circle c, starting and ending
// at angle 0.
func circleStroke(c geometry.Circle, n int) geometry.Stroke {
	s := make(geometry.Stroke, 0, n+1)
	for i := 0; i <= n; i++ {
		th := 2 * math.Pi * float64(i) / float64(n)
		s = append(s, geometry.Pt(c.X+c.Radius*math.Cos(th), c.Y+c.Radius*math.Sin(th)))
	}
	return s
}

func perfectAttempt(id string) model.Attempt {
	c := geometry.Circle{X: 100, Y: 100, Radius: 50}
	return model.Attempt{ID: id, Stroke: circleStroke(c, 72), Circle: c, Difficulty: 50}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(64),
			service.WithMaxStrokePoints(100),
			service.WithMaxBatchSize(10),
			service.WithBatchTimeout(time.Second),
			service.WithDefaultPrecision(70),
		)

		Convey("Then the options are visible in stats", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 64)
			So(stats["maxStrokePoints"], ShouldEqual, 100)
			So(stats["maxBatchSize"], ShouldEqual, 10)
			So(svc.DefaultPrecision(), ShouldEqual, 70)
		})
	})

	Convey("Given an out of range default precision", t, func() {
		svc := service.New(service.WithDefaultPrecision(150))

		Convey("Then the default is kept", func() {
			So(svc.DefaultPrecision(), ShouldEqual, 50)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When it is started twice and stopped twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			started := svc.GetStats()
			svc.Stop()
			svc.Stop()

			Convey("Then the state follows the calls", func() {
				So(started["started"], ShouldEqual, true)
				So(started["queueLength"], ShouldEqual, 0)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When it is used before Start", func() {
			a := perfectAttempt("early")
			_, scoreErr := svc.Score(ctx, a)
			_, smoothErr := svc.Smooth(ctx, a.Stroke, 50)
			_, analyzeErr := svc.Analyze(ctx, a.Stroke, a.Circle)

			Convey("Then every operation reports ErrNotStarted", func() {
				So(errors.Is(scoreErr, service.ErrNotStarted), ShouldBeTrue)
				So(errors.Is(smoothErr, service.ErrNotStarted), ShouldBeTrue)
				So(errors.Is(analyzeErr, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When it is used after Stop", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
			a := perfectAttempt("late")
			_, scoreErr := svc.Score(ctx, a)
			_, smoothErr := svc.Smooth(ctx, a.Stroke, 50)
			_, analyzeErr := svc.Analyze(ctx, a.Stroke, a.Circle)
			_, batchErr := svc.ScoreBatch(ctx, []model.Attempt{a})

			Convey("Then every operation reports ErrServiceStopped", func() {
				So(errors.Is(scoreErr, service.ErrServiceStopped), ShouldBeTrue)
				So(errors.Is(smoothErr, service.ErrServiceStopped), ShouldBeTrue)
				So(errors.Is(analyzeErr, service.ErrServiceStopped), ShouldBeTrue)
				So(errors.Is(batchErr, service.ErrServiceStopped), ShouldBeTrue)
			})

			Convey("Then a restart serves requests again", func() {
				So(svc.Start(ctx), ShouldBeNil)
				defer svc.Stop()
				_, err := svc.Score(ctx, a)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the start context is cancelled", func() {
			startCtx, startCancel := context.WithCancel(context.Background())
			So(svc.Start(startCtx), ShouldBeNil)
			defer svc.Stop()
			startCancel()

			b, err := svc.ScoreBatch(ctx, []model.Attempt{perfectAttempt("a")})

			Convey("Then the workers keep running", func() {
				So(err, ShouldBeNil)
				So(b.Results[0].Err, ShouldBeNil)
			})
		})
	})
}

func TestService_Score(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithMaxStrokePoints(200))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a perfect trace is scored", func() {
			scores, err := svc.Score(ctx, perfectAttempt("perfect"))

			Convey("Then every score is 100", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldResemble, scoring.Subscores{
					StrokeDeviation:   100,
					AngularSmoothness: 100,
					CompletionOffset:  100,
					OverallScore:      100,
				})
			})
		})

		Convey("When the result is compared with the engine", func() {
			a := perfectAttempt("noisy")
			for i := range a.Stroke {
				a.Stroke[i].X += float64(i%3) * 2
			}
			a.Difficulty = 80
			a.Penalty = true
			scores, err := svc.Score(ctx, a)

			Convey("Then the service returns the package-level score", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldResemble, scoring.Score(a.Stroke, a.Circle, 80, true, nil))
			})
		})

		Convey("When a single point is scored", func() {
			a := perfectAttempt("single")
			a.Stroke = a.Stroke[:1]
			scores, err := svc.Score(ctx, a)

			Convey("Then the trivial-length policy applies", func() {
				So(err, ShouldBeNil)
				So(scores.StrokeDeviation, ShouldEqual, 0)
				So(scores.AngularSmoothness, ShouldEqual, 100)
				So(scores.CompletionOffset, ShouldEqual, 0)
				So(scores.OverallScore, ShouldEqual, 30)
			})
		})

		Convey("When invalid attempts are scored", func() {
			unordered := scoring.DefaultThresholds()
			unordered.Deviation.Good = 0.5

			cases := []struct {
				name   string
				mutate func(*model.Attempt)
				kind   error
			}{
				{"empty stroke", func(a *model.Attempt) { a.Stroke = nil }, service.ErrInvalidInput},
				{"zero radius", func(a *model.Attempt) { a.Circle.Radius = 0 }, service.ErrInvalidInput},
				{"negative radius", func(a *model.Attempt) { a.Circle.Radius = -1 }, service.ErrInvalidInput},
				{"nan point", func(a *model.Attempt) { a.Stroke[3].Y = math.NaN() }, service.ErrInvalidInput},
				{"infinite center", func(a *model.Attempt) { a.Circle.X = math.Inf(1) }, service.ErrInvalidInput},
				{"difficulty too high", func(a *model.Attempt) { a.Difficulty = 101 }, service.ErrInvalidInput},
				{"negative difficulty", func(a *model.Attempt) { a.Difficulty = -1 }, service.ErrInvalidInput},
				{"unordered override", func(a *model.Attempt) { a.Thresholds = &unordered }, service.ErrInvalidInput},
				{"too many points", func(a *model.Attempt) { a.Stroke = circleStroke(a.Circle, 300) }, service.ErrTooLarge},
			}

			for _, tc := range cases {
				a := perfectAttempt(tc.name)
				tc.mutate(&a)
				_, err := svc.Score(ctx, a)

				Convey("Then "+tc.name+" is rejected", func() {
					So(errors.Is(err, tc.kind), ShouldBeTrue)
				})
			}

			Convey("And the rejections are counted", func() {
				So(svc.GetStats()["rejected"], ShouldEqual, int64(len(cases)))
			})
		})
	})
}

func TestService_Smooth(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithMaxStrokePoints(10))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		zigzag := geometry.Stroke{
			geometry.Pt(0, 0), geometry.Pt(1, 10), geometry.Pt(2, 0), geometry.Pt(3, 10), geometry.Pt(4, 0),
		}

		Convey("When a zigzag is smoothed", func() {
			out, err := svc.Smooth(ctx, zigzag, 60)

			Convey("Then interior points move and endpoints stay", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, len(zigzag))
				So(out[0], ShouldResemble, zigzag[0])
				So(out[4], ShouldResemble, zigzag[4])
				So(out[1].Y, ShouldAlmostEqual, 6, 1e-9)
				So(svc.GetStats()["smoothRequests"], ShouldEqual, int64(1))
			})
		})

		Convey("When an empty stroke is smoothed", func() {
			out, err := svc.Smooth(ctx, geometry.Stroke{}, 50)

			Convey("Then an empty stroke comes back", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When the precision is out of range", func() {
			_, errLow := svc.Smooth(ctx, zigzag, -1)
			_, errHigh := svc.Smooth(ctx, zigzag, 101)

			Convey("Then ErrInvalidInput is returned", func() {
				So(errors.Is(errLow, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errHigh, service.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When the stroke is too long", func() {
			_, err := svc.Smooth(ctx, make(geometry.Stroke, 11), 50)

			Convey("Then ErrTooLarge is returned", func() {
				So(errors.Is(err, service.ErrTooLarge), ShouldBeTrue)
			})
		})
	})
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a perfect circle is analyzed", func() {
			a := perfectAttempt("x")
			d, err := svc.Analyze(ctx, a.Stroke, a.Circle)

			Convey("Then the diagnostics describe it", func() {
				So(err, ShouldBeNil)
				So(d.Points, ShouldEqual, 73)
				So(d.MeanRadius, ShouldAlmostEqual, 50, 1e-9)
				So(d.RadiusStdDev, ShouldAlmostEqual, 0, 1e-9)
				So(d.MeanTurningAngle, ShouldAlmostEqual, 5, 1e-6)
				So(d.ClosureGap, ShouldAlmostEqual, 0, 1e-9)
			})
		})

		Convey("When the circle is invalid", func() {
			_, err := svc.Analyze(ctx, geometry.Stroke{geometry.Pt(0, 0)}, geometry.Circle{})

			Convey("Then ErrInvalidInput is returned", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}
