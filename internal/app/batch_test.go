package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/tracescore/internal/app"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_ScoreBatch(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(256),
			service.WithMaxBatchSize(100),
			service.WithBatchTimeout(5*time.Second),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a batch of mixed attempts is scored", func() {
			noisy := perfectAttempt("noisy")
			for i := range noisy.Stroke {
				noisy.Stroke[i].Y += float64(i%2) * 3
			}
			invalid := perfectAttempt("invalid")
			invalid.Circle.Radius = 0
			unnamed := perfectAttempt("")

			b, err := svc.ScoreBatch(ctx, []model.Attempt{perfectAttempt("perfect"), noisy, invalid, unnamed})

			Convey("Then results come back in submission order", func() {
				So(err, ShouldBeNil)
				So(b.ID, ShouldNotBeEmpty)
				So(len(b.Results), ShouldEqual, 4)
				So(b.Results[0].AttemptID, ShouldEqual, "perfect")
				So(b.Results[1].AttemptID, ShouldEqual, "noisy")
				So(b.Results[2].AttemptID, ShouldEqual, "invalid")
				So(b.Results[3].AttemptID, ShouldNotBeEmpty)
				for _, r := range b.Results {
					So(r.BatchID, ShouldEqual, b.ID)
				}
			})

			Convey("Then valid attempts match the synchronous score", func() {
				So(b.Results[0].Err, ShouldBeNil)
				So(b.Results[0].Scores.OverallScore, ShouldEqual, 100)
				So(b.Results[1].Scores, ShouldResemble, scoring.Score(noisy.Stroke, noisy.Circle, 50, false, nil))
				So(b.Results[3].Scores.OverallScore, ShouldEqual, 100)
			})

			Convey("Then the invalid attempt carries its own error", func() {
				So(errors.Is(b.Results[2].Err, service.ErrInvalidInput), ShouldBeTrue)
			})

			Convey("Then stats count the batch", func() {
				stats := svc.GetStats()
				So(stats["batchesScored"], ShouldEqual, int64(1))
				So(stats["strokesScored"], ShouldEqual, int64(3))
				So(stats["pendingBatches"], ShouldEqual, 0)
			})
		})

		Convey("When a batch repeats an attempt ID", func() {
			_, err := svc.ScoreBatch(ctx, []model.Attempt{perfectAttempt("same"), perfectAttempt("same")})

			Convey("Then the whole batch is rejected", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(err, service.ErrDuplicateID), ShouldBeTrue)
			})
		})

		Convey("When the batch is empty or too large", func() {
			_, errEmpty := svc.ScoreBatch(ctx, nil)
			_, errLarge := svc.ScoreBatch(ctx, make([]model.Attempt, 101))

			Convey("Then the matching error kinds are returned", func() {
				So(errors.Is(errEmpty, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errLarge, service.ErrTooLarge), ShouldBeTrue)
			})
		})

		Convey("When batches run concurrently", func() {
			const batches, perBatch = 8, 20
			var wg sync.WaitGroup
			errs := make(chan error, batches)
			for i := 0; i < batches; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					attempts := make([]model.Attempt, perBatch)
					for j := range attempts {
						// IDs repeat across batches on purpose
						attempts[j] = perfectAttempt(fmt.Sprintf("attempt-%d", j))
					}
					b, err := svc.ScoreBatch(ctx, attempts)
					if err == nil && len(b.Results) != perBatch {
						err = fmt.Errorf("batch %d: got %d results", n, len(b.Results))
					}
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)

			Convey("Then every batch gets exactly its own results", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
				So(svc.GetStats()["strokesScored"], ShouldEqual, int64(batches*perBatch))
			})
		})
	})

	Convey("Given a service that was not started", t, func() {
		svc := service.New()

		Convey("When a batch is submitted", func() {
			_, err := svc.ScoreBatch(context.Background(), []model.Attempt{perfectAttempt("a")})

			Convey("Then ErrNotStarted is returned", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with a tiny queue", t, func() {
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithMaxBatchSize(500),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a large batch overflows it", func() {
			// long strokes keep the single worker busy while the loop enqueues
			long := perfectAttempt("")
			long.Stroke = circleStroke(long.Circle, 5000)
			attempts := make([]model.Attempt, 500)
			for i := range attempts {
				attempts[i] = long
				attempts[i].ID = fmt.Sprintf("a-%d", i)
			}
			_, err := svc.ScoreBatch(ctx, attempts)

			Convey("Then ErrBackpressure is returned", func() {
				So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
			})
		})
	})

	Convey("Given a stopped service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(context.Background()), ShouldBeNil)
		svc.Stop()

		Convey("When a batch is submitted", func() {
			_, err := svc.ScoreBatch(context.Background(), []model.Attempt{perfectAttempt("a")})

			Convey("Then ErrServiceStopped is returned", func() {
				So(errors.Is(err, service.ErrServiceStopped), ShouldBeTrue)
			})
		})
	})
}
