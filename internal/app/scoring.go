package service

import (
	"context"
	"time"

	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/internal/domain/scoring"
	"github.com/okian/tracescore/internal/domain/smoothing"
	"github.com/okian/tracescore/pkg/logger"
	"github.com/okian/tracescore/pkg/metrics"
)

// Smooth returns a smoothed copy of stroke.
func (s *Service) Smooth(ctx context.Context, stroke geometry.Stroke, precision int) (geometry.Stroke, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.validateStroke(stroke, 0); err != nil {
		return nil, s.reject(ctx, "smooth", err)
	}
	if err := validatePercent("precision", precision); err != nil {
		return nil, s.reject(ctx, "smooth", err)
	}

	start := time.Now()
	out := smoothing.Smooth(stroke, precision)
	metrics.RecordSmoothing(float64(time.Since(start).Nanoseconds()) / 1e3)
	s.smoothed.Add(1)

	return out, nil
}

// Score validates and scores one attempt on the calling goroutine.
func (s *Service) Score(ctx context.Context, a model.Attempt) (scoring.Subscores, error) { //nolint:gocritic // hugeParam: attempts are values
	if err := s.ready(); err != nil {
		return scoring.Subscores{}, err
	}
	if err := s.validateAttempt(&a); err != nil {
		return scoring.Subscores{}, s.reject(ctx, "score", err)
	}

	start := time.Now()
	scores := s.aggregator.Score(a.Input())
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	recordScored("sync", &a, scores)
	s.scored.Add(1)

	s.logger.Debug(ctx, "attempt scored",
		logger.String("attempt_id", a.ID),
		logger.Int("points", len(a.Stroke)),
		logger.Int("difficulty", a.Difficulty),
		logger.Bool("penalty", a.Penalty),
		logger.Float64("overall", scores.OverallScore),
	)
	return scores, nil
}

// Analyze returns diagnostics that do not feed the overall score.
func (s *Service) Analyze(ctx context.Context, stroke geometry.Stroke, c geometry.Circle) (model.Diagnostics, error) {
	if err := s.ready(); err != nil {
		return model.Diagnostics{}, err
	}
	if err := s.validateStroke(stroke, 1); err != nil {
		return model.Diagnostics{}, s.reject(ctx, "analyze", err)
	}
	if err := validateCircle(c); err != nil {
		return model.Diagnostics{}, s.reject(ctx, "analyze", err)
	}
	s.analyzed.Add(1)
	return model.Analyze(stroke, c), nil
}

func (s *Service) reject(ctx context.Context, op string, err error) error {
	s.rejected.Add(1)
	metrics.RecordErrorByComponent("service", op+"_rejected")
	s.logger.Debug(ctx, "request rejected", logger.String("op", op), logger.Error(err))
	return err
}

func recordScored(mode string, a *model.Attempt, scores scoring.Subscores) {
	metrics.RecordStrokeScored(mode, len(a.Stroke), a.Penalty)
	metrics.RecordSubscores(scores.StrokeDeviation, scores.AngularSmoothness, scores.CompletionOffset, scores.OverallScore)
}
