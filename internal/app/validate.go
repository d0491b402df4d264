package service

import (
	"fmt"
	"math"

	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/model"
)

func (s *Service) validateStroke(stroke geometry.Stroke, minPoints int) error {
	if len(stroke) < minPoints {
		return fmt.Errorf("%w: stroke needs at least %d point(s), got %d", ErrInvalidInput, minPoints, len(stroke))
	}
	if len(stroke) > s.maxStrokePoints {
		return fmt.Errorf("%w: stroke has %d points, limit is %d", ErrTooLarge, len(stroke), s.maxStrokePoints)
	}
	for i, p := range stroke {
		if !p.IsFinite() {
			return fmt.Errorf("%w: point %d is not finite", ErrInvalidInput, i)
		}
	}
	return nil
}

func validateCircle(c geometry.Circle) error {
	for _, v := range []float64{c.X, c.Y, c.Radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: circle is not finite", ErrInvalidInput)
		}
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidInput, c.Radius)
	}
	return nil
}

func validatePercent(name string, v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %s must be within [0, 100], got %d", ErrInvalidInput, name, v)
	}
	return nil
}

func (s *Service) validateAttempt(a *model.Attempt) error {
	if err := s.validateStroke(a.Stroke, 1); err != nil {
		return err
	}
	if err := validateCircle(a.Circle); err != nil {
		return err
	}
	if err := validatePercent("difficulty", a.Difficulty); err != nil {
		return err
	}
	if a.Thresholds != nil {
		if err := a.Thresholds.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return nil
}
