// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/tracescore/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory attempt queue used by batch scoring.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxStrokePoints caps the number of points accepted in one stroke.
	MaxStrokePoints int `koanf:"max_stroke_points"`

	// MaxBatchSize caps the number of attempts in one batch request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// BatchTimeoutMS bounds how long a batch waits for its results.
	BatchTimeoutMS int `koanf:"batch_timeout_ms"`

	// DefaultPrecision is used by smoothing requests that omit a precision.
	DefaultPrecision int `koanf:"default_precision"`

	// Tuning controls the difficulty and penalty multipliers.
	Tuning scoring.Tuning `koanf:"tuning"`

	// Thresholds are the tiers used when a request carries no override.
	Thresholds scoring.Thresholds `koanf:"thresholds"`

	// Metrics shapes the exported Prometheus series.
	Metrics Metrics `koanf:"metrics"`
}

// Metrics configures metric names, buckets and constant labels.
type Metrics struct {
	Namespace      string            `koanf:"namespace"`
	Subsystem      string            `koanf:"subsystem"`
	LatencyBuckets []float64         `koanf:"latency_buckets"`
	ScoreBuckets   []float64         `koanf:"score_buckets"`
	ConstLabels    map[string]string `koanf:"const_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU() * 2,
		MaxStrokePoints:  10_000,
		MaxBatchSize:     500,
		BatchTimeoutMS:   5_000,
		DefaultPrecision: 50,
		Tuning:           scoring.DefaultTuning(),
		Thresholds:       scoring.DefaultThresholds(),
		Metrics: Metrics{
			Namespace: "tracescore",
			Subsystem: "engine",
		},
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxStrokePoints <= 0:
		return fmt.Errorf("%w: max_stroke_points must be positive", ErrInvalidConfig)
	case c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: max_batch_size must be positive", ErrInvalidConfig)
	case c.BatchTimeoutMS <= 0:
		return fmt.Errorf("%w: batch_timeout_ms must be positive", ErrInvalidConfig)
	case c.DefaultPrecision < 0 || c.DefaultPrecision > 100:
		return fmt.Errorf("%w: default_precision must be within [0, 100]", ErrInvalidConfig)
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c.Metrics.validate()
}

func (m Metrics) validate() error {
	if m.Namespace == "" {
		return fmt.Errorf("%w: metrics.namespace must not be empty", ErrInvalidConfig)
	}
	for name, buckets := range map[string][]float64{
		"metrics.latency_buckets": m.LatencyBuckets,
		"metrics.score_buckets":   m.ScoreBuckets,
	} {
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				return fmt.Errorf("%w: %s must be strictly increasing", ErrInvalidConfig, name)
			}
		}
	}
	return nil
}
