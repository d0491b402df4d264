package strokegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/okian/tracescore/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Report is the result of a run.
type Report struct {
	Levels []LevelSummary `json:"levels"`
	Stats  Stats          `json:"-"`
}

// Run checks the service health, generates strokes, scores them over HTTP and
// verifies that scores degrade with noise.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	log := logger.Get().Named("strokegen")
	stats := Stats{StartTime: time.Now()}

	if len(cfg.NoiseLevels) == 0 {
		cfg.NoiseLevels = DefaultNoiseLevels()
	}
	if !sort.Float64sAreSorted(cfg.NoiseLevels) {
		return nil, fmt.Errorf("noise levels must be ascending: %v", cfg.NoiseLevels)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	log.Info(ctx, "starting stroke load run",
		logger.String("base_url", cfg.BaseURL),
		logger.Any("noise_levels", cfg.NoiseLevels),
		logger.Int("per_level", cfg.PerLevel),
		logger.Int("points", cfg.Points),
		logger.Int("difficulty", cfg.Difficulty),
		logger.Bool("penalty", cfg.Penalty),
	)

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	samples := Generate(cfg)
	stats.Generated = len(samples)

	if cfg.OutputFile != "" {
		if err := saveSamples(cfg.OutputFile, samples); err != nil {
			log.Warn(ctx, "failed to save strokes", logger.Error(err))
		}
	}

	outcomes := submit(ctx, cfg, samples, &stats)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	report := &Report{Levels: Summarize(cfg.NoiseLevels, outcomes)}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report.Stats = stats

	for _, s := range report.Levels {
		fields := []logger.Field{
			logger.Float64("noise", s.Noise),
			logger.Float64("mean", s.Mean),
			logger.Float64("std_dev", s.StdDev),
		}
		if cfg.Verbose {
			fields = append(fields,
				logger.Int("count", s.Count),
				logger.Int("failed", s.Failed),
				logger.Float64("min", s.MinSeen),
				logger.Float64("max", s.MaxSeen),
			)
		}
		log.Info(ctx, "level summary", fields...)
	}

	if err := Verify(report.Levels, cfg.Tolerance); err != nil {
		return report, fmt.Errorf("verification failed: %w", err)
	}

	log.Info(ctx, "run completed",
		logger.Int("generated", stats.Generated),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	return report, nil
}

func checkServiceHealth(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func saveSamples(path string, samples []Sample) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal strokes: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write strokes: %w", err)
	}
	return nil
}
