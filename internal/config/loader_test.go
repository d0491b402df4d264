package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/tracescore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("TRACESCORE_ADDR", ":8080")
			t.Setenv("TRACESCORE_QUEUE_SIZE", "128")
			t.Setenv("TRACESCORE_WORKER_COUNT", "3")
			t.Setenv("TRACESCORE_LOG_FORMAT", "json")
			t.Setenv("TRACESCORE_TUNING__PENALTY_MULTIPLIER", "1.5")
			t.Setenv("TRACESCORE_THRESHOLDS__DEVIATION__POOR", "0.3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.Tuning.PenaltyMultiplier, convey.ShouldEqual, 1.5)
				convey.So(cfg.Thresholds.Deviation.Poor, convey.ShouldEqual, 0.3)
				convey.So(cfg.Thresholds.Deviation.Good, convey.ShouldEqual, 0.10)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			body := "addr: \":7070\"\nmax_batch_size: 20\nthresholds:\n  smoothness:\n    excellent: 10\n    good: 20\n    poor: 40\n" +
				"metrics:\n  namespace: strokes\n  score_buckets: [25, 50, 75]\n  const_labels:\n    region: eu\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			t.Setenv("TRACESCORE_CONFIG", path)
			t.Setenv("TRACESCORE_MAX_BATCH_SIZE", "30")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 30)
				convey.So(cfg.Thresholds.Smoothness.Excellent, convey.ShouldEqual, 10)
				convey.So(cfg.Thresholds.Smoothness.Poor, convey.ShouldEqual, 40)
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "strokes")
				convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "engine")
				convey.So(cfg.Metrics.ScoreBuckets, convey.ShouldResemble, []float64{25, 50, 75})
				convey.So(cfg.Metrics.ConstLabels, convey.ShouldResemble, map[string]string{"region": "eu"})
			})
		})

		convey.Convey("When the config file does not exist", func() {
			t.Setenv("TRACESCORE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When env values fail validation", func() {
			t.Setenv("TRACESCORE_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// clearConfigEnvVars unsets every TRACESCORE_ variable; t.Setenv restores
// the original values when the test ends.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "TRACESCORE_") {
			t.Setenv(key, "")
			_ = os.Unsetenv(key)
		}
	}
}
