package strokegen

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/tracescore/pkg/logger"
)

// SetupLogging initializes the global logger for the load tool.
func SetupLogging(w io.Writer, format string, verbose bool) error {
	if err := logger.InitWithFormat(w, format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Stroke Bench
============

Generates noisy circle traces, scores them against a running service and
checks that the mean overall score does not rise with noise.

Usage:
  stroke-bench [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -noise string      Comma separated noise levels (default "0,0.01,0.03,0.06,0.1,0.2")
  -per-level int     Strokes per noise level (default 50)
  -points int        Samples per stroke (default 120)
  -radius float      Target radius (default 100)
  -difficulty int    Difficulty 0..100 (default 50)
  -penalty           Send attempts in penalty mode
  -seed uint         Generator seed (default 1)
  -workers int       Concurrent submitters (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 10s)
  -tolerance float   Allowed rise of the mean between levels (default 1)
  -output string     Write the generated strokes to this JSON file
  -log-format string text or json (default "text")
  -verbose           Enable debug logging
  -help              Show this help message

Examples:
  stroke-bench -per-level 200 -workers 16
  stroke-bench -difficulty 90 -penalty -output strokes.json
`)
}
