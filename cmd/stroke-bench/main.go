package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/okian/tracescore/internal/strokegen"
)

const (
	defaultPerLevel   = 50
	defaultPoints     = 120
	defaultRadius     = 100.0
	defaultDifficulty = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 10 * time.Second
	defaultTolerance  = 1.0
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		noise      = flag.String("noise", "", "Comma separated noise levels (default 0,0.01,0.03,0.06,0.1,0.2)")
		perLevel   = flag.Int("per-level", defaultPerLevel, "Strokes per noise level")
		points     = flag.Int("points", defaultPoints, "Samples per stroke")
		radius     = flag.Float64("radius", defaultRadius, "Target circle radius")
		difficulty = flag.Int("difficulty", defaultDifficulty, "Difficulty 0..100")
		penalty    = flag.Bool("penalty", false, "Send attempts in penalty mode")
		seed       = flag.Uint64("seed", 1, "Generator seed")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		tolerance  = flag.Float64("tolerance", defaultTolerance, "Allowed rise of the mean score between levels")
		outputFile = flag.String("output", "", "Write the generated strokes to this JSON file")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		strokegen.ShowHelp()
		return
	}

	if err := strokegen.SetupLogging(os.Stderr, *logFormat, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to setup logging:", err)
		os.Exit(2)
	}

	levels, err := parseLevels(*noise)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid -noise:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &strokegen.Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		NoiseLevels: levels,
		PerLevel:    *perLevel,
		Points:      *points,
		Radius:      *radius,
		Difficulty:  *difficulty,
		Penalty:     *penalty,
		Seed:        *seed,
		Workers:     *workers,
		Timeout:     *timeout,
		Tolerance:   *tolerance,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if _, err := strokegen.Run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Run failed:", err)
		os.Exit(1)
	}
}

func parseLevels(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return strokegen.DefaultNoiseLevels(), nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative noise level %v", v)
		}
		out = append(out, v)
	}
	return out, nil
}
