package strokegen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NoiseLevels []float64     // Radial noise per level, as a fraction of the radius
	PerLevel    int           // Strokes generated per noise level
	Points      int           // Samples per stroke
	Radius      float64       // Target circle radius
	Difficulty  int           // Difficulty sent with every attempt
	Penalty     bool          // Penalty flag sent with every attempt
	Seed        uint64        // Seed of the stroke generator
	Workers     int           // Concurrent HTTP submitters
	Timeout     time.Duration // HTTP request timeout
	Tolerance   float64       // Allowed rise of the mean score between adjacent levels
	OutputFile  string        // Optional JSON dump of the generated strokes
	Verbose     bool          // Log every level summary in detail
}

// DefaultNoiseLevels are the noise fractions used when none are configured.
func DefaultNoiseLevels() []float64 {
	return []float64{0, 0.01, 0.03, 0.06, 0.1, 0.2}
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Submitted int
	Succeeded int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
