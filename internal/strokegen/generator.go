// Package strokegen synthesizes noisy circle traces and replays them against
// a running scoring service.
package strokegen

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/tracescore/internal/domain/geometry"
	"github.com/okian/tracescore/internal/domain/types"
)

// Sample is one generated attempt and the noise level it was drawn at.
type Sample struct {
	Level   int                `json:"level"`
	Noise   float64            `json:"noise"`
	Request types.ScoreRequest `json:"request"`
}

// Generate draws cfg.PerLevel strokes for each noise level. The same seed
// always yields the same strokes; attempt IDs are random.
func Generate(cfg *Config) []Sample {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	circle := geometry.Circle{X: cfg.Radius, Y: cfg.Radius, Radius: cfg.Radius}

	samples := make([]Sample, 0, len(cfg.NoiseLevels)*cfg.PerLevel)
	for level, noise := range cfg.NoiseLevels {
		for i := 0; i < cfg.PerLevel; i++ {
			difficulty := cfg.Difficulty
			samples = append(samples, Sample{
				Level: level,
				Noise: noise,
				Request: types.ScoreRequest{
					AttemptID:  uuid.NewString(),
					Stroke:     NoisyCircle(rng, circle, cfg.Points, noise),
					Circle:     circle,
					Difficulty: &difficulty,
					Penalty:    cfg.Penalty,
				},
			})
		}
	}
	return samples
}

// NoisyCircle samples a full turn of c with n+1 points. Each radius is
// perturbed by gaussian noise of standard deviation noise*r, and the closing
// point is displaced by the same amount so noisier traces also close worse.
func NoisyCircle(rng *rand.Rand, c geometry.Circle, n int, noise float64) []geometry.Point {
	if n < 1 {
		n = 1
	}
	phase := rng.Float64() * 2 * math.Pi
	sigma := noise * c.Radius

	pts := make([]geometry.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		th := phase + 2*math.Pi*float64(i)/float64(n)
		r := c.Radius + rng.NormFloat64()*sigma
		pts = append(pts, geometry.Pt(c.X+r*math.Cos(th), c.Y+r*math.Sin(th)))
	}
	if sigma > 0 {
		last := &pts[len(pts)-1]
		last.X += rng.NormFloat64() * sigma
		last.Y += rng.NormFloat64() * sigma
	}
	return pts
}
