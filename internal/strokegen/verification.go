package strokegen

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// LevelSummary aggregates the overall scores of one noise level.
type LevelSummary struct {
	Level   int     `json:"level"`
	Noise   float64 `json:"noise"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Failed  int     `json:"failed"`
	MinSeen float64 `json:"min"`
	MaxSeen float64 `json:"max"`
}

// Summarize groups successful outcomes by level, in level order.
func Summarize(levels []float64, outcomes []Outcome) []LevelSummary {
	scores := make([][]float64, len(levels))
	failed := make([]int, len(levels))
	for _, o := range outcomes {
		if o.Sample == nil {
			continue
		}
		if o.Err != nil {
			failed[o.Sample.Level]++
			continue
		}
		scores[o.Sample.Level] = append(scores[o.Sample.Level], o.Scores.OverallScore)
	}

	out := make([]LevelSummary, len(levels))
	for i, noise := range levels {
		s := LevelSummary{Level: i, Noise: noise, Count: len(scores[i]), Failed: failed[i]}
		if s.Count > 0 {
			s.Mean, s.StdDev = stat.MeanStdDev(scores[i], nil)
			s.MinSeen, s.MaxSeen = scores[i][0], scores[i][0]
			for _, v := range scores[i][1:] {
				s.MinSeen = min(s.MinSeen, v)
				s.MaxSeen = max(s.MaxSeen, v)
			}
		}
		out[i] = s
	}
	return out
}

// Verify checks that every score is within [0, 100] and that the mean score
// does not rise by more than tolerance as the noise grows. Levels with no
// successful sample are reported as errors.
func Verify(summaries []LevelSummary, tolerance float64) error {
	for i, s := range summaries {
		if s.Count == 0 {
			return fmt.Errorf("noise level %v: no successful samples", s.Noise)
		}
		if s.MinSeen < 0 || s.MaxSeen > 100 {
			return fmt.Errorf("noise level %v: score out of range [%v, %v]", s.Noise, s.MinSeen, s.MaxSeen)
		}
		if i == 0 {
			continue
		}
		prev := summaries[i-1]
		if s.Noise >= prev.Noise && s.Mean > prev.Mean+tolerance {
			return fmt.Errorf("mean score rose from %.2f at noise %v to %.2f at noise %v",
				prev.Mean, prev.Noise, s.Mean, s.Noise)
		}
	}
	return nil
}
