package bench

import (
	"slices"

	"github.com/samber/lo"
)

// SweepResult holds metrics for one threshold value.
type SweepResult struct {
	Threshold float64
	Metrics   Metrics
}

// SweepThresholds generates threshold values from min to max with given step.
func SweepThresholds(min, max, step float64) []float64 {
	var thresholds []float64
	for i := 0; ; i++ {
		t := min + float64(i)*step
		if t >= max {
			break
		}
		thresholds = append(thresholds, t)
	}
	return thresholds
}

// Sweep evaluates held-out probabilities at each threshold and returns
// results sorted by weighted score, best first.
func Sweep(probs, labels []float64, cfg Config, thresholds []float64) ([]SweepResult, error) {
	results := make([]SweepResult, 0, len(thresholds))
	for _, threshold := range thresholds {
		cfg.Threshold = threshold
		m, err := Evaluate(probs, labels, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, SweepResult{Threshold: threshold, Metrics: m})
	}

	slices.SortStableFunc(results, func(a, b SweepResult) int {
		switch {
		case a.Metrics.WeightedScore > b.Metrics.WeightedScore:
			return -1
		case a.Metrics.WeightedScore < b.Metrics.WeightedScore:
			return 1
		}
		return 0
	})
	return results, nil
}

// BestF1 returns the sweep result with the highest F1; ties keep the
// earlier entry.
func BestF1(results []SweepResult) (SweepResult, bool) {
	if len(results) == 0 {
		return SweepResult{}, false
	}
	return lo.MaxBy(results, func(a, b SweepResult) bool {
		return a.Metrics.F1 > b.Metrics.F1
	}), true
}
