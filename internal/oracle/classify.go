package oracle

import "github.com/mkoda/bifrost/internal/types"

// Summarize classifies a compare sample array into outcome fractions:
// negative entries mean the trial competitor finished faster, positive the
// baseline, zero a draw. The rates sum to 1 over a non-empty sample set.
// Returns nil for an empty array.
func Summarize(samples []float64) *types.RateSummary {
	if len(samples) == 0 {
		return nil
	}
	var trial, base, draws int
	for _, v := range samples {
		switch {
		case v < 0:
			trial++
		case v > 0:
			base++
		default:
			draws++
		}
	}
	total := float64(len(samples))
	return &types.RateSummary{
		WithSkillsRate: float64(trial) / total,
		BaseRate:       float64(base) / total,
		DrawRate:       float64(draws) / total,
	}
}

// Mean returns the arithmetic mean of a sample array, zero when empty.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}

// Advantage converts a compare sample array into a higher-is-better signal
// for the trial competitor: negative samples favor the trial, so the signal
// is the negated mean.
func Advantage(samples []float64) float64 {
	return -Mean(samples)
}
