package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_RatesSumToOne(t *testing.T) {
	summary := Summarize([]float64{-1.2, -0.4, 0.8, 0})
	require.NotNil(t, summary)

	assert.InDelta(t, 0.5, summary.WithSkillsRate, 1e-9)
	assert.InDelta(t, 0.25, summary.BaseRate, 1e-9)
	assert.InDelta(t, 0.25, summary.DrawRate, 1e-9)
	assert.InDelta(t, 1.0, summary.WithSkillsRate+summary.BaseRate+summary.DrawRate, 1e-9)
}

func TestSummarize_EmptyIsNil(t *testing.T) {
	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize([]float64{}))
}

func TestMean(t *testing.T) {
	assert.InDelta(t, -3.0, Mean([]float64{-2, -4}), 1e-9)
	assert.Zero(t, Mean(nil))
}

func TestAdvantage_NegativeSamplesFavorTrial(t *testing.T) {
	// Trial wins reduce the signed delta, so the advantage signal rises.
	assert.InDelta(t, 3.0, Advantage([]float64{-2, -4}), 1e-9)
	assert.InDelta(t, -1.0, Advantage([]float64{1, 1}), 1e-9)
}
