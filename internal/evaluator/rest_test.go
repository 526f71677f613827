package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkoda/bifrost/internal/types"
)

func TestDecide_DisabledDefersToSuggestion(t *testing.T) {
	cfg := types.DefaultCalculator()
	cfg.Enabled = false
	snap := &types.Snapshot{SuggestedStat: types.StatGuts}

	decision := Decide(nil, snap, cfg)
	assert.True(t, decision.Deferred)
	assert.False(t, decision.Rest)
	assert.Equal(t, types.StatGuts, decision.Best)
}

func TestDecide_RestOnLowEnergyAndMotivation(t *testing.T) {
	snap := &types.Snapshot{Stats: types.Stats{Energy: 20, Motivation: 3}}
	evals := map[types.Stat]Evaluation{
		types.StatSpeed: {Stat: types.StatSpeed, Score: 25},
	}

	decision := Decide(evals, snap, types.DefaultCalculator())
	assert.True(t, decision.Rest)
	// Energy deficit 10 doubled plus motivation penalty 6 at 1.5x.
	assert.InDelta(t, 29.0, decision.RestScore, 1e-9)
	assert.InDelta(t, 25.0, decision.BestScore, 1e-9)
}

func TestDecide_TrainsWhenBestOutscoresRest(t *testing.T) {
	snap := &types.Snapshot{Stats: types.Stats{Energy: 100, Motivation: 4}}
	evals := map[types.Stat]Evaluation{
		types.StatSpeed:   {Stat: types.StatSpeed, Score: 12},
		types.StatStamina: {Stat: types.StatStamina, Score: 30},
	}

	decision := Decide(evals, snap, types.DefaultCalculator())
	assert.False(t, decision.Rest)
	assert.Equal(t, types.StatStamina, decision.Best)
	assert.Zero(t, decision.RestScore)
}

func TestDecide_TieFavorsRest(t *testing.T) {
	// Energy deficit 10 doubled gives rest score 20, equal to the best.
	snap := &types.Snapshot{Stats: types.Stats{Energy: 20, Motivation: 4}}
	evals := map[types.Stat]Evaluation{
		types.StatSpeed: {Stat: types.StatSpeed, Score: 20},
	}

	decision := Decide(evals, snap, types.DefaultCalculator())
	assert.True(t, decision.Rest)
}

func TestDecide_NoAvailableCommandsRests(t *testing.T) {
	snap := &types.Snapshot{Stats: types.Stats{Energy: 100, Motivation: 4}}

	decision := Decide(map[types.Stat]Evaluation{}, snap, types.DefaultCalculator())
	assert.True(t, decision.Rest)
	assert.Zero(t, decision.RestScore)
}

func TestDecide_ZeroRestScoreBeatsNegativeBest(t *testing.T) {
	snap := &types.Snapshot{Stats: types.Stats{Energy: 100, Motivation: 4}}
	evals := map[types.Stat]Evaluation{
		types.StatWit: {Stat: types.StatWit, Score: -5},
	}

	decision := Decide(evals, snap, types.DefaultCalculator())
	assert.True(t, decision.Rest)
	assert.Equal(t, types.Stat(""), decision.Best)
}
