package evaluator

import (
	"github.com/mkoda/bifrost/internal/types"
)

// Rest score multipliers. Energy deficit weighs double; low motivation
// weighs one and a half times its training penalty.
const (
	restEnergyFactor     = 2.0
	restMotivationFactor = 1.5
)

// Decision is the rest-vs-train recommendation.
type Decision struct {
	// Rest recommends resting over any training action.
	Rest bool `json:"rest"`
	// Best is the highest-scoring available action; empty when none.
	Best types.Stat `json:"best,omitempty"`
	// Deferred is set when the calculator is disabled and Best carries the
	// externally supplied suggestion verbatim.
	Deferred  bool    `json:"deferred,omitempty"`
	RestScore float64 `json:"rest_score"`
	BestScore float64 `json:"best_score"`
}

// Decide consumes the per-category evaluations and the snapshot's energy and
// motivation to recommend resting or the best training action. Ties favor
// rest.
func Decide(evals map[types.Stat]Evaluation, snap *types.Snapshot, cfg types.CalculatorConfig) Decision {
	if !cfg.Enabled {
		return Decision{Deferred: true, Best: snap.SuggestedStat}
	}

	var best types.Stat
	bestScore := 0.0
	found := false
	for _, stat := range types.AllStats {
		eval, ok := evals[stat]
		if !ok {
			continue
		}
		if !found || eval.Score > bestScore {
			best = stat
			bestScore = eval.Score
			found = true
		}
	}

	restScore := 0.0
	if deficit := cfg.Thresholds.EnergyMin - float64(snap.Stats.Energy); deficit > 0 {
		restScore += deficit * restEnergyFactor
	}
	if penalty := MotivationPenalty(snap.Stats.Motivation); penalty > 0 {
		restScore += penalty * restMotivationFactor
	}

	if !found || restScore >= bestScore {
		return Decision{Rest: true, RestScore: restScore, BestScore: bestScore}
	}
	return Decision{Best: best, RestScore: restScore, BestScore: bestScore}
}
