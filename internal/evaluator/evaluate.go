// Package evaluator scores the available training actions and decides
// between training and resting.
package evaluator

import (
	"github.com/mkoda/bifrost/internal/types"
)

// Per-interaction bond gain amounts. A hint interaction grants the larger
// gain; both are capped so a partner's evaluation never exceeds 100.
const (
	bondGainBase = 7
	bondGainHint = 12
)

// Saturation thresholds above which further bond gain stops counting as
// useful for scoring purposes.
const (
	usefulBondCap    = 80
	usefulBondPalCap = 60
)

// rainbowEvaluationMin is the minimum evaluation for a support partner to
// count as a rainbow on a matching command.
const rainbowEvaluationMin = 80

// palSupportIDs are the friend-type support cards with the lower bond
// saturation threshold.
var palSupportIDs = map[int]bool{
	30160: true, // Mei Satake
	30052: true, // Light Hello
	30188: true, // Ryoka
}

// friendSupportTypes are support card types excluded from rainbow counting.
var friendSupportTypes = map[int]bool{2: true, 3: true}

// commandIDsByStat maps each stat category to the command ids the game may
// report for it across scenarios.
var commandIDsByStat = map[types.Stat][]int{
	types.StatSpeed:   {101, 601, 901, 1101, 2101, 2201, 2301, 3601},
	types.StatStamina: {105, 602, 905, 1102, 2102, 2202, 2302, 3602},
	types.StatPower:   {102, 603, 902, 1103, 2103, 2203, 2303, 3603},
	types.StatGuts:    {103, 604, 903, 1104, 2104, 2204, 2304, 3604},
	types.StatWit:     {106, 605, 906, 1105, 2105, 2205, 2305, 3605},
}

// Breakdown is the explainable feature decomposition behind a score.
type Breakdown struct {
	Gains             types.StatGains `json:"gains"`
	EnergyDelta       int             `json:"energy_delta"`
	FailPercent       int             `json:"fail_percent"`
	BondGain          int             `json:"bond_gain"`
	UsefulBond        int             `json:"useful_bond"`
	Rainbows          int             `json:"rainbows"`
	Hints             int             `json:"hints"`
	MotivationPenalty float64         `json:"motivation_penalty"`
}

// Evaluation is the scored result for one training category.
type Evaluation struct {
	Stat      types.Stat `json:"stat"`
	Score     float64    `json:"score"`
	Breakdown Breakdown  `json:"breakdown"`
}

// MotivationPenalty returns the score penalty for low motivation: zero at
// neutral (4) or above, growing by 6 per step below neutral.
func MotivationPenalty(motivation int) float64 {
	if motivation <= 0 || motivation >= 4 {
		return 0
	}
	return float64(4-motivation) * 6
}

// commandMatchesStat reports whether a support card's declared affinity
// command belongs to the given stat category.
func commandMatchesStat(commandID int, stat types.Stat) bool {
	for _, id := range commandIDsByStat[stat] {
		if id == commandID {
			return true
		}
	}
	return false
}

// cappedBondGain returns the bond gain for one partner interaction, capped
// so the partner's evaluation cannot conceptually exceed 100.
func cappedBondGain(hasHint bool, evaluation int) int {
	gain := bondGainBase
	if hasHint {
		gain = bondGainHint
	}
	headroom := 100 - evaluation
	if headroom < 0 {
		headroom = 0
	}
	if gain > headroom {
		return headroom
	}
	return gain
}

// Evaluate scores one training category from the snapshot. The second return
// is false when the category has no command data this turn; that is
// "unavailable", not a zero score.
func Evaluate(snap *types.Snapshot, stat types.Stat, cfg types.CalculatorConfig) (Evaluation, bool) {
	cmd := snap.Commands[stat]
	if cmd == nil {
		return Evaluation{}, false
	}

	gains := cmd.Gains
	if snap.ScenarioID == types.ScenarioUnity {
		if bonus, ok := snap.ScenarioBonuses[cmd.ID]; ok {
			gains = gains.Add(bonus)
		}
	}

	bondGain := 0
	usefulBond := 0
	rainbows := 0
	for _, pos := range cmd.PartnerIDs {
		partner, known := snap.PartnerByPosition(pos)
		if !known || !partner.IsSupport() {
			continue
		}
		hasHint := cmd.HasHint(pos)
		gain := cappedBondGain(hasHint, partner.Evaluation)
		bondGain += gain

		isPal := palSupportIDs[partner.SupportCardID]
		saturation := usefulBondCap
		if isPal {
			saturation = usefulBondPalCap
		}
		if partner.Evaluation < saturation {
			usefulBond += gain
		}

		if isPal || friendSupportTypes[partner.SupportCardType] {
			continue
		}
		if partner.Evaluation < rainbowEvaluationMin {
			continue
		}
		if partner.CommandID > 0 && !commandMatchesStat(partner.CommandID, stat) {
			continue
		}
		rainbows++
	}

	w := cfg.Weights
	penalty := MotivationPenalty(snap.Stats.Motivation)
	score := float64(gains.Speed)*w.Speed +
		float64(gains.Stamina)*w.Stamina +
		float64(gains.Power)*w.Power +
		float64(gains.Guts)*w.Guts +
		float64(gains.Wit)*w.Wit +
		float64(gains.SkillPoints)*w.SkillPoints +
		float64(bondGain)*w.Bond +
		float64(usefulBond)*w.UsefulBond +
		float64(cmd.EnergyDelta)*w.Energy +
		float64(cmd.FailPercent)*w.Fail -
		penalty

	return Evaluation{
		Stat:  stat,
		Score: score,
		Breakdown: Breakdown{
			Gains:             gains,
			EnergyDelta:       cmd.EnergyDelta,
			FailPercent:       cmd.FailPercent,
			BondGain:          bondGain,
			UsefulBond:        usefulBond,
			Rainbows:          rainbows,
			Hints:             len(cmd.HintPartnerIDs),
			MotivationPenalty: penalty,
		},
	}, true
}

// EvaluateAll scores every available training category.
func EvaluateAll(snap *types.Snapshot, cfg types.CalculatorConfig) map[types.Stat]Evaluation {
	out := make(map[types.Stat]Evaluation, len(types.AllStats))
	for _, stat := range types.AllStats {
		if eval, ok := Evaluate(snap, stat, cfg); ok {
			out[stat] = eval
		}
	}
	return out
}
