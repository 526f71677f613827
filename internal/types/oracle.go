package types

// RequestKind tags an oracle request with its operation.
type RequestKind string

// Oracle request kinds.
const (
	KindCompare   RequestKind = "compare"
	KindChart     RequestKind = "chart"
	KindSkillMeta RequestKind = "skillmeta"
)

// Strategy is a running-style token understood by the oracle.
type Strategy string

// Running styles mapped to the oracle's internal tokens.
const (
	StrategyFront Strategy = "Nige"
	StrategyPace  Strategy = "Senkou"
	StrategyLate  Strategy = "Sasi"
	StrategyEnd   Strategy = "Oikomi"
)

// strategyTokens maps display running-style names to oracle tokens.
var strategyTokens = map[string]Strategy{
	"Front": StrategyFront,
	"Pace":  StrategyPace,
	"Late":  StrategyLate,
	"End":   StrategyEnd,
}

// StrategyFromStyle converts a display running-style name to the oracle
// token, defaulting to Pace for unknown styles.
func StrategyFromStyle(style string) Strategy {
	if s, ok := strategyTokens[style]; ok {
		return s
	}
	return StrategyPace
}

// Competitor describes one runner in an oracle simulation.
type Competitor struct {
	OutfitID         string   `json:"outfitId"`
	Speed            int      `json:"speed"`
	Stamina          int      `json:"stamina"`
	Power            int      `json:"power"`
	Guts             int      `json:"guts"`
	Wisdom           int      `json:"wisdom"`
	Strategy         Strategy `json:"strategy"`
	DistanceAptitude string   `json:"distanceAptitude"`
	SurfaceAptitude  string   `json:"surfaceAptitude"`
	StrategyAptitude string   `json:"strategyAptitude"`
	SkillIDs         []string `json:"skills"`
}

// WithSkills returns a copy of the competitor with the given skill list.
func (c Competitor) WithSkills(skillIDs []string) Competitor {
	out := c
	out.SkillIDs = append([]string(nil), skillIDs...)
	return out
}

// RaceConditions holds the race-definition parameters forwarded to the oracle.
type RaceConditions struct {
	Mood            int `json:"mood"`
	Ground          int `json:"ground"`
	GroundCondition int `json:"groundCondition"`
	Weather         int `json:"weather"`
	Season          int `json:"season"`
	Time            int `json:"time"`
	Grade           int `json:"grade"`
	Popularity      int `json:"popularity"`
	NumRunners      int `json:"numUmas"`
}

// SimulationOptions are the oracle's deterministic-replay switches.
type SimulationOptions struct {
	Seed               int  `json:"seed"`
	UsePositionKeeping bool `json:"usePosKeep"`
	UseIntegerChecks   bool `json:"useIntChecks"`
}

// CompareResult is the classified outcome of a compare request. Samples are
// signed per-race deltas: negative means competitor 1 finished faster,
// positive competitor 2, zero a draw.
type CompareResult struct {
	Samples []float64   `json:"samples"`
	Metrics RaceMetrics `json:"metrics"`
}

// ChartEntry is the aggregate effect of a single skill from a chart request.
type ChartEntry struct {
	Mean        float64 `json:"mean"`
	SampleCount int     `json:"samples"`
}

// ChartResult maps skill id to its aggregate mean effect.
type ChartResult map[string]ChartEntry

// SkillMeta is static per-skill metadata from the oracle.
type SkillMeta struct {
	IsRecovery bool `json:"isRecovery"`
}

// SkillMetaResult maps skill id to its metadata.
type SkillMetaResult map[string]SkillMeta

// RateSummary classifies a compare sample array into outcome fractions.
// The three rates sum to 1 over a non-empty sample set.
type RateSummary struct {
	WithSkillsRate float64 `json:"with_skills_rate"`
	BaseRate       float64 `json:"base_rate"`
	DrawRate       float64 `json:"draw_rate"`
}
