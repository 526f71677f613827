package types

// SkillRarity distinguishes the two tiers of an upgrade group.
type SkillRarity int

// Skill tiers. Gold supersedes white within the same group.
const (
	RarityWhite SkillRarity = 1
	RarityGold  SkillRarity = 2
)

// Skill categories as reported by the game data.
const (
	CategoryGreen  = 0
	CategoryUnique = 5
)

// AvailableSkill is a raw unlock-eligible skill record from the snapshot.
// Pointer fields are absent in the source data when nil.
type AvailableSkill struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NeedRank int    `json:"need_rank"`
	BaseCost *int   `json:"need_skill_point,omitempty"`
	Unlocked bool   `json:"unlocked"`
	Category *int   `json:"skill_category,omitempty"`
	GroupID  *int   `json:"skill_group_id,omitempty"`
	Rarity   *int   `json:"skill_rarity,omitempty"`
}

// SkillHint is a raw discount-hint skill record from the snapshot.
type SkillHint struct {
	ID           string `json:"skill_id"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	BaseCost     *int   `json:"need_skill_point,omitempty"`
	DiscountCost *int   `json:"discounted_skill_point,omitempty"`
	Category     *int   `json:"skill_category,omitempty"`
	GroupID      *int   `json:"skill_group_id,omitempty"`
	Rarity       *int   `json:"skill_rarity,omitempty"`
}

// SkillCandidate is a resolved skill in the purchase universe, merged from
// the available and hint sources.
type SkillCandidate struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	NeedRank  int         `json:"need_rank"`
	BaseCost  *int        `json:"base_cost,omitempty"`
	HintCost  *int        `json:"hint_cost,omitempty"`
	HintLevel int         `json:"hint_level"`
	Category  int         `json:"category"`
	GroupID   int         `json:"group_id"` // zero when ungrouped
	Rarity    SkillRarity `json:"rarity"`
	Unlocked  bool        `json:"unlocked"`
	// IsRecovery is filled from oracle skill metadata; skills absent from
	// that metadata are conservatively treated as non-recovery.
	IsRecovery bool `json:"is_recovery"`
}

// Cost returns the candidate's own price, hint discount taking precedence
// over base cost. The second return is false when neither source carries one.
func (c *SkillCandidate) Cost() (int, bool) {
	if c.HintCost != nil {
		return *c.HintCost, true
	}
	if c.BaseCost != nil {
		return *c.BaseCost, true
	}
	return 0, false
}

// IsUnique reports whether the skill is a character-unique skill.
func (c *SkillCandidate) IsUnique() bool { return c.Category == CategoryUnique }

// IsGreen reports whether the skill is a generic (green) skill.
func (c *SkillCandidate) IsGreen() bool { return c.Category == CategoryGreen }

// RaceMetrics holds oracle-reported per-build performance rates in [0,1].
type RaceMetrics struct {
	Survival float64 `json:"survival"`
	Spurt    float64 `json:"spurt"`
	FinalLeg float64 `json:"finalLeg"`
}

// Targets are the optimizer's threshold percentages (0-100) compared against
// the corresponding oracle rates scaled by 100.
type Targets struct {
	Survival float64 `json:"survival" validate:"min=0,max=100"`
	Spurt    float64 `json:"spurt" validate:"min=0,max=100"`
	FinalLeg float64 `json:"final_leg" validate:"min=0,max=100"`
}

// DefaultTargets returns the optimizer's default threshold set.
func DefaultTargets() Targets {
	return Targets{Survival: 50, Spurt: 50, FinalLeg: 0}
}

// Build is one candidate skill loadout produced by the optimizer, held only
// for the current session and replaced wholesale on each run.
type Build struct {
	Name             string      `json:"name"`
	SkillIDs         []string    `json:"skills"`
	Cost             int         `json:"cost"`
	Mean             float64     `json:"mean"`
	Metrics          RaceMetrics `json:"metrics"`
	RecoveryCount    int         `json:"recovery_count"`
	NonRecoveryCount int         `json:"non_recovery_count"`
}
