// Package types provides type definitions for structured data shared across the bifrost core.
package types

// Stat identifies one of the five trainable stat categories.
type Stat string

// Stat categories, matching the game's five training commands.
const (
	StatSpeed   Stat = "speed"
	StatStamina Stat = "stamina"
	StatPower   Stat = "power"
	StatGuts    Stat = "guts"
	StatWit     Stat = "wit"
)

// AllStats lists the stat categories in canonical display order.
var AllStats = []Stat{StatSpeed, StatStamina, StatPower, StatGuts, StatWit}

// StatGains holds per-stat point gains for a single training command,
// including skill points, which are tracked but weighted separately.
type StatGains struct {
	Speed       int `json:"speed"`
	Stamina     int `json:"stamina"`
	Power       int `json:"power"`
	Guts        int `json:"guts"`
	Wit         int `json:"wit"`
	SkillPoints int `json:"skill_pts"`
}

// Add returns the element-wise sum of two gain sets.
func (g StatGains) Add(other StatGains) StatGains {
	return StatGains{
		Speed:       g.Speed + other.Speed,
		Stamina:     g.Stamina + other.Stamina,
		Power:       g.Power + other.Power,
		Guts:        g.Guts + other.Guts,
		Wit:         g.Wit + other.Wit,
		SkillPoints: g.SkillPoints + other.SkillPoints,
	}
}

// Total returns the summed stat gain excluding skill points.
func (g StatGains) Total() int {
	return g.Speed + g.Stamina + g.Power + g.Guts + g.Wit
}

// Command describes a single training option as reported by the game snapshot.
// A stat category with no Command entry is unavailable this turn, not zero.
type Command struct {
	ID             int       `json:"command_id"`
	Stat           Stat      `json:"stat"`
	FailPercent    int       `json:"failure_rate"`
	Gains          StatGains `json:"gains"`
	EnergyDelta    int       `json:"energy_delta"`
	Level          int       `json:"level"`
	PartnerIDs     []int     `json:"partner_ids"`
	HintPartnerIDs []int     `json:"hint_partner_ids"`
}

// HasHint reports whether the given partner offers a skill hint on this command.
func (c *Command) HasHint(partnerID int) bool {
	for _, id := range c.HintPartnerIDs {
		if id == partnerID {
			return true
		}
	}
	return false
}

// Partner is a support unit or training-partner slot. Positions 1-6 are
// support card slots; 0 and positions above 6 are other partners and do not
// take part in bond accounting.
type Partner struct {
	Position        int    `json:"position"`
	Name            string `json:"name,omitempty"`
	Evaluation      int    `json:"evaluation"`
	SupportCardID   int    `json:"support_card_id"`
	SupportCardType int    `json:"support_card_type"`
	// CommandID is the support card's declared training-affinity command,
	// zero when the card declares none.
	CommandID int `json:"support_card_command_id"`
}

// IsSupport reports whether the partner occupies a support card slot.
func (p Partner) IsSupport() bool {
	return p.Position >= 1 && p.Position <= 6
}

// Stats holds the trainee's current resource and stat values.
type Stats struct {
	Speed       int `json:"speed"`
	Stamina     int `json:"stamina"`
	Power       int `json:"power"`
	Guts        int `json:"guts"`
	Wit         int `json:"wit"`
	SkillPoints int `json:"skill_pts"`
	Energy      int `json:"energy"`
	// Motivation: 1=Awful, 2=Bad, 3=Normal, 4=Good, 5=Great.
	Motivation int `json:"motivation"`
}

// Aptitudes holds the trainee's letter-grade aptitudes keyed by category
// (distance type, surface, running style).
type Aptitudes struct {
	Distance map[string]string `json:"distance,omitempty"`
	Surface  map[string]string `json:"surface,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
}

// ScenarioUnity is the scenario identifier whose team data carries
// additive per-command bonus gains.
const ScenarioUnity = 2

// Snapshot is one periodic game-state capture consumed by the evaluator and
// the optimizer. It is replaced wholesale on every delivery.
type Snapshot struct {
	Turn       int   `json:"turn"`
	ScenarioID int   `json:"scenario_id"`
	Stats      Stats `json:"stats"`

	// Commands maps available training categories to their command data.
	Commands map[Stat]*Command `json:"commands"`
	// ScenarioBonuses holds additive per-command gains from the scenario's
	// team data set; merged in only when ScenarioID matches a known scenario.
	ScenarioBonuses map[int]StatGains `json:"scenario_bonuses,omitempty"`

	Partners []Partner `json:"partners"`

	// SuggestedStat is the externally supplied training suggestion, used
	// verbatim when the calculator is disabled.
	SuggestedStat Stat `json:"suggested_stat,omitempty"`

	OutfitID     string    `json:"outfit_id,omitempty"`
	RunningStyle string    `json:"running_style,omitempty"`
	Aptitudes    Aptitudes `json:"aptitudes"`

	OwnedSkillIDs   []string         `json:"owned_skill_ids,omitempty"`
	AvailableSkills []AvailableSkill `json:"available_skills,omitempty"`
	SkillHints      []SkillHint      `json:"skill_hints,omitempty"`
}

// PartnerByPosition returns the partner occupying the given slot.
func (s *Snapshot) PartnerByPosition(pos int) (Partner, bool) {
	for _, p := range s.Partners {
		if p.Position == pos {
			return p, true
		}
	}
	return Partner{}, false
}
