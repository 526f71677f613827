package types

import "github.com/go-playground/validator/v10"

// CalculatorWeights are the scorer's per-feature multipliers.
type CalculatorWeights struct {
	Speed       float64 `json:"speed"`
	Stamina     float64 `json:"stamina"`
	Power       float64 `json:"power"`
	Guts        float64 `json:"guts"`
	Wit         float64 `json:"wit"`
	SkillPoints float64 `json:"skill_pts"`
	Bond        float64 `json:"bond"`
	UsefulBond  float64 `json:"useful_bond"`
	Energy      float64 `json:"energy"`
	Fail        float64 `json:"fail"`
}

// CalculatorThresholds control the rest decision and display badges.
type CalculatorThresholds struct {
	FailPct       float64 `json:"fail_pct" validate:"min=0,max=100"`
	EnergyMin     float64 `json:"energy_min" validate:"min=0,max=100"`
	UsefulBondMin float64 `json:"useful_bond_min" validate:"min=0"`
}

// CalculatorConfig holds the weights and thresholds controlling the training
// scorer. It is immutable per evaluation pass and replaced wholesale on
// settings change.
type CalculatorConfig struct {
	Enabled    bool                 `json:"enabled"`
	Weights    CalculatorWeights    `json:"weights"`
	Thresholds CalculatorThresholds `json:"thresholds"`
}

// DefaultCalculator returns the fixed default calculator configuration.
func DefaultCalculator() CalculatorConfig {
	return CalculatorConfig{
		Enabled: true,
		Weights: CalculatorWeights{
			Speed:       1,
			Stamina:     1,
			Power:       1,
			Guts:        1,
			Wit:         1,
			SkillPoints: 0,
			Bond:        0.4,
			UsefulBond:  0.6,
			Energy:      1,
			Fail:        -2,
		},
		Thresholds: CalculatorThresholds{
			FailPct:       20,
			EnergyMin:     30,
			UsefulBondMin: 10,
		},
	}
}

// Normalize forces invariants the settings surface cannot express: the skill
// point weight is pinned to zero regardless of stored configuration.
func (c CalculatorConfig) Normalize() CalculatorConfig {
	c.Weights.SkillPoints = 0
	return c
}

// Validate checks threshold ranges using the validator.
func (c *CalculatorConfig) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Validate checks the target thresholds using the validator.
func (t *Targets) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}
