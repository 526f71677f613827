package optimizer

import (
	"github.com/google/uuid"

	"github.com/mkoda/bifrost/internal/skillcost"
	"github.com/mkoda/bifrost/internal/types"
)

// Session carries all state for one optimization run. It replaces ambient
// globals so runs are testable and independent; only one session is active
// at a time per client.
type Session struct {
	ID      uuid.UUID
	Budget  int
	Targets types.Targets
	Base    types.Competitor
	Course  *types.Course
	Race    types.RaceConditions
	Options types.SimulationOptions
	Costs   *skillcost.Model

	// OnProgress, when set, receives human-readable stage updates.
	OnProgress func(stage, message string)
}

// NewSession builds a session from the current snapshot and course context.
func NewSession(snap *types.Snapshot, course *types.Course, race types.RaceConditions, targets types.Targets) *Session {
	return &Session{
		ID:      uuid.New(),
		Budget:  snap.Stats.SkillPoints,
		Targets: targets,
		Base:    BuildCompetitor(snap, course),
		Course:  course,
		Race:    race,
		Costs:   skillcost.Resolve(snap.AvailableSkills, snap.SkillHints),
	}
}

func (s *Session) progress(stage, message string) {
	if s.OnProgress != nil {
		s.OnProgress(stage, message)
	}
}

// aptitude returns the letter grade for a category key, defaulting to A.
func aptitude(grades map[string]string, key string) string {
	if key != "" {
		if grade, ok := grades[key]; ok && grade != "" {
			return grade
		}
	}
	return "A"
}

// BuildCompetitor converts the snapshot's trainee into an oracle competitor
// description, resolving aptitudes against the course context.
func BuildCompetitor(snap *types.Snapshot, course *types.Course) types.Competitor {
	strategy := types.StrategyFromStyle(snap.RunningStyle)
	var distanceType, surface string
	if course != nil {
		distanceType = course.DistanceType()
		surface = course.SurfaceLabel()
	}
	return types.Competitor{
		OutfitID:         snap.OutfitID,
		Speed:            snap.Stats.Speed,
		Stamina:          snap.Stats.Stamina,
		Power:            snap.Stats.Power,
		Guts:             snap.Stats.Guts,
		Wisdom:           snap.Stats.Wit,
		Strategy:         strategy,
		DistanceAptitude: aptitude(snap.Aptitudes.Distance, distanceType),
		SurfaceAptitude:  aptitude(snap.Aptitudes.Surface, surface),
		StrategyAptitude: aptitude(snap.Aptitudes.Style, snap.RunningStyle),
		SkillIDs:         append([]string(nil), snap.OwnedSkillIDs...),
	}
}
