// Package skillcost derives cost, rarity, and upgrade-group relationships
// for every candidate skill from raw hint and unlock data.
package skillcost

import (
	"sort"

	"github.com/mkoda/bifrost/internal/types"
)

// Model is the resolved skill purchase universe.
type Model struct {
	skills map[string]*types.SkillCandidate
	groups map[int][]*types.SkillCandidate
}

// Resolve merges the unlock-eligible and discount-hint skill sources keyed
// by skill id. Fields absent in one source are filled from the other; a hint
// discount cost takes precedence over base cost when computing prices.
func Resolve(available []types.AvailableSkill, hints []types.SkillHint) *Model {
	m := &Model{
		skills: make(map[string]*types.SkillCandidate),
		groups: make(map[int][]*types.SkillCandidate),
	}

	for _, raw := range available {
		if raw.ID == "" {
			continue
		}
		cand := &types.SkillCandidate{
			ID:       raw.ID,
			Name:     raw.Name,
			NeedRank: raw.NeedRank,
			BaseCost: raw.BaseCost,
			Unlocked: raw.Unlocked,
		}
		if raw.Category != nil {
			cand.Category = *raw.Category
		}
		if raw.GroupID != nil {
			cand.GroupID = *raw.GroupID
		}
		if raw.Rarity != nil {
			cand.Rarity = types.SkillRarity(*raw.Rarity)
		}
		m.skills[raw.ID] = cand
	}

	for _, hint := range hints {
		if hint.ID == "" {
			continue
		}
		cand, ok := m.skills[hint.ID]
		if !ok {
			cand = &types.SkillCandidate{
				ID:       hint.ID,
				Name:     hint.Name,
				BaseCost: hint.BaseCost,
				Unlocked: true,
			}
			m.skills[hint.ID] = cand
		}
		if hint.Level > cand.HintLevel {
			cand.HintLevel = hint.Level
		}
		if hint.DiscountCost != nil {
			cand.HintCost = hint.DiscountCost
		}
		if cand.Name == "" {
			cand.Name = hint.Name
		}
		if cand.Category == 0 && hint.Category != nil {
			cand.Category = *hint.Category
		}
		if cand.GroupID == 0 && hint.GroupID != nil {
			cand.GroupID = *hint.GroupID
		}
		if cand.Rarity == 0 && hint.Rarity != nil {
			cand.Rarity = types.SkillRarity(*hint.Rarity)
		}
	}

	for _, cand := range m.skills {
		if cand.GroupID != 0 {
			m.groups[cand.GroupID] = append(m.groups[cand.GroupID], cand)
		}
	}
	return m
}

// Lookup returns the resolved candidate for a skill id.
func (m *Model) Lookup(id string) (*types.SkillCandidate, bool) {
	cand, ok := m.skills[id]
	return cand, ok
}

// ApplyMeta marks candidates' recovery flags from oracle skill metadata.
// Skills absent from the metadata stay non-recovery.
func (m *Model) ApplyMeta(meta types.SkillMetaResult) {
	for id, entry := range meta {
		if cand, ok := m.skills[id]; ok {
			cand.IsRecovery = entry.IsRecovery
		}
	}
}

// groupTier returns the member of the candidate's group with the given
// rarity, or nil.
func (m *Model) groupTier(cand *types.SkillCandidate, rarity types.SkillRarity) *types.SkillCandidate {
	if cand.GroupID == 0 {
		return nil
	}
	for _, member := range m.groups[cand.GroupID] {
		if member.Rarity == rarity {
			return member
		}
	}
	return nil
}

// EffectiveCost returns the price of purchasing a skill given the already
// selected set. A gold-tier skill whose white counterpart is not selected
// costs its own price plus the white prerequisite. The second return is
// false when no cost is known.
func (m *Model) EffectiveCost(id string, selected map[string]bool) (int, bool) {
	cand, ok := m.skills[id]
	if !ok {
		return 0, false
	}
	cost, ok := cand.Cost()
	if !ok {
		return 0, false
	}
	if cand.Rarity == types.RarityGold {
		if white := m.groupTier(cand, types.RarityWhite); white != nil && !selected[white.ID] {
			if whiteCost, ok := white.Cost(); ok {
				cost += whiteCost
			}
		}
	}
	return cost, true
}

// SelectionCost totals the effective cost of a skill set. Within the set a
// gold skill still pays its white prerequisite unless the white member is
// itself part of the set.
func (m *Model) SelectionCost(ids []string) int {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	total := 0
	for _, id := range ids {
		if cost, ok := m.EffectiveCost(id, selected); ok {
			total += cost
		}
	}
	return total
}

// Candidates returns every resolved skill in display/selection preference
// order: unique skills first, then generic (green) skills, then by group id,
// rarity descending, unlock rank ascending, then name.
func (m *Model) Candidates() []*types.SkillCandidate {
	out := make([]*types.SkillCandidate, 0, len(m.skills))
	for _, cand := range m.skills {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsUnique() != b.IsUnique() {
			return a.IsUnique()
		}
		if a.IsGreen() != b.IsGreen() {
			return a.IsGreen()
		}
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		if a.Rarity != b.Rarity {
			return a.Rarity > b.Rarity
		}
		if a.NeedRank != b.NeedRank {
			return a.NeedRank < b.NeedRank
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}

// PricedIDs returns the ids of candidates with a known cost, in candidate
// order.
func (m *Model) PricedIDs() []string {
	var out []string
	for _, cand := range m.Candidates() {
		if _, ok := cand.Cost(); ok {
			out = append(out, cand.ID)
		}
	}
	return out
}
