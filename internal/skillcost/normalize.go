package skillcost

import "sort"

// NormalizeSelection resolves upgrade-group conflicts in a requested skill
// set: for every group only the highest-rarity member present is retained
// and lower-rarity members are dropped, even if explicitly included. The
// result is sorted and the function is idempotent.
func (m *Model) NormalizeSelection(ids []string) []string {
	final := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			final[id] = true
		}
	}

	type groupTop struct {
		id     string
		rarity int
	}
	top := make(map[int]groupTop)
	for id := range final {
		cand, ok := m.skills[id]
		if !ok || cand.GroupID == 0 {
			continue
		}
		if best, seen := top[cand.GroupID]; !seen || int(cand.Rarity) > best.rarity {
			top[cand.GroupID] = groupTop{id: id, rarity: int(cand.Rarity)}
		}
	}
	for id := range final {
		cand, ok := m.skills[id]
		if !ok || cand.GroupID == 0 {
			continue
		}
		if best := top[cand.GroupID]; id != best.id && int(cand.Rarity) < best.rarity {
			delete(final, id)
		}
	}

	out := make([]string, 0, len(final))
	for id := range final {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
