package optimizer

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mkoda/bifrost/internal/oracle"
	"github.com/mkoda/bifrost/internal/types"
)

// Search bounds. Recovery enumeration considers the cheapest skills only,
// keeping the combination count small enough for per-combination oracle
// evaluation within one interactive run.
const (
	maxRecoveryPool   = 10
	maxComboSize      = 3
	maxCombos         = 12
	maxBuilds         = 8
	topBuilds         = 5
	fallbackScanLimit = 30

	comboSampleTarget    = 300
	finalSampleTarget    = 500
	fallbackSampleTarget = 150

	// compareConcurrency bounds simultaneous oracle compute units. Units
	// share nothing but the request generation counter.
	compareConcurrency = 3
)

// deniedSkillIDs are known-degenerate skills excluded from ranking.
var deniedSkillIDs = map[string]bool{
	"200271": true,
	"200272": true,
}

// Optimizer runs budgeted skill-build searches against the oracle.
type Optimizer struct {
	client oracle.Client
}

// New creates an optimizer backed by the given oracle client.
func New(client oracle.Client) *Optimizer {
	return &Optimizer{client: client}
}

// Result is the outcome of one optimization run. Status is a human-readable
// condition report; it is set even when builds are returned empty.
type Result struct {
	SessionID string        `json:"session_id"`
	Builds    []types.Build `json:"builds"`
	Status    string        `json:"status,omitempty"`
}

// candidate is a priced, ranked skill during the search.
type candidate struct {
	id   string
	cost int
	mean float64
}

// combo is one recovery-skill combination under evaluation.
type combo struct {
	ids     []string
	cost    int
	metrics types.RaceMetrics
}

// Optimize searches for up to five skill loadouts maximizing the oracle's
// mean performance signal under the session's skill-point budget and target
// thresholds.
func (o *Optimizer) Optimize(ctx context.Context, sess *Session) (*Result, error) {
	if sess.Course == nil {
		return nil, &Error{Message: "course metadata required for optimization"}
	}
	result := &Result{SessionID: sess.ID.String(), Builds: []types.Build{}}

	ids := sess.Costs.PricedIDs()
	if len(ids) == 0 {
		result.Status = "no available skills to build from (skill list empty)"
		return result, nil
	}

	// A new run supersedes any in-flight requests from a previous one.
	o.client.Supersede()

	sess.progress("skillmeta", fmt.Sprintf("classifying %d skills", len(ids)))
	meta, _ := o.client.SkillMeta(ctx, ids)
	sess.Costs.ApplyMeta(meta)

	var recoveryIDs, nonRecoveryIDs []string
	for _, id := range ids {
		if meta[id].IsRecovery {
			recoveryIDs = append(recoveryIDs, id)
		} else {
			// Absent metadata conservatively counts as non-recovery.
			nonRecoveryIDs = append(nonRecoveryIDs, id)
		}
	}

	means := o.rankingSignals(ctx, sess, nonRecoveryIDs)

	none := map[string]bool{}
	var nonRecovery []candidate
	for _, id := range nonRecoveryIDs {
		if deniedSkillIDs[id] {
			continue
		}
		cost, ok := sess.Costs.EffectiveCost(id, none)
		if !ok || cost <= 0 {
			continue
		}
		mean := means[id]
		if mean <= 0 {
			continue
		}
		nonRecovery = append(nonRecovery, candidate{id: id, cost: cost, mean: mean})
	}
	sort.SliceStable(nonRecovery, func(i, j int) bool {
		return nonRecovery[i].mean > nonRecovery[j].mean
	})
	if len(nonRecovery) == 0 {
		result.Status = fmt.Sprintf("no positive chart skills found; recovery-only builds (skills: %d, recovery: %d)", len(ids), len(recoveryIDs))
	}

	combos := o.evaluateRecoveryCombos(ctx, sess, recoveryIDs, none)
	selected := selectCombos(combos, sess.Targets)

	builds := o.assembleBuilds(ctx, sess, selected, nonRecovery, meta)
	sort.SliceStable(builds, func(i, j int) bool { return builds[i].Mean > builds[j].Mean })
	if len(builds) > topBuilds {
		builds = builds[:topBuilds]
	}
	for i := range builds {
		builds[i].Name = fmt.Sprintf("Build %d", i+1)
	}
	result.Builds = builds
	if len(builds) == 0 && result.Status == "" {
		result.Status = "no viable builds found"
	}
	return result, nil
}

// rankingSignals obtains a higher-is-better mean effect per non-recovery
// skill: the chart request when it yields anything, otherwise individual
// compare evaluations at a reduced sample target for a bounded prefix of
// candidates.
func (o *Optimizer) rankingSignals(ctx context.Context, sess *Session, nonRecoveryIDs []string) map[string]float64 {
	means := make(map[string]float64)
	if len(nonRecoveryIDs) == 0 {
		return means
	}

	sess.progress("chart", fmt.Sprintf("charting %d non-recovery skills", len(nonRecoveryIDs)))
	chart, _ := o.client.Chart(ctx, oracle.ChartRequest{
		Course:   sess.Course,
		Race:     sess.Race,
		Options:  sess.Options,
		Uma:      sess.Base,
		SkillIDs: nonRecoveryIDs,
	})
	for id, entry := range chart {
		means[id] = entry.Mean
	}
	if len(means) > 0 {
		return means
	}

	sess.progress("chart-fallback", "chart data empty; running per-skill compare fallback")
	scan := nonRecoveryIDs
	if len(scan) > fallbackScanLimit {
		scan = scan[:fallbackScanLimit]
	}
	signals := make([]float64, len(scan))
	found := make([]bool, len(scan))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)
	for i, id := range scan {
		g.Go(func() error {
			res, outcome := o.client.Compare(gctx, o.compareRequest(sess, []string{id}, fallbackSampleTarget))
			if outcome != oracle.OutcomeSucceeded || res == nil {
				return nil
			}
			signals[i] = oracle.Advantage(res.Samples)
			found[i] = true
			return nil
		})
	}
	// Workers only report "no signal", never errors.
	_ = g.Wait()
	for i, id := range scan {
		if found[i] {
			means[id] = signals[i]
		}
	}
	return means
}

// compareRequest builds a compare of the baseline loadout extended with the
// added skills against the unmodified baseline.
func (o *Optimizer) compareRequest(sess *Session, added []string, sampleTarget int) oracle.CompareRequest {
	trial := append(append([]string(nil), sess.Base.SkillIDs...), added...)
	return oracle.CompareRequest{
		Course:       sess.Course,
		Race:         sess.Race,
		Options:      sess.Options,
		Trial:        sess.Base.WithSkills(sess.Costs.NormalizeSelection(trial)),
		Base:         sess.Base,
		SampleTarget: sampleTarget,
	}
}

// evaluateRecoveryCombos enumerates subsets (size <= 3) of the ten cheapest
// recovery skills, keeps those within budget, and evaluates each against the
// baseline.
func (o *Optimizer) evaluateRecoveryCombos(ctx context.Context, sess *Session, recoveryIDs []string, none map[string]bool) []combo {
	var pool []candidate
	for _, id := range recoveryIDs {
		cost, ok := sess.Costs.EffectiveCost(id, none)
		if !ok || cost <= 0 {
			continue
		}
		pool = append(pool, candidate{id: id, cost: cost})
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].cost < pool[j].cost })
	if len(pool) > maxRecoveryPool {
		pool = pool[:maxRecoveryPool]
	}

	// Grow the subset list in generation order; the empty combination stays
	// eligible so pure non-recovery builds remain in the running.
	subsets := [][]candidate{{}}
	for _, item := range pool {
		snapshot := subsets
		for _, existing := range snapshot {
			if len(existing) >= maxComboSize {
				continue
			}
			grown := append(append([]candidate(nil), existing...), item)
			subsets = append(subsets, grown)
		}
	}

	var combos []combo
	for _, subset := range subsets {
		c := combo{}
		for _, item := range subset {
			c.ids = append(c.ids, item.id)
			c.cost += item.cost
		}
		if c.cost > sess.Budget {
			continue
		}
		combos = append(combos, c)
		if len(combos) >= maxCombos {
			break
		}
	}

	sess.progress("recovery", fmt.Sprintf("evaluating %d recovery combinations", len(combos)))
	evaluated := make([]*combo, len(combos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)
	for i := range combos {
		g.Go(func() error {
			c := combos[i]
			res, outcome := o.client.Compare(gctx, o.compareRequest(sess, c.ids, comboSampleTarget))
			if outcome != oracle.OutcomeSucceeded || res == nil {
				return nil
			}
			c.metrics = res.Metrics
			evaluated[i] = &c
			return nil
		})
	}
	_ = g.Wait()

	var out []combo
	for _, c := range evaluated {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// selectCombos keeps the combinations meeting all three target thresholds;
// when none qualify it falls back to the three best by survival rate, ties
// broken by spurt rate.
func selectCombos(combos []combo, targets types.Targets) []combo {
	var qualified []combo
	for _, c := range combos {
		if c.metrics.Survival*100 >= targets.Survival &&
			c.metrics.Spurt*100 >= targets.Spurt &&
			c.metrics.FinalLeg*100 >= targets.FinalLeg {
			qualified = append(qualified, c)
		}
	}
	if len(qualified) > 0 {
		return qualified
	}

	fallback := append([]combo(nil), combos...)
	sort.SliceStable(fallback, func(i, j int) bool {
		if fallback[i].metrics.Survival != fallback[j].metrics.Survival {
			return fallback[i].metrics.Survival > fallback[j].metrics.Survival
		}
		return fallback[i].metrics.Spurt > fallback[j].metrics.Spurt
	})
	if len(fallback) > 3 {
		fallback = fallback[:3]
	}
	return fallback
}

// assembleBuilds greedily extends each selected recovery combination with
// ranked non-recovery candidates, normalizes and re-costs the set, and runs
// the final higher-sample compare.
func (o *Optimizer) assembleBuilds(ctx context.Context, sess *Session, selected []combo, nonRecovery []candidate, meta types.SkillMetaResult) []types.Build {
	baseSkills := make(map[string]bool, len(sess.Base.SkillIDs))
	for _, id := range sess.Base.SkillIDs {
		baseSkills[id] = true
	}

	var builds []types.Build
	for _, c := range selected {
		remaining := sess.Budget - c.cost
		skills := append([]string(nil), c.ids...)
		for _, cand := range nonRecovery {
			if cand.cost <= remaining {
				skills = append(skills, cand.id)
				remaining -= cand.cost
			}
		}

		normalized := sess.Costs.NormalizeSelection(skills)
		buildCost := sess.Costs.SelectionCost(normalized)
		if buildCost > sess.Budget {
			continue
		}

		sess.progress("build", fmt.Sprintf("evaluating build with %d skills", len(normalized)))
		res, outcome := o.client.Compare(ctx, o.compareRequest(sess, normalized, finalSampleTarget))
		if outcome != oracle.OutcomeSucceeded || res == nil {
			continue
		}

		recoveryCount, nonRecoveryCount := 0, 0
		for _, id := range normalized {
			if baseSkills[id] {
				continue
			}
			if meta[id].IsRecovery {
				recoveryCount++
			} else {
				nonRecoveryCount++
			}
		}

		builds = append(builds, types.Build{
			Name:             fmt.Sprintf("Build %d", len(builds)+1),
			SkillIDs:         normalized,
			Cost:             buildCost,
			Mean:             oracle.Advantage(res.Samples),
			Metrics:          res.Metrics,
			RecoveryCount:    recoveryCount,
			NonRecoveryCount: nonRecoveryCount,
		})
		if len(builds) >= maxBuilds {
			break
		}
	}
	return builds
}
