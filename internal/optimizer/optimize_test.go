package optimizer

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoda/bifrost/internal/oracle"
	"github.com/mkoda/bifrost/internal/types"
)

// fakeOracle is a scripted oracle client for search tests.
type fakeOracle struct {
	mu           sync.Mutex
	compareCalls int

	chart        types.ChartResult
	chartOutcome oracle.Outcome
	meta         types.SkillMetaResult
	compareFn    func(req oracle.CompareRequest) (*types.CompareResult, oracle.Outcome)
}

func (f *fakeOracle) Compare(_ context.Context, req oracle.CompareRequest) (*types.CompareResult, oracle.Outcome) {
	f.mu.Lock()
	f.compareCalls++
	fn := f.compareFn
	f.mu.Unlock()
	if fn == nil {
		return &types.CompareResult{
			Samples: []float64{-1, -1, -1},
			Metrics: types.RaceMetrics{Survival: 0.9, Spurt: 0.9, FinalLeg: 0.9},
		}, oracle.OutcomeSucceeded
	}
	return fn(req)
}

func (f *fakeOracle) Chart(_ context.Context, _ oracle.ChartRequest) (types.ChartResult, oracle.Outcome) {
	if f.chart == nil {
		return types.ChartResult{}, f.chartOutcome
	}
	return f.chart, oracle.OutcomeSucceeded
}

func (f *fakeOracle) SkillMeta(_ context.Context, _ []string) (types.SkillMetaResult, oracle.Outcome) {
	if f.meta == nil {
		return types.SkillMetaResult{}, oracle.OutcomeSucceeded
	}
	return f.meta, oracle.OutcomeSucceeded
}

func (f *fakeOracle) Supersede() uint64 { return 0 }

func (f *fakeOracle) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.compareCalls
}

func intp(v int) *int { return &v }

func testCourse() *types.Course {
	return &types.Course{ID: "c1", DistanceMeters: 1600, Ground: types.GroundTurf}
}

func testSnapshot(budget int, skills ...types.AvailableSkill) *types.Snapshot {
	return &types.Snapshot{
		Stats:           types.Stats{SkillPoints: budget, Energy: 80, Motivation: 4},
		RunningStyle:    "Pace",
		AvailableSkills: skills,
	}
}

func TestOptimize_NilCourseFails(t *testing.T) {
	fake := &fakeOracle{}
	sess := NewSession(testSnapshot(100), nil, types.RaceConditions{}, types.DefaultTargets())

	_, err := New(fake).Optimize(context.Background(), sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course metadata")
}

func TestOptimize_EmptySkillListSkipsOracle(t *testing.T) {
	fake := &fakeOracle{}
	sess := NewSession(testSnapshot(100), testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, result.Builds)
	assert.Contains(t, result.Status, "skill list empty")
	assert.Zero(t, fake.calls())
}

func TestOptimize_BuildsStayWithinBudget(t *testing.T) {
	fake := &fakeOracle{
		chart: types.ChartResult{
			"a": {Mean: 0.5, SampleCount: 300},
			"b": {Mean: 0.3, SampleCount: 300},
			"c": {Mean: 0.1, SampleCount: 300},
		},
	}
	snap := testSnapshot(150,
		types.AvailableSkill{ID: "a", Name: "A", BaseCost: intp(100), Category: intp(1)},
		types.AvailableSkill{ID: "b", Name: "B", BaseCost: intp(80), Category: intp(1)},
		types.AvailableSkill{ID: "c", Name: "C", BaseCost: intp(60), Category: intp(1)},
	)
	sess := NewSession(snap, testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, result.Builds)

	for i, build := range result.Builds {
		assert.LessOrEqual(t, build.Cost, sess.Budget)
		assert.Equal(t, sess.Costs.SelectionCost(build.SkillIDs), build.Cost)
		assert.Equalf(t, "Build "+string(rune('1'+i)), build.Name, "ordinal name at %d", i)
	}
	assert.LessOrEqual(t, len(result.Builds), 5)
}

func TestOptimize_RanksByAdvantage(t *testing.T) {
	fake := &fakeOracle{
		chart: types.ChartResult{"a": {Mean: 0.5, SampleCount: 300}},
	}
	fake.compareFn = func(req oracle.CompareRequest) (*types.CompareResult, oracle.Outcome) {
		return &types.CompareResult{
			Samples: []float64{-2, -2},
			Metrics: types.RaceMetrics{Survival: 0.9, Spurt: 0.9, FinalLeg: 0.9},
		}, oracle.OutcomeSucceeded
	}
	snap := testSnapshot(100,
		types.AvailableSkill{ID: "a", Name: "A", BaseCost: intp(50), Category: intp(1)},
	)
	sess := NewSession(snap, testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, result.Builds)
	assert.InDelta(t, 2.0, result.Builds[0].Mean, 1e-9)
	assert.Contains(t, result.Builds[0].SkillIDs, "a")
}

func TestOptimize_DenylistedAndFreeSkillsExcluded(t *testing.T) {
	fake := &fakeOracle{
		chart: types.ChartResult{
			"200271": {Mean: 0.9, SampleCount: 300},
			"free":   {Mean: 0.9, SampleCount: 300},
			"ok":     {Mean: 0.2, SampleCount: 300},
		},
	}
	snap := testSnapshot(300,
		types.AvailableSkill{ID: "200271", Name: "Degenerate", BaseCost: intp(50), Category: intp(1)},
		types.AvailableSkill{ID: "free", Name: "Free", BaseCost: intp(0), Category: intp(1)},
		types.AvailableSkill{ID: "ok", Name: "OK", BaseCost: intp(50), Category: intp(1)},
	)
	sess := NewSession(snap, testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, result.Builds)
	for _, build := range result.Builds {
		assert.NotContains(t, build.SkillIDs, "200271")
		assert.NotContains(t, build.SkillIDs, "free")
	}
}

func TestOptimize_NegativeChartSkillsExcluded(t *testing.T) {
	fake := &fakeOracle{
		chart: types.ChartResult{
			"good": {Mean: 0.2, SampleCount: 300},
			"bad":  {Mean: -0.4, SampleCount: 300},
		},
	}
	snap := testSnapshot(300,
		types.AvailableSkill{ID: "good", Name: "Good", BaseCost: intp(50), Category: intp(1)},
		types.AvailableSkill{ID: "bad", Name: "Bad", BaseCost: intp(50), Category: intp(1)},
	)
	sess := NewSession(snap, testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, result.Builds)
	for _, build := range result.Builds {
		assert.NotContains(t, build.SkillIDs, "bad")
	}
}

func TestOptimize_CompareFallbackRanksCandidates(t *testing.T) {
	// Chart yields nothing, so ranking falls back to per-skill compares over
	// a bounded candidate prefix at the reduced sample target.
	var probeMu sync.Mutex
	probes := map[string]int{}
	fake := &fakeOracle{}
	fake.compareFn = func(req oracle.CompareRequest) (*types.CompareResult, oracle.Outcome) {
		if len(req.Trial.SkillIDs) == 1 {
			id := req.Trial.SkillIDs[0]
			probeMu.Lock()
			probes[id] = req.SampleTarget
			probeMu.Unlock()
			samples := []float64{1}
			if id == "s00" || id == "s01" {
				samples = []float64{-1}
			}
			return &types.CompareResult{
				Samples: samples,
				Metrics: types.RaceMetrics{Survival: 0.9, Spurt: 0.9, FinalLeg: 0.9},
			}, oracle.OutcomeSucceeded
		}
		return &types.CompareResult{
			Samples: []float64{-1, -1},
			Metrics: types.RaceMetrics{Survival: 0.9, Spurt: 0.9, FinalLeg: 0.9},
		}, oracle.OutcomeSucceeded
	}

	var skills []types.AvailableSkill
	for i := 0; i < 35; i++ {
		id := fmt.Sprintf("s%02d", i)
		skills = append(skills, types.AvailableSkill{ID: id, Name: id, BaseCost: intp(40), Category: intp(1)})
	}
	sess := NewSession(testSnapshot(100, skills...), testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)

	// Only the first 30 candidates are probed, each at the reduced target.
	require.Len(t, probes, 30)
	assert.NotContains(t, probes, "s30")
	assert.NotContains(t, probes, "s34")
	for id, target := range probes {
		assert.Equalf(t, 150, target, "sample target for %s", id)
	}

	// The two positively scripted skills make the build; the rest do not.
	require.NotEmpty(t, result.Builds)
	assert.ElementsMatch(t, []string{"s00", "s01"}, result.Builds[0].SkillIDs)
}

func TestOptimize_RecoveryOnlyStatusWhenNoPositiveSkills(t *testing.T) {
	fake := &fakeOracle{
		meta: types.SkillMetaResult{"heal": {IsRecovery: true}},
		compareFn: func(_ oracle.CompareRequest) (*types.CompareResult, oracle.Outcome) {
			return nil, oracle.OutcomeTimedOut
		},
	}
	snap := testSnapshot(100,
		types.AvailableSkill{ID: "heal", Name: "Heal", BaseCost: intp(40), Category: intp(1)},
	)
	sess := NewSession(snap, testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	assert.Contains(t, result.Status, "recovery-only builds")
	assert.Empty(t, result.Builds)
}

func TestOptimize_ThresholdFallbackStillProducesBuilds(t *testing.T) {
	fake := &fakeOracle{
		chart: types.ChartResult{"a": {Mean: 0.5, SampleCount: 300}},
		compareFn: func(_ oracle.CompareRequest) (*types.CompareResult, oracle.Outcome) {
			// Well below default targets; the fallback path must keep the
			// best combinations anyway.
			return &types.CompareResult{
				Samples: []float64{-1},
				Metrics: types.RaceMetrics{Survival: 0.1, Spurt: 0.1, FinalLeg: 0},
			}, oracle.OutcomeSucceeded
		},
	}
	snap := testSnapshot(100,
		types.AvailableSkill{ID: "a", Name: "A", BaseCost: intp(50), Category: intp(1)},
	)
	sess := NewSession(snap, testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Builds)
}

func TestOptimize_GoldUpgradeNormalizedInBuild(t *testing.T) {
	fake := &fakeOracle{
		chart: types.ChartResult{
			"w1": {Mean: 0.2, SampleCount: 300},
			"g1": {Mean: 0.5, SampleCount: 300},
		},
	}
	snap := testSnapshot(200,
		types.AvailableSkill{ID: "w1", Name: "White", BaseCost: intp(60), GroupID: intp(9), Rarity: intp(1), Category: intp(1)},
		types.AvailableSkill{ID: "g1", Name: "Gold", BaseCost: intp(100), GroupID: intp(9), Rarity: intp(2), Category: intp(1)},
	)
	sess := NewSession(snap, testCourse(), types.RaceConditions{}, types.DefaultTargets())

	result, err := New(fake).Optimize(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, result.Builds)
	for _, build := range result.Builds {
		if assert.Contains(t, build.SkillIDs, "g1") {
			assert.NotContains(t, build.SkillIDs, "w1")
		}
	}
}

func TestBuildCompetitor_AptitudesAndStrategy(t *testing.T) {
	snap := testSnapshot(0)
	snap.Stats.Speed = 900
	snap.Stats.Wit = 400
	snap.OutfitID = "102801"
	snap.RunningStyle = "Front"
	snap.Aptitudes = types.Aptitudes{
		Distance: map[string]string{"Mile": "B"},
		Surface:  map[string]string{"Turf": "A"},
		Style:    map[string]string{"Front": "S"},
	}
	snap.OwnedSkillIDs = []string{"base1"}

	comp := BuildCompetitor(snap, testCourse())
	assert.Equal(t, types.StrategyFront, comp.Strategy)
	assert.Equal(t, "B", comp.DistanceAptitude)
	assert.Equal(t, "A", comp.SurfaceAptitude)
	assert.Equal(t, "S", comp.StrategyAptitude)
	assert.Equal(t, 900, comp.Speed)
	assert.Equal(t, 400, comp.Wisdom)
	assert.Equal(t, []string{"base1"}, comp.SkillIDs)
}

func TestBuildCompetitor_MissingAptitudeDefaultsToA(t *testing.T) {
	snap := testSnapshot(0)
	comp := BuildCompetitor(snap, nil)
	assert.Equal(t, "A", comp.DistanceAptitude)
	assert.Equal(t, types.StrategyPace, comp.Strategy)
}
