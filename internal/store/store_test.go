package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoda/bifrost/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestSettings_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	loaded, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	doc := json.RawMessage(`{"calculator":{"enabled":true}}`)
	require.NoError(t, s.SaveSettings(ctx, doc))

	loaded, err = s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(loaded))
}

func TestSettings_SaveReplacesPrevious(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSettings(ctx, json.RawMessage(`{"v":1}`)))
	require.NoError(t, s.SaveSettings(ctx, json.RawMessage(`{"v":2}`)))

	loaded, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(loaded))
}

func TestRuns_InsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{
		ID:        "run-1",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CourseID:  "10606",
		Budget:    450,
		Status:    "",
		Builds: []types.Build{
			{
				Name:             "Build 1",
				SkillIDs:         []string{"200331", "201081"},
				Cost:             320,
				Mean:             0.42,
				Metrics:          types.RaceMetrics{Survival: 0.92, Spurt: 0.71, FinalLeg: 0.33},
				RecoveryCount:    1,
				NonRecoveryCount: 1,
			},
			{Name: "Build 2", SkillIDs: []string{"200331"}, Cost: 120, Mean: 0.11},
		},
	}
	require.NoError(t, s.InsertRun(ctx, run))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.CourseID, got.CourseID)
	assert.Equal(t, run.Budget, got.Budget)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Builds, 2)
	assert.Equal(t, "Build 1", got.Builds[0].Name)
	assert.Equal(t, []string{"200331", "201081"}, got.Builds[0].SkillIDs)
	assert.InDelta(t, 0.92, got.Builds[0].Metrics.Survival, 1e-9)
}

func TestRuns_NewestFirstAndLimited(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.InsertRun(ctx, Run{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			CourseID:  "10606",
		}))
	}

	runs, err := s.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}
