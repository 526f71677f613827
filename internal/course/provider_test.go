package course

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoda/bifrost/internal/types"
)

func TestFileProvider_LookupAndIDFill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"10606": {"distance_m": 1600, "ground": 1, "track_name": "Tokyo"},
		"10810": {"distance_m": 2400, "ground": 2}
	}`), 0o644))

	p := NewFileProvider(path)
	crs, err := p.Course(context.Background(), "10606")
	require.NoError(t, err)
	require.NotNil(t, crs)
	assert.Equal(t, "10606", crs.ID)
	assert.Equal(t, 1600, crs.DistanceMeters)
	assert.Equal(t, "Mile", crs.DistanceType())
	assert.Equal(t, "Turf", crs.SurfaceLabel())

	crs, err = p.Course(context.Background(), "10810")
	require.NoError(t, err)
	require.NotNil(t, crs)
	assert.Equal(t, "Dirt", crs.SurfaceLabel())
}

func TestFileProvider_UnknownID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	p := NewFileProvider(path)
	crs, err := p.Course(context.Background(), "99999")
	require.NoError(t, err)
	assert.Nil(t, crs)

	crs, err = p.Course(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, crs)
}

func TestFileProvider_MissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope.json"))
	_, err := p.Course(context.Background(), "10606")
	assert.Error(t, err)
}

func TestHTTPProvider_FetchAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/course-set/10606", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"distance_m": 1600, "ground": 1}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL)
	for i := 0; i < 2; i++ {
		crs, err := p.Course(context.Background(), "10606")
		require.NoError(t, err)
		require.NotNil(t, crs)
		assert.Equal(t, "10606", crs.ID)
		assert.Equal(t, 1600, crs.DistanceMeters)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPProvider_FailureDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL)
	crs, err := p.Course(context.Background(), "10606")
	require.NoError(t, err)
	assert.Nil(t, crs)
}

func TestDistanceTypeBuckets(t *testing.T) {
	tests := []struct {
		meters int
		want   string
	}{
		{1200, "Sprint"},
		{1400, "Sprint"},
		{1600, "Mile"},
		{1800, "Mile"},
		{2000, "Medium"},
		{2400, "Medium"},
		{3200, "Long"},
		{0, ""},
	}
	for _, tt := range tests {
		c := types.Course{DistanceMeters: tt.meters}
		assert.Equal(t, tt.want, c.DistanceType(), "distance %d", tt.meters)
	}
}
