package bias

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelCachePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "labels.db")

	cache, err := OpenLabelCache(ctx, path, "model-a")
	require.NoError(t, err)
	_, ok, err := cache.Get(ctx, "hello")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "hello", Prediction{Label: "Left", Score: 0.8}))
	require.NoError(t, cache.Put(ctx, "hello", Prediction{Label: "Right", Score: 0.7}))
	n, err := cache.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, cache.Close())

	reopened, err := OpenLabelCache(ctx, path, "model-a")
	require.NoError(t, err)
	defer reopened.Close()
	label, ok, err := reopened.Get(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Right", label)

	other, err := OpenLabelCache(ctx, path, "model-b")
	require.NoError(t, err)
	defer other.Close()
	_, ok, err = other.Get(ctx, "hello")
	require.NoError(t, err)
	assert.False(t, ok, "keys are scoped by model id")
}

func TestLabelCacheRecordsRuns(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenLabelCache(ctx, filepath.Join(t.TempDir(), "labels.db"), "m")
	require.NoError(t, err)
	defer cache.Close()

	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	older := Run{ID: uuid.NewString(), Command: "classify", StartedAt: start, FinishedAt: start.Add(time.Minute), Rows: 10, Failed: 1}
	newer := Run{ID: uuid.NewString(), Command: "classify", StartedAt: start.Add(time.Hour), FinishedAt: start.Add(2 * time.Hour), Rows: 3}
	require.NoError(t, cache.RecordRun(ctx, older))
	require.NoError(t, cache.RecordRun(ctx, newer))

	runs, err := cache.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, 10, runs[1].Rows)
	assert.Equal(t, 1, runs[1].Failed)
	assert.True(t, runs[1].StartedAt.Equal(start))
}
