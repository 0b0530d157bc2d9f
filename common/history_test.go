package common

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "runs", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistory_RecordAndList(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, h.Record(ctx, Run{ID: "a", Company: "Acme", Status: RunCompleted, StartedAt: base, Slides: 6}))
	require.NoError(t, h.Record(ctx, Run{ID: "b", Company: "Globex", Status: RunFailed, Error: "no clips", StartedAt: base.Add(time.Hour)}))

	runs, err := h.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, RunFailed, runs[0].Status)
	assert.Equal(t, "no clips", runs[0].Error)
	assert.Equal(t, "a", runs[1].ID)
	assert.Equal(t, 6, runs[1].Slides)
	assert.True(t, runs[1].StartedAt.Equal(base))
}

func TestHistory_RecordReplaces(t *testing.T) {
	h := openTestHistory(t)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, Run{ID: "a", Company: "Acme", Status: RunFailed, StartedAt: time.Now()}))
	require.NoError(t, h.Record(ctx, Run{ID: "a", Company: "Acme", Status: RunCompleted, StartedAt: time.Now()}))

	runs, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunCompleted, runs[0].Status)
}

func TestHistory_RequiresID(t *testing.T) {
	h := openTestHistory(t)
	assert.Error(t, h.Record(context.Background(), Run{Company: "Acme"}))
}
