package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaAt(runID string, writtenAt time.Time) Meta {
	return Meta{RunID: runID, Step: "planning", WrittenAt: writtenAt}
}

func TestIsResumable(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	p := Policy{TerminalStep: "done", now: func() time.Time { return now }}

	assert.True(t, p.IsResumable(metaAt("run-1", now.Add(-time.Hour))))
	assert.True(t, p.IsResumable(Meta{RunID: "run-2", Step: "research", Failed: true, WrittenAt: now}))

	// Completed runs are never offered for resume.
	assert.False(t, p.IsResumable(Meta{RunID: "run-3", Step: "done", WrittenAt: now}))

	// Default policy: resumable indefinitely.
	assert.True(t, p.IsResumable(metaAt("run-4", now.Add(-365*24*time.Hour))))

	// With a bound, old checkpoints drop out.
	bounded := Policy{TerminalStep: "done", MaxResumableAge: 48 * time.Hour, now: p.now}
	assert.True(t, bounded.IsResumable(metaAt("run-5", now.Add(-24*time.Hour))))
	assert.False(t, bounded.IsResumable(metaAt("run-6", now.Add(-72*time.Hour))))
}

func TestNeedsCleanupByAge(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	metas := []Meta{
		metaAt("fresh", now.Add(-2*24*time.Hour)),
		metaAt("stale", now.Add(-40*24*time.Hour)),
		metaAt("ancient", now.Add(-90*24*time.Hour)),
	}

	ids := NeedsCleanup(metas, 0, 30, now)
	assert.Equal(t, []string{"ancient", "stale"}, ids)
}

func TestNeedsCleanupByCount(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	metas := []Meta{
		metaAt("run-a", now.Add(-1*time.Hour)),
		metaAt("run-b", now.Add(-2*time.Hour)),
		metaAt("run-c", now.Add(-3*time.Hour)),
		metaAt("run-d", now.Add(-4*time.Hour)),
	}

	// Oldest excess beyond max count is evicted, oldest first.
	ids := NeedsCleanup(metas, 2, -1, now)
	assert.Equal(t, []string{"run-c", "run-d"}, ids)
}

func TestNeedsCleanupUnion(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	metas := []Meta{
		metaAt("old-1", now.Add(-40*24*time.Hour)),
		metaAt("old-2", now.Add(-35*24*time.Hour)),
		metaAt("new-1", now.Add(-time.Hour)),
	}

	// old-1 and old-2 match both criteria; the union is deduplicated.
	ids := NeedsCleanup(metas, 1, 30, now)
	assert.Equal(t, []string{"old-1", "old-2"}, ids)
}

func TestNeedsCleanupTieBreak(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	same := now.Add(-10 * time.Hour)
	metas := []Meta{
		metaAt("run-z", same),
		metaAt("run-a", same),
		metaAt("run-m", same),
	}

	// Equal ages evict in ascending run-id order for determinism.
	ids := NeedsCleanup(metas, 1, -1, now)
	assert.Equal(t, []string{"run-a", "run-m"}, ids)
}

func TestCleanupByAgeIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	require.NoError(t, store.Write(Meta{RunID: "old-run", Step: "planning"}, struct{}{}))

	store.now = func() time.Time { return base.Add(45 * 24 * time.Hour) }
	require.NoError(t, store.Write(Meta{RunID: "new-run", Step: "planning"}, struct{}{}))

	report, err := CleanupByAge(store, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"old-run"}, report.Removed)
	assert.Empty(t, report.Errors)

	// Second pass with no new checkpoints removes nothing.
	report, err = CleanupByAge(store, 30)
	require.NoError(t, err)
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Errors)
}

func TestCleanupExpiresCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	path := filepath.Join(dir, "run-corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0644))
	old := time.Now().Add(-45 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	// Retention expires a corrupt checkpoint by its file age; it is not
	// pinned on disk forever.
	report, err := CleanupByAge(store, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-corrupt"}, report.Removed)
	assert.Empty(t, report.Errors)
}

func TestCleanupAll(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Write(Meta{RunID: "run-1", Step: "done"}, struct{}{}))
	require.NoError(t, store.Write(Meta{RunID: "run-2", Step: "research"}, struct{}{}))

	report, err := CleanupAll(store)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-2"}, report.Removed)

	metas, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}
