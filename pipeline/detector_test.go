package pipeline

import (
	"context"
	"testing"

	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeItem(path, fingerprint string) *core.Item {
	return &core.Item{
		Id:          core.IDFromContent(path),
		Path:        path,
		Source:      core.SourceModule,
		Title:       path,
		Fingerprint: fingerprint,
		Contents:    "contents of " + path,
	}
}

func saveStageRecord(t *testing.T, items interface {
	UpsertStageRecord(ctx context.Context, record *core.StageRecord) error
}, item *core.Item, stage core.Stage, status core.Status, fingerprint string) {
	t.Helper()
	err := items.UpsertStageRecord(context.Background(), &core.StageRecord{
		ItemId:      item.Id,
		Stage:       stage,
		Status:      status,
		Fingerprint: fingerprint,
	})
	require.NoError(t, err)
}

func TestFilterPending(t *testing.T) {
	items, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	fresh := makeItem("fresh.py", "abc123")
	done := makeItem("done.py", "abc123")
	changed := makeItem("changed.py", "def456")
	failed := makeItem("failed.py", "abc123")
	stranded := makeItem("stranded.py", "abc123")

	saveStageRecord(t, items, done, core.StageAnalysis, core.StatusCompleted, "abc123")
	saveStageRecord(t, items, changed, core.StageAnalysis, core.StatusCompleted, "abc123")
	saveStageRecord(t, items, failed, core.StageAnalysis, core.StatusFailed, "abc123")
	saveStageRecord(t, items, stranded, core.StageAnalysis, core.StatusProcessing, "abc123")

	detector, err := NewChangeDetector(items)
	require.NoError(t, err)

	pending, err := detector.FilterPending(ctx, []*core.Item{fresh, done, changed, failed, stranded}, core.StageAnalysis)
	require.NoError(t, err)

	paths := make([]string, len(pending))
	for i, item := range pending {
		paths[i] = item.Path
	}
	assert.ElementsMatch(t, []string{"fresh.py", "changed.py", "failed.py", "stranded.py"}, paths)
}

func TestFilterPending_UnchangedCompletedSkipped(t *testing.T) {
	items, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	item := makeItem("flopy/mbase.py", "abc123")
	saveStageRecord(t, items, item, core.StageAnalysis, core.StatusCompleted, "abc123")

	detector, err := NewChangeDetector(items)
	require.NoError(t, err)

	pending, err := detector.FilterPending(context.Background(), []*core.Item{item}, core.StageAnalysis)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCompletedSet(t *testing.T) {
	items, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	done := makeItem("done.py", "abc123")
	staleDone := makeItem("stale.py", "def456")
	notDone := makeItem("pending.py", "abc123")

	saveStageRecord(t, items, done, core.StageAnalysis, core.StatusCompleted, "abc123")
	// Completed, but for an older fingerprint
	saveStageRecord(t, items, staleDone, core.StageAnalysis, core.StatusCompleted, "abc123")
	saveStageRecord(t, items, notDone, core.StageAnalysis, core.StatusFailed, "abc123")

	detector, err := NewChangeDetector(items)
	require.NoError(t, err)

	completed, err := detector.CompletedSet(context.Background(), []*core.Item{done, staleDone, notDone}, core.StageAnalysis)
	require.NoError(t, err)

	assert.True(t, completed[done.Id])
	assert.False(t, completed[staleDone.Id])
	assert.False(t, completed[notDone.Id])
}
