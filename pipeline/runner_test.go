package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStage is a controllable Stage for runner tests.
type fakeStage struct {
	name    core.Stage
	deps    core.Stage
	calls   int
	process func(call int, record *core.ItemRecord) error
}

func (f *fakeStage) Name() core.Stage      { return f.name }
func (f *fakeStage) DependsOn() core.Stage { return f.deps }

func (f *fakeStage) Process(ctx context.Context, record *core.ItemRecord) error {
	f.calls++
	if f.process != nil {
		return f.process(f.calls, record)
	}
	return nil
}

func fastConfig() *Config {
	return &Config{
		MaxAttempts:    3,
		BaseDelay:      time.Millisecond,
		PaceDelay:      0,
		FlushEvery:     10,
		ReportInterval: 100,
		MaxErrorChars:  500,
	}
}

func makeItems(n int) []*core.Item {
	items := make([]*core.Item, n)
	for i := range items {
		path := string(rune('a'+i)) + ".py"
		items[i] = makeItem(path, "fp-"+path)
	}
	return items
}

func TestStageRunner_AllSucceed(t *testing.T) {
	items, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	stage := &fakeStage{name: core.StageAnalysis}
	runner, err := NewStageRunner(items, checkpoints, stage, fastConfig(), io.Discard)
	require.NoError(t, err)

	candidates := makeItems(12)
	checkpoint := &core.Checkpoint{Stage: core.StageAnalysis, RunId: "run-1", TotalItems: 12}

	summary, err := runner.Run(context.Background(), candidates, checkpoint)
	require.NoError(t, err)

	assert.Equal(t, 12, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, checkpoint.CompletedItems, 12)
	assert.Equal(t, 12, stage.calls)

	// Every item has a completed stage record
	counts, err := items.CountStageStatuses(context.Background(), core.StageAnalysis)
	require.NoError(t, err)
	assert.Equal(t, 12, counts[core.StatusCompleted])
}

func TestStageRunner_TransientExhaustionMarksFailed(t *testing.T) {
	items, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	candidates := makeItems(5)
	failingId := candidates[2].Id

	perItemCalls := map[core.ID]int{}
	stage := &fakeStage{name: core.StageAnalysis}
	stage.process = func(call int, record *core.ItemRecord) error {
		perItemCalls[record.Id]++
		if record.Id == failingId {
			return ai.Transient(errors.New("service unavailable"))
		}
		return nil
	}

	runner, err := NewStageRunner(items, checkpoints, stage, fastConfig(), io.Discard)
	require.NoError(t, err)

	checkpoint := &core.Checkpoint{Stage: core.StageAnalysis, RunId: "run-1", TotalItems: 5}
	summary, err := runner.Run(context.Background(), candidates, checkpoint)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	// Transient failures consume exactly maxAttempts calls
	assert.Equal(t, 3, perItemCalls[failingId])
	assert.False(t, checkpoint.Contains(failingId))

	record, err := items.GetStageRecord(context.Background(), failingId, core.StageAnalysis)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, core.StatusFailed, record.Status)
	assert.Contains(t, record.Error, "service unavailable")
}

func TestStageRunner_ValidationFailureNotRetried(t *testing.T) {
	items, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	stage := &fakeStage{name: core.StageAnalysis}
	stage.process = func(call int, record *core.ItemRecord) error {
		return ai.Validation(errors.New("missing purpose"))
	}

	runner, err := NewStageRunner(items, checkpoints, stage, fastConfig(), io.Discard)
	require.NoError(t, err)

	checkpoint := &core.Checkpoint{Stage: core.StageAnalysis, RunId: "run-1", TotalItems: 1}
	summary, err := runner.Run(context.Background(), makeItems(1), checkpoint)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, stage.calls)
}

func TestStageRunner_ErrorMessageTruncated(t *testing.T) {
	items, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}

	stage := &fakeStage{name: core.StageAnalysis}
	stage.process = func(call int, record *core.ItemRecord) error {
		return ai.Validation(errors.New(string(long)))
	}

	runner, err := NewStageRunner(items, checkpoints, stage, fastConfig(), io.Discard)
	require.NoError(t, err)

	candidates := makeItems(1)
	checkpoint := &core.Checkpoint{Stage: core.StageAnalysis, RunId: "run-1", TotalItems: 1}
	_, err = runner.Run(context.Background(), candidates, checkpoint)
	require.NoError(t, err)

	record, err := items.GetStageRecord(context.Background(), candidates[0].Id, core.StageAnalysis)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Len(t, record.Error, 500)
}

func TestStageRunner_CheckpointSkipsCompleted(t *testing.T) {
	items, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	candidates := makeItems(10)

	// Simulate a prior run interrupted after 7 items.
	checkpoint := &core.Checkpoint{Stage: core.StageAnalysis, RunId: "run-1", TotalItems: 10}
	for _, item := range candidates[:7] {
		checkpoint.MarkCompleted(item.Id)
	}

	stage := &fakeStage{name: core.StageAnalysis}
	runner, err := NewStageRunner(items, checkpoints, stage, fastConfig(), io.Discard)
	require.NoError(t, err)

	summary, err := runner.Run(context.Background(), candidates, checkpoint)
	require.NoError(t, err)

	// Only the 3 remaining items cost an external call.
	assert.Equal(t, 3, stage.calls)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 7, summary.Skipped)
	assert.Len(t, checkpoint.CompletedItems, 10)
}

func TestStageRunner_CancellationLeavesNoProcessing(t *testing.T) {
	items, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	candidates := makeItems(5)

	stage := &fakeStage{name: core.StageAnalysis}
	stage.process = func(call int, record *core.ItemRecord) error {
		if call == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	runner, err := NewStageRunner(items, checkpoints, stage, fastConfig(), io.Discard)
	require.NoError(t, err)

	checkpoint := &core.Checkpoint{Stage: core.StageAnalysis, RunId: "run-1", TotalItems: 5}
	summary, err := runner.Run(ctx, candidates, checkpoint)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, summary.Succeeded)

	// Checkpoint was persisted on shutdown
	saved, err := checkpoints.LoadCheckpoint(context.Background(), core.StageAnalysis)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Len(t, saved.CompletedItems, 2)

	// No item is left in processing
	records, err := items.ListStageRecords(context.Background(), core.StageAnalysis)
	require.NoError(t, err)
	for _, record := range records {
		assert.NotEqual(t, core.StatusProcessing, record.Status,
			"item %d stuck in processing", record.ItemId)
	}
}

func TestStageRunner_PersistsOutput(t *testing.T) {
	items, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	stage := &fakeStage{name: core.StageAnalysis}
	stage.process = func(call int, record *core.ItemRecord) error {
		record.Analysis = &core.Analysis{
			Purpose:     "Test purpose.",
			Questions:   []string{"q"},
			KeyConcepts: []string{"c"},
		}
		return nil
	}

	runner, err := NewStageRunner(items, checkpoints, stage, fastConfig(), io.Discard)
	require.NoError(t, err)

	candidates := makeItems(1)
	checkpoint := &core.Checkpoint{Stage: core.StageAnalysis, RunId: "run-1", TotalItems: 1}
	_, err = runner.Run(context.Background(), candidates, checkpoint)
	require.NoError(t, err)

	record, err := items.GetItemRecord(context.Background(), candidates[0].Id)
	require.NoError(t, err)
	require.NotNil(t, record.Analysis)
	assert.Equal(t, "Test purpose.", record.Analysis.Purpose)
}
