// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/storage"
)

// StageRunner drives one stage over a candidate batch. Items are
// processed sequentially in the order given; every status change is
// persisted immediately so progress survives a crash at any point.
type StageRunner struct {
	items       storage.ItemRepository
	checkpoints storage.CheckpointRepository
	stage       Stage
	config      *Config
	progress    io.Writer
	logger      *slog.Logger
}

// NewStageRunner creates a runner for one stage.
// progress: where to write progress output (typically os.Stderr)
func NewStageRunner(items storage.ItemRepository, checkpoints storage.CheckpointRepository, stage Stage, config *Config, progress io.Writer) (*StageRunner, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if stage == nil {
		return nil, ErrStageRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	config.normalize()
	if progress == nil {
		progress = io.Discard
	}

	return &StageRunner{
		items:       items,
		checkpoints: checkpoints,
		stage:       stage,
		config:      config,
		progress:    progress,
		logger:      slog.Default().With("component", "stage-runner", "stage", string(stage.Name())),
	}, nil
}

// Run processes the candidates against the stage, updating the given
// checkpoint as items complete. Items already listed in the checkpoint
// are skipped without an external call.
//
// Per-item failures of any kind are recorded and never abort the
// batch. The returned error is non-nil only for cancellation, which
// leaves the checkpoint flushed and no item stuck in processing.
func (r *StageRunner) Run(ctx context.Context, candidates []*core.Item, checkpoint *core.Checkpoint) (core.StageSummary, error) {
	summary := core.StageSummary{Stage: r.stage.Name()}
	start := time.Now()

	tracker := NewProgressTracker(r.progress, string(r.stage.Name()), len(candidates), r.config.ReportInterval)
	tracker.Start()

	sinceFlush := 0
	for i, item := range candidates {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, r.suspend(checkpoint, err)
		}

		if checkpoint.Contains(item.Id) {
			summary.Skipped++
			tracker.Skipped()
			continue
		}

		err := r.processItem(ctx, item)
		if err != nil && errors.Is(err, ctx.Err()) && ctx.Err() != nil {
			summary.Elapsed = time.Since(start)
			return summary, r.suspend(checkpoint, err)
		}
		if err != nil {
			summary.Failed++
			tracker.Failed()
		} else {
			summary.Succeeded++
			tracker.Succeeded()
			checkpoint.MarkCompleted(item.Id)
			sinceFlush++
		}

		if sinceFlush >= r.config.FlushEvery {
			checkpoint.LastFlushedIndex = i + 1
			if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
				r.logger.Error("failed to flush checkpoint", "err", err)
			}
			sinceFlush = 0
		}

		if r.config.PaceDelay > 0 && i < len(candidates)-1 {
			timer := time.NewTimer(r.config.PaceDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				summary.Elapsed = time.Since(start)
				return summary, r.suspend(checkpoint, ctx.Err())
			case <-timer.C:
			}
		}
	}

	checkpoint.LastFlushedIndex = len(candidates)
	if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		r.logger.Error("failed to flush checkpoint", "err", err)
	}

	tracker.Finish()
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// processItem runs the stage for one item. Any returned error has
// already been recorded against the item's stage record, except for
// cancellation, which reverts the item to pending instead.
func (r *StageRunner) processItem(ctx context.Context, item *core.Item) error {
	if err := r.setStatus(ctx, item, core.StatusProcessing, ""); err != nil {
		// Can't claim the item; record nothing and count the failure.
		r.logger.Error("failed to mark item processing", "path", item.Path, "err", err)
		return err
	}

	record, err := r.loadOrCreateRecord(ctx, item)
	if err != nil {
		r.logger.Error("failed to load item record", "path", item.Path, "err", err)
		r.recordFailure(ctx, item, err)
		return err
	}

	err = RetryWithBackoff(ctx, func() error {
		return r.stage.Process(ctx, record)
	}, r.config.MaxAttempts, r.config.BaseDelay)

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// Clean shutdown: the item never finished, so it must not
			// stay claimed as processing.
			r.revertToPending(item)
			return err
		}
		r.logger.Warn("item failed", "path", item.Path, "err", err)
		r.recordFailure(ctx, item, err)
		return err
	}

	if _, err := r.items.UpsertItemRecord(ctx, record); err != nil {
		r.logger.Error("failed to persist item output", "path", item.Path, "err", err)
		r.recordFailure(ctx, item, err)
		return err
	}

	if err := r.setStatus(ctx, item, core.StatusCompleted, ""); err != nil {
		r.logger.Error("failed to mark item completed", "path", item.Path, "err", err)
		return err
	}
	return nil
}

func (r *StageRunner) loadOrCreateRecord(ctx context.Context, item *core.Item) (*core.ItemRecord, error) {
	record, err := r.items.GetItemRecord(ctx, item.Id)
	if errors.Is(err, storage.ErrNotFound) {
		return &core.ItemRecord{Item: *item}, nil
	}
	if err != nil {
		return nil, err
	}

	// Refresh identity fields; analysis output survives so the
	// embedding stage can pick it up.
	record.Item = *item
	return record, nil
}

func (r *StageRunner) setStatus(ctx context.Context, item *core.Item, status core.Status, errText string) error {
	record := &core.StageRecord{
		ItemId:      item.Id,
		Stage:       r.stage.Name(),
		Status:      status,
		Fingerprint: item.Fingerprint,
		Error:       errText,
	}
	if status == core.StatusCompleted {
		record.CompletedAt = time.Now().UTC()
	}
	return r.items.UpsertStageRecord(ctx, record)
}

func (r *StageRunner) recordFailure(ctx context.Context, item *core.Item, cause error) {
	errText := truncateError(cause, r.config.MaxErrorChars)
	if err := r.setStatus(ctx, item, core.StatusFailed, errText); err != nil {
		r.logger.Error("failed to record item failure", "path", item.Path, "err", err)
	}
}

// revertToPending clears a processing claim during shutdown. It uses a
// fresh context because the run's context is already canceled.
func (r *StageRunner) revertToPending(item *core.Item) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.setStatus(ctx, item, core.StatusPending, ""); err != nil {
		r.logger.Error("failed to revert item to pending", "path", item.Path, "err", err)
	}
}

// suspend persists the checkpoint on cancellation so a restart resumes
// where this run stopped.
func (r *StageRunner) suspend(checkpoint *core.Checkpoint, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		r.logger.Error("failed to persist checkpoint on shutdown", "err", err)
	}
	r.logger.Info("stage interrupted, checkpoint saved",
		"completed", len(checkpoint.CompletedItems))
	return fmt.Errorf("stage %s interrupted: %w", r.stage.Name(), cause)
}

func truncateError(err error, limit int) string {
	text := err.Error()
	if limit > 0 && len(text) > limit {
		return text[:limit]
	}
	return text
}
