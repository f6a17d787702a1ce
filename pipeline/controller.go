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
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/storage"
)

// Enumerator produces the full item set a pipeline run operates on.
// corpus.Scanner satisfies this.
type Enumerator interface {
	Scan(ctx context.Context) ([]*core.Item, error)
}

// Controller orchestrates a full pipeline run: enumeration, change
// detection, stage ordering, checkpointing, and summary reporting.
type Controller struct {
	enumerator  Enumerator
	items       storage.ItemRepository
	checkpoints storage.CheckpointRepository
	detector    *ChangeDetector
	stages      []Stage
	config      *Config
	progress    io.Writer
	logger      *slog.Logger
}

// DefaultStages returns the standard two-stage pipeline: analysis
// followed by embedding of the analysis output.
func DefaultStages(provider ai.Provider) ([]Stage, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	analysis, err := NewAnalysisStage(provider.Analyzer())
	if err != nil {
		return nil, err
	}
	embedding, err := NewEmbeddingStage(provider.Embedder())
	if err != nil {
		return nil, err
	}
	return []Stage{analysis, embedding}, nil
}

// NewController creates a pipeline controller over the given stages.
// Stages run in the order given; a stage naming a dependency only sees
// items the dependency has completed for their current fingerprint.
// progress: where to write progress output (typically os.Stderr)
func NewController(enumerator Enumerator, items storage.ItemRepository, checkpoints storage.CheckpointRepository, stages []Stage, config *Config, progress io.Writer) (*Controller, error) {
	if enumerator == nil {
		return nil, ErrEnumeratorRequired
	}
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if len(stages) == 0 {
		return nil, ErrStageRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	config.normalize()
	if progress == nil {
		progress = io.Discard
	}

	detector, err := NewChangeDetector(items)
	if err != nil {
		return nil, err
	}

	return &Controller{
		enumerator:  enumerator,
		items:       items,
		checkpoints: checkpoints,
		detector:    detector,
		stages:      stages,
		config:      config,
		progress:    progress,
		logger:      slog.Default().With("component", "pipeline-controller"),
	}, nil
}

// Run executes all stages over the enumerated corpus.
//
// Enumeration or stage record lookup failures are fatal and abort the
// run; every per-item failure is recorded in the item's stage record
// and never aborts the batch. On cancellation the current checkpoint
// is persisted and the partial summary is returned with the error.
func (c *Controller) Run(ctx context.Context) (*core.PipelineSummary, error) {
	items, err := c.enumerator.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating corpus: %w", err)
	}

	summary := &core.PipelineSummary{
		RunId:      uuid.NewString(),
		TotalItems: len(items),
		StartedAt:  time.Now().UTC(),
	}

	fmt.Fprintf(c.progress, "Pipeline run %s: %d items, %d stages\n",
		summary.RunId, len(items), len(c.stages))

	for _, stage := range c.stages {
		stageSummary, err := c.runStage(ctx, stage, items, summary.RunId)
		if stageSummary != nil {
			summary.Stages = append(summary.Stages, *stageSummary)
		}
		if err != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, err
		}
	}

	summary.FinishedAt = time.Now().UTC()
	c.report(ctx, summary, items)
	return summary, nil
}

func (c *Controller) runStage(ctx context.Context, stage Stage, items []*core.Item, runId string) (*core.StageSummary, error) {
	// Dependency gate: only items the prior stage has completed for
	// their current fingerprint are eligible.
	eligible := items
	if dep := stage.DependsOn(); dep != "" {
		completed, err := c.detector.CompletedSet(ctx, items, dep)
		if err != nil {
			return nil, err
		}
		eligible = make([]*core.Item, 0, len(completed))
		for _, item := range items {
			if completed[item.Id] {
				eligible = append(eligible, item)
			}
		}
	}

	// Candidates are re-queried per stage: an earlier stage may have
	// just produced new completions.
	pending, err := c.detector.FilterPending(ctx, eligible, stage.Name())
	if err != nil {
		return nil, err
	}

	upToDate := len(eligible) - len(pending)

	if c.config.Limit > 0 && len(pending) > c.config.Limit {
		pending = pending[:c.config.Limit]
	}

	checkpoint, err := c.loadOrCreateCheckpoint(ctx, stage.Name(), runId, len(pending))
	if err != nil {
		return nil, err
	}

	c.logger.Info("running stage",
		"stage", stage.Name(),
		"eligible", len(eligible),
		"pending", len(pending),
		"resumed", len(checkpoint.CompletedItems))

	runner, err := NewStageRunner(c.items, c.checkpoints, stage, c.config, c.progress)
	if err != nil {
		return nil, err
	}

	stageSummary, err := runner.Run(ctx, pending, checkpoint)
	stageSummary.Skipped += upToDate
	if err != nil {
		return &stageSummary, err
	}

	// The batch is consumed; future runs are driven by fingerprints
	// and stage records, not this run's checkpoint.
	if err := c.checkpoints.DeleteCheckpoint(ctx, stage.Name()); err != nil {
		c.logger.Error("failed to clear checkpoint", "stage", stage.Name(), "err", err)
	}

	return &stageSummary, nil
}

// loadOrCreateCheckpoint resumes an interrupted stage run when a
// checkpoint survives, otherwise starts a fresh one.
func (c *Controller) loadOrCreateCheckpoint(ctx context.Context, stage core.Stage, runId string, total int) (*core.Checkpoint, error) {
	checkpoint, err := c.checkpoints.LoadCheckpoint(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("loading %s checkpoint: %w", stage, err)
	}
	if checkpoint != nil {
		c.logger.Info("resuming from checkpoint",
			"stage", stage,
			"run", checkpoint.RunId,
			"completed", len(checkpoint.CompletedItems))
		checkpoint.TotalItems = total
		return checkpoint, nil
	}

	return &core.Checkpoint{
		Stage:      stage,
		RunId:      runId,
		TotalItems: total,
		StartedAt:  time.Now().UTC(),
	}, nil
}

// ResetCheckpoints discards any persisted per-stage checkpoints so the
// next run starts from the stage records alone.
func (c *Controller) ResetCheckpoints(ctx context.Context) error {
	for _, stage := range c.stages {
		if err := c.checkpoints.DeleteCheckpoint(ctx, stage.Name()); err != nil {
			return fmt.Errorf("resetting %s checkpoint: %w", stage.Name(), err)
		}
	}
	return nil
}

// report prints the final per-stage summary and flags any stage whose
// stored completion count falls short of the enumerated corpus.
func (c *Controller) report(ctx context.Context, summary *core.PipelineSummary, items []*core.Item) {
	elapsed := summary.FinishedAt.Sub(summary.StartedAt)
	fmt.Fprintf(c.progress, "Pipeline complete in %v\n", elapsed.Round(time.Second))

	for _, s := range summary.Stages {
		pct := 0.0
		if s.Total() > 0 {
			pct = float64(s.Succeeded+s.Skipped) / float64(s.Total()) * 100.0
		}
		fmt.Fprintf(c.progress, "  %s: %d ok, %d failed, %d skipped (%.1f%% complete)\n",
			s.Stage, s.Succeeded, s.Failed, s.Skipped, pct)
	}

	// Expected-count check: silent under-processing shows up as fewer
	// completed records than enumerated items.
	for _, stage := range c.stages {
		counts, err := c.items.CountStageStatuses(ctx, stage.Name())
		if err != nil {
			c.logger.Error("failed to count stage statuses", "stage", stage.Name(), "err", err)
			continue
		}
		if c.config.Limit == 0 && counts[core.StatusCompleted] < len(items) {
			c.logger.Warn("stage completion short of corpus size",
				"stage", stage.Name(),
				"completed", counts[core.StatusCompleted],
				"expected", len(items))
		}
	}
}
