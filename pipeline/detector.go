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
	"log/slog"

	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/storage"
)

// ChangeDetector decides which items a stage still needs to process by
// comparing current fingerprints against the stored per-stage records.
type ChangeDetector struct {
	items  storage.ItemRepository
	logger *slog.Logger
}

// NewChangeDetector creates a change detector backed by the item repository.
func NewChangeDetector(items storage.ItemRepository) (*ChangeDetector, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	return &ChangeDetector{
		items:  items,
		logger: slog.Default().With("component", "change-detector"),
	}, nil
}

// FilterPending returns the items the stage needs to (re)process.
//
// An item needs work if it has no stage record, if its fingerprint
// differs from the recorded one, or if its last attempt failed. An item
// whose record shows completed with an unchanged fingerprint is skipped.
// A stranded "processing" record from a crashed run is treated as
// pending. The stage record lookup covers the whole run; if it fails
// the run aborts rather than reprocessing everything blind.
func (d *ChangeDetector) FilterPending(ctx context.Context, items []*core.Item, stage core.Stage) ([]*core.Item, error) {
	records, err := d.items.ListStageRecords(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("loading %s stage records: %w", stage, err)
	}

	var pending []*core.Item
	for _, item := range items {
		if d.needsProcessing(item, records[item.Id], stage) {
			pending = append(pending, item)
		}
	}

	d.logger.Debug("filtered candidates",
		"stage", stage,
		"total", len(items),
		"pending", len(pending))
	return pending, nil
}

func (d *ChangeDetector) needsProcessing(item *core.Item, record *core.StageRecord, stage core.Stage) bool {
	if record == nil {
		return true
	}
	if record.Fingerprint != item.Fingerprint {
		d.logger.Debug("fingerprint changed", "stage", stage, "path", item.Path)
		return true
	}

	switch record.Status {
	case core.StatusCompleted:
		return false
	case core.StatusFailed, core.StatusPending, core.StatusProcessing:
		return true
	default:
		// Unknown status in storage; reprocessing is idempotent and
		// cheaper than corrupting tracking state.
		d.logger.Warn("unknown stage status, treating as pending",
			"stage", stage, "path", item.Path, "status", int(record.Status))
		return true
	}
}

// CompletedSet returns the IDs whose stage record shows completed for
// the item's current fingerprint. The embedding stage uses this to gate
// candidates on finished analysis output.
func (d *ChangeDetector) CompletedSet(ctx context.Context, items []*core.Item, stage core.Stage) (map[core.ID]bool, error) {
	records, err := d.items.ListStageRecords(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("loading %s stage records: %w", stage, err)
	}

	completed := make(map[core.ID]bool, len(records))
	for _, item := range items {
		record := records[item.Id]
		if record != nil && record.Status == core.StatusCompleted && record.Fingerprint == item.Fingerprint {
			completed[item.Id] = true
		}
	}
	return completed, nil
}
