package storage

import (
	"context"

	"github.com/poiesic/aquakb/core"
)

// Repository provides common storage operations shared across repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ItemRepository persists corpus items, their stage outputs, and the
// per-(item, stage) processing state.
type ItemRepository interface {
	Repository

	// UpsertItemRecord writes an item record, inserting or replacing by ID.
	// Upserts are idempotent: writing the same record twice leaves one copy.
	// Sets InsertedAt on first write and UpdatedAt on every write.
	UpsertItemRecord(ctx context.Context, record *core.ItemRecord) (*core.ItemRecord, error)

	// GetItemRecord retrieves a single item record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetItemRecord(ctx context.Context, id core.ID) (*core.ItemRecord, error)

	// ListItemRecords retrieves all item records, ordered by path.
	ListItemRecords(ctx context.Context) ([]*core.ItemRecord, error)

	// UpsertStageRecord writes the processing state for one (item, stage)
	// pair, inserting or replacing. Sets UpdatedAt on every write.
	UpsertStageRecord(ctx context.Context, record *core.StageRecord) error

	// GetStageRecord retrieves the processing state for one (item, stage)
	// pair. Returns nil, nil if no record exists.
	GetStageRecord(ctx context.Context, id core.ID, stage core.Stage) (*core.StageRecord, error)

	// ListStageRecords retrieves all stage records for a stage,
	// keyed by item ID.
	ListStageRecords(ctx context.Context, stage core.Stage) (map[core.ID]*core.StageRecord, error)

	// CountStageStatuses returns per-status record counts for a stage.
	CountStageStatuses(ctx context.Context, stage core.Stage) (map[core.Status]int, error)

	// DeleteStageRecords removes all stage records for a stage.
	// Returns the number of records removed.
	DeleteStageRecords(ctx context.Context, stage core.Stage) (int, error)

	// FindSimilar finds item records whose vectors are similar to the query
	// vector. Returns records with similarity >= minSimilarity, up to limit
	// results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// CheckpointRepository persists durable pipeline progress records.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a stage.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a stage.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, stage core.Stage) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a stage.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, stage core.Stage) error
}
