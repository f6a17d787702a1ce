package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	return &ItemRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ItemRepository has no resources to release.
func (r *ItemRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *ItemRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// UpsertItemRecord writes an item record, inserting or replacing by ID.
func (r *ItemRepository) UpsertItemRecord(ctx context.Context, record *core.ItemRecord) (*core.ItemRecord, error) {
	if err := core.ValidateItem(&record.Item); err != nil {
		return nil, err
	}
	if record.Item.Id == 0 {
		record.Item.Id = core.IDFromContent(record.Item.Path)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeItemRecordKey(record.Item.Id)

		// Preserve InsertedAt across upserts
		old, err := readItemRecord(tx, key)
		if err != nil {
			return err
		}

		// Stored timestamps carry microsecond precision, so truncate up
		// front to keep the written value equal to the read-back value.
		now := time.Now().UTC().Truncate(time.Microsecond)
		if old != nil && !old.InsertedAt.IsZero() {
			record.InsertedAt = old.InsertedAt
		} else {
			record.InsertedAt = now
		}
		record.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalItemRecord(record)); err != nil {
			return err
		}

		// Maintain the path index
		if old != nil && old.Item.Path != record.Item.Path {
			if err := tx.Delete(makeItemPathKey(old.Item.Path)); err != nil {
				return err
			}
		}
		pathKey := makeItemPathKey(record.Item.Path)
		if err := tx.Set(pathKey, storage.MarshalID(record.Item.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetItemRecord retrieves a single item record by ID.
func (r *ItemRepository) GetItemRecord(ctx context.Context, id core.ID) (*core.ItemRecord, error) {
	var record *core.ItemRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readItemRecord(tx, makeItemRecordKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListItemRecords retrieves all item records, ordered by path.
func (r *ItemRepository) ListItemRecords(ctx context.Context) ([]*core.ItemRecord, error) {
	var records []*core.ItemRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemPathPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// The path index iterates in lexicographic path order
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			record, err := readItemRecord(tx, makeItemRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpsertStageRecord writes the processing state for one (item, stage) pair.
func (r *ItemRepository) UpsertStageRecord(ctx context.Context, record *core.StageRecord) error {
	if err := core.ValidateStageRecord(record); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		record.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
		key := makeStageRecordKey(record.Stage, record.ItemId)
		if err := tx.Set(key, storage.MarshalStageRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetStageRecord retrieves the processing state for one (item, stage) pair.
// Returns nil, nil if no record exists.
func (r *ItemRepository) GetStageRecord(ctx context.Context, id core.ID, stage core.Stage) (*core.StageRecord, error) {
	var record *core.StageRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeStageRecordKey(stage, id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalStageRecord(val)
			return unmarshalErr
		})
	}, false)

	return record, err
}

// ListStageRecords retrieves all stage records for a stage, keyed by item ID.
func (r *ItemRepository) ListStageRecords(ctx context.Context, stage core.Stage) (map[core.ID]*core.StageRecord, error) {
	records := make(map[core.ID]*core.StageRecord)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeStagePrefix(stage)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.StageRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalStageRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil {
				records[record.ItemId] = record
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountStageStatuses returns per-status record counts for a stage.
func (r *ItemRepository) CountStageStatuses(ctx context.Context, stage core.Stage) (map[core.Status]int, error) {
	records, err := r.ListStageRecords(ctx, stage)
	if err != nil {
		return nil, err
	}

	counts := make(map[core.Status]int)
	for _, record := range records {
		counts[record.Status]++
	}
	return counts, nil
}

// DeleteStageRecords removes all stage records for a stage.
func (r *ItemRepository) DeleteStageRecords(ctx context.Context, stage core.Stage) (int, error) {
	var keys [][]byte

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeStagePrefix(stage)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}

// readItemRecord reads an item record within a transaction.
// Returns nil, nil if the key doesn't exist.
func readItemRecord(tx *badger.Txn, key []byte) (*core.ItemRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ItemRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalItemRecord(val)
		return unmarshalErr
	})
	return record, err
}
