package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for corpus items.
// It is generated from the item path using content-based hashing so that
// the same file always maps to the same record across runs.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
// Identical input always produces an identical ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FingerprintFromContent computes a hex-encoded BLAKE2b-256 content hash.
// Fingerprints detect whether an item changed since it was last processed.
func FingerprintFromContent(content []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceType identifies where a corpus item came from.
type SourceType int

const (
	// SourceModule represents a library source module.
	SourceModule SourceType = iota + 1
	// SourceTutorial represents a tutorial or example script.
	SourceTutorial
	// SourceIssue represents an issue-tracker entry.
	SourceIssue
)

// String returns the canonical name of the source type.
func (s SourceType) String() string {
	switch s {
	case SourceModule:
		return "module"
	case SourceTutorial:
		return "tutorial"
	case SourceIssue:
		return "issue"
	default:
		return "unknown"
	}
}

// Stage identifies one phase of the processing pipeline.
type Stage string

const (
	// StageAnalysis is the LLM analysis stage. Its output gates StageEmbedding.
	StageAnalysis Stage = "analysis"
	// StageEmbedding is the vector embedding stage.
	StageEmbedding Stage = "embedding"
)

// Status is the processing state of an item within a stage.
type Status int

const (
	// StatusPending means the item is waiting to be processed.
	StatusPending Status = iota + 1
	// StatusProcessing means a run has claimed the item and not yet finished it.
	StatusProcessing
	// StatusCompleted means the item was processed successfully.
	StatusCompleted
	// StatusFailed means processing failed; the item is retried on the next run.
	StatusFailed
)

// String returns the canonical name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Item is a single corpus entry: a source module, tutorial script, or issue.
type Item struct {
	Id           ID
	Path         string
	Source       SourceType
	Title        string
	Fingerprint  string
	LastModified time.Time
	Contents     string
}

// Analysis is the structured result of the analysis stage.
// It is the tagged inter-stage contract: the embedding stage consumes it,
// and a single schema validator enforces the required fields.
type Analysis struct {
	Purpose     string
	Questions   []string
	KeyConcepts []string
	Packages    []string
}

// ItemRecord is the persisted form of an item together with its
// stage outputs. Analysis and Vector are populated by the pipeline.
type ItemRecord struct {
	Item
	Analysis      *Analysis
	EmbeddingText string
	Vector        []float32
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// StageRecord tracks the processing state of one (item, stage) pair.
// Fingerprint is the item fingerprint at the time the record was written;
// a changed fingerprint makes a completed record stale.
type StageRecord struct {
	ItemId      ID
	Stage       Stage
	Status      Status
	Fingerprint string
	Error       string
	CompletedAt time.Time
	UpdatedAt   time.Time
}

// Checkpoint is a durable snapshot of per-stage run progress.
// A fresh process loads it to skip already-completed items.
type Checkpoint struct {
	Stage            Stage
	RunId            string
	CompletedItems   []ID
	LastFlushedIndex int
	TotalItems       int
	StartedAt        time.Time
	UpdatedAt        time.Time
}

// Contains reports whether the checkpoint already lists the item.
func (c *Checkpoint) Contains(id ID) bool {
	for _, completed := range c.CompletedItems {
		if completed == id {
			return true
		}
	}
	return false
}

// MarkCompleted adds the item to the completed set.
// The write is monotonic: an item already present is not added again.
func (c *Checkpoint) MarkCompleted(id ID) {
	if c.Contains(id) {
		return
	}
	c.CompletedItems = append(c.CompletedItems, id)
}

// StageSummary aggregates the outcome of one stage over a batch.
type StageSummary struct {
	Stage     Stage
	Succeeded int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

// Total returns the number of items the stage attempted or skipped.
func (s StageSummary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// PipelineSummary aggregates a full pipeline run across all stages.
type PipelineSummary struct {
	RunId      string
	TotalItems int
	Stages     []StageSummary
	StartedAt  time.Time
	FinishedAt time.Time
}

// SearchResult is a knowledge-base hit with its relevance score.
type SearchResult struct {
	Record *ItemRecord
	Score  float32
}
