package ai

import (
	"context"

	"github.com/poiesic/aquakb/core"
)

// Analyzer produces a structured, discriminative analysis of a corpus item.
// Implementations must be thread-safe for concurrent use.
type Analyzer interface {
	// Analyze generates an analysis for the item: its purpose, questions
	// only this item can answer, and the key concepts it covers.
	// Fails with a TransientError for infrastructure problems (timeouts,
	// rate limits) and a ValidationError when the model output does not
	// satisfy the analysis contract. ValidationErrors must not be retried.
	Analyze(ctx context.Context, item *core.Item) (*core.Analysis, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails; all failures
	// are transient.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice preserves input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Analyzer and
// Embedder instances, ensuring they share configuration appropriately.
type Provider interface {
	// Analyzer returns the item analysis service.
	Analyzer() Analyzer

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}
