package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/pipeline"
	"github.com/poiesic/aquakb/storage"
)

// minSimilarity is the cosine floor below which a record is not a hit.
const minSimilarity = 0.60

// Searcher provides semantic search over analyzed knowledge base items.
type Searcher struct {
	items    storage.ItemRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(items storage.ItemRepository, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		items:    items,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for items relevant to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for items relevant to the query with
// monitoring. The monitor receives callbacks at each stage of the search.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Stored vectors are unit length; the query must match for the dot
	// product to be a cosine.
	matches, err := s.items.FindSimilar(ctx, pipeline.NormalizeVector(embedding), minSimilarity, maxHits*2)
	if err != nil {
		s.logger.Error("error querying for similar records", "err", err)
		return nil, err
	}
	monitor.AfterSemanticSearch(matches)

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		score := match.Score

		// Verbatim match boost: every query word appears in the
		// record's embedding text.
		if containsAllQueryWords(match.Record.EmbeddingText, query) {
			score += 0.3
			monitor.VerbatimBoost(match.Record)
		}

		// Path boost: the query names the module or tutorial directly.
		if pathMentionsQuery(match.Record.Path, query) {
			score += 0.15
			monitor.PathBoost(match.Record)
		}

		results = append(results, &core.SearchResult{
			Record: match.Record,
			Score:  score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
