package search

import (
	"context"
	"testing"

	"github.com/poiesic/aquakb/ai/mock"
	"github.com/poiesic/aquakb/core"
	"github.com/poiesic/aquakb/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecord(t *testing.T, items interface {
	UpsertItemRecord(ctx context.Context, record *core.ItemRecord) (*core.ItemRecord, error)
}, path, embeddingText string, vector []float32) {
	t.Helper()
	_, err := items.UpsertItemRecord(context.Background(), &core.ItemRecord{
		Item: core.Item{
			Path:        path,
			Source:      core.SourceModule,
			Title:       path,
			Fingerprint: "fp-" + path,
		},
		EmbeddingText: embeddingText,
		Vector:        vector,
	})
	require.NoError(t, err)
}

func queryEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func TestNewSearcherValidation(t *testing.T) {
	itemRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrItemRepositoryRequired)

	_, err = NewSearcher(itemRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestFindSimilar_RanksBySimilarity(t *testing.T) {
	itemRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedRecord(t, itemRepo, "wells.py", "Purpose: well package handling", []float32{1, 0, 0})
	seedRecord(t, itemRepo, "rivers.py", "Purpose: river package handling", []float32{0.8, 0.6, 0})
	seedRecord(t, itemRepo, "plotting.py", "Purpose: map plotting", []float32{0, 0, 1})

	provider := mock.NewMockProviderWithServices(mock.NewMockAnalyzer(), queryEmbedder([]float32{1, 0, 0}))
	searcher, err := NewSearcher(itemRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "groundwater extraction", 10)
	require.NoError(t, err)

	require.Len(t, results, 2, "plotting.py is below the similarity floor")
	assert.Equal(t, "wells.py", results[0].Record.Path)
	assert.Equal(t, "rivers.py", results[1].Record.Path)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilar_VerbatimBoost(t *testing.T) {
	itemRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	// Identical vectors; only the verbatim boost separates them.
	seedRecord(t, itemRepo, "a.py", "Purpose: drawdown calculation for wells", []float32{1, 0, 0})
	seedRecord(t, itemRepo, "b.py", "Purpose: unrelated text", []float32{1, 0, 0})

	provider := mock.NewMockProviderWithServices(mock.NewMockAnalyzer(), queryEmbedder([]float32{1, 0, 0}))
	searcher, err := NewSearcher(itemRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "drawdown wells", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a.py", results[0].Record.Path)
	assert.InDelta(t, 0.3, results[0].Score-results[1].Score, 0.16)
}

func TestFindSimilar_PathBoost(t *testing.T) {
	itemRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedRecord(t, itemRepo, "flopy/utils/binaryfile.py", "Purpose: reads binary output", []float32{1, 0, 0})
	seedRecord(t, itemRepo, "flopy/mbase.py", "Purpose: reads binary output", []float32{1, 0, 0})

	provider := mock.NewMockProviderWithServices(mock.NewMockAnalyzer(), queryEmbedder([]float32{1, 0, 0}))
	searcher, err := NewSearcher(itemRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "binaryfile heads", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "flopy/utils/binaryfile.py", results[0].Record.Path)
}

func TestFindSimilar_MaxHits(t *testing.T) {
	itemRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	for _, path := range []string{"a.py", "b.py", "c.py", "d.py"} {
		seedRecord(t, itemRepo, path, "Purpose: text", []float32{1, 0, 0})
	}

	provider := mock.NewMockProviderWithServices(mock.NewMockAnalyzer(), queryEmbedder([]float32{1, 0, 0}))
	searcher, err := NewSearcher(itemRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindSimilar_EmptyQuery(t *testing.T) {
	itemRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	searcher, err := NewSearcher(itemRepo, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = searcher.FindSimilar(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestFindSimilar_NormalizesQueryVector(t *testing.T) {
	itemRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedRecord(t, itemRepo, "a.py", "Purpose: text", []float32{1, 0, 0})

	// Oversized query vector would inflate dot products if unnormalized.
	provider := mock.NewMockProviderWithServices(mock.NewMockAnalyzer(), queryEmbedder([]float32{10, 0, 0}))
	searcher, err := NewSearcher(itemRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "anything", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
}

func TestTokenizeAndFilter(t *testing.T) {
	words := tokenizeAndFilter("How does the WEL package work?")
	assert.Equal(t, []string{"does", "wel", "package", "work"}, words)
}

func TestContainsAllQueryWords(t *testing.T) {
	doc := "Purpose: configures the WEL package stress period data"
	assert.True(t, containsAllQueryWords(doc, "wel package"))
	assert.False(t, containsAllQueryWords(doc, "riv package"))
	assert.False(t, containsAllQueryWords(doc, "the a of"))
}
