package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/ai/mock"
	"github.com/poiesic/aquakb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingStage_RequiresAnalysis(t *testing.T) {
	stage, err := NewEmbeddingStage(mock.NewMockEmbedder())
	require.NoError(t, err)

	record := &core.ItemRecord{Item: *makeItem("a.py", "fp")}
	err = stage.Process(context.Background(), record)

	require.Error(t, err)
	assert.True(t, ai.IsValidation(err))
	assert.ErrorIs(t, err, ErrMissingAnalysis)
}

func TestEmbeddingStage_ProducesNormalizedVector(t *testing.T) {
	stage, err := NewEmbeddingStage(mock.NewMockEmbedder())
	require.NoError(t, err)

	record := &core.ItemRecord{
		Item: *makeItem("flopy/mbase.py", "fp"),
		Analysis: &core.Analysis{
			Purpose:     "Base model plumbing.",
			Questions:   []string{"What does run_model wrap?"},
			KeyConcepts: []string{"base model"},
		},
	}

	require.NoError(t, stage.Process(context.Background(), record))
	require.NotEmpty(t, record.Vector)
	assert.NotEmpty(t, record.EmbeddingText)

	var magnitude float64
	for _, v := range record.Vector {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 0.001)
}

func TestBuildEmbeddingText(t *testing.T) {
	item := makeItem("flopy/mf6/mfmodel.py", "fp")
	analysis := &core.Analysis{
		Purpose:     "Wraps MF6 model construction.",
		Questions:   []string{"How does register_package wire DIS?", "What simulation paths are set?"},
		KeyConcepts: []string{"mf6 model", "package registration"},
		Packages:    []string{"dis", "ims"},
	}

	text := BuildEmbeddingText(item, analysis)

	assert.Contains(t, text, "MODULE: flopy/mf6/mfmodel.py")
	assert.Contains(t, text, "Purpose: Wraps MF6 model construction.")
	assert.Contains(t, text, "1. How does register_package wire DIS?")
	assert.Contains(t, text, "2. What simulation paths are set?")
	assert.Contains(t, text, "Key concepts: mf6 model, package registration")
	assert.Contains(t, text, "Packages: dis, ims")
}

func TestAnalysisStage_ClearsStaleEmbedding(t *testing.T) {
	stage, err := NewAnalysisStage(mock.NewMockAnalyzer())
	require.NoError(t, err)

	record := &core.ItemRecord{
		Item:          *makeItem("a.py", "fp"),
		EmbeddingText: "stale",
		Vector:        []float32{0.1, 0.2},
	}

	require.NoError(t, stage.Process(context.Background(), record))
	require.NotNil(t, record.Analysis)
	assert.Empty(t, record.EmbeddingText)
	assert.Nil(t, record.Vector)
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, normalized[0], 0.001)
	assert.InDelta(t, 0.8, normalized[1], 0.001)

	zero := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)

	assert.Empty(t, NormalizeVector(nil))
}
