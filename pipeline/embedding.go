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
	"strings"

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
)

// EmbeddingStage turns each item's analysis into embedding text and a
// normalized vector. It depends on the analysis stage.
type EmbeddingStage struct {
	embedder ai.Embedder
}

// NewEmbeddingStage creates the embedding stage.
func NewEmbeddingStage(embedder ai.Embedder) (*EmbeddingStage, error) {
	if embedder == nil {
		return nil, ErrProviderRequired
	}
	return &EmbeddingStage{embedder: embedder}, nil
}

func (s *EmbeddingStage) Name() core.Stage {
	return core.StageEmbedding
}

func (s *EmbeddingStage) DependsOn() core.Stage {
	return core.StageAnalysis
}

// Process builds the discriminative embedding text from the analysis
// and embeds it. A record without analysis output is a permanent
// failure since the dependency gate should have excluded it.
func (s *EmbeddingStage) Process(ctx context.Context, record *core.ItemRecord) error {
	if record.Analysis == nil {
		return ai.Validation(ErrMissingAnalysis)
	}

	text := BuildEmbeddingText(&record.Item, record.Analysis)

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return err
	}
	if len(vector) == 0 {
		return ai.Transient(fmt.Errorf("embedder returned empty vector for %s", record.Path))
	}

	record.EmbeddingText = text
	// Normalized vectors let search score with a plain dot product.
	record.Vector = NormalizeVector(vector)
	return nil
}

// BuildEmbeddingText flattens an analysis into the text that gets
// embedded. Questions carry the most discriminative signal, so they
// dominate the layout.
func BuildEmbeddingText(item *core.Item, analysis *core.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(item.Source.String()), item.Path)
	fmt.Fprintf(&b, "Purpose: %s\n", analysis.Purpose)

	if len(analysis.Questions) > 0 {
		b.WriteString("\nQuestions:\n")
		for i, q := range analysis.Questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
	}

	if len(analysis.KeyConcepts) > 0 {
		b.WriteString("\nKey concepts: ")
		b.WriteString(strings.Join(analysis.KeyConcepts, ", "))
		b.WriteString("\n")
	}

	if len(analysis.Packages) > 0 {
		b.WriteString("Packages: ")
		b.WriteString(strings.Join(analysis.Packages, ", "))
		b.WriteString("\n")
	}

	return b.String()
}
