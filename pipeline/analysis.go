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

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
)

// AnalysisStage produces a structured analysis of each item via the
// configured analyzer. It is the first stage; its output gates the
// embedding stage.
type AnalysisStage struct {
	analyzer ai.Analyzer
}

// NewAnalysisStage creates the analysis stage.
func NewAnalysisStage(analyzer ai.Analyzer) (*AnalysisStage, error) {
	if analyzer == nil {
		return nil, ErrProviderRequired
	}
	return &AnalysisStage{analyzer: analyzer}, nil
}

func (s *AnalysisStage) Name() core.Stage {
	return core.StageAnalysis
}

func (s *AnalysisStage) DependsOn() core.Stage {
	return ""
}

// Process analyzes the item and stores the result on the record.
// The analyzer enforces the output contract, so a result that arrives
// here has already passed validation.
func (s *AnalysisStage) Process(ctx context.Context, record *core.ItemRecord) error {
	analysis, err := s.analyzer.Analyze(ctx, &record.Item)
	if err != nil {
		return err
	}

	record.Analysis = analysis
	// Stale embedding output no longer matches the new analysis.
	record.EmbeddingText = ""
	record.Vector = nil
	return nil
}
