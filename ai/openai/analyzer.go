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


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Analyzer implements ai.Analyzer using OpenAI-compatible chat APIs.
type Analyzer struct {
	client llms.Model
	logger *slog.Logger
}

// analysisResponse matches the JSON structure the model is instructed
// to produce.
type analysisResponse struct {
	Purpose     string   `json:"purpose"`
	Questions   []string `json:"questions"`
	KeyConcepts []string `json:"key_concepts"`
	Packages    []string `json:"packages"`
}

// newAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnalyzer(config *ai.Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.AnalyzerHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.AnalyzerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		client: client,
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewAnalyzer creates a new analyzer using the provided configuration.
//
// Returns ai.Analyzer interface to enforce abstraction.
func NewAnalyzer(config *ai.Config) (ai.Analyzer, error) {
	return newAnalyzer(config)
}

// Analyze produces a discriminative analysis of the item.
//
// Service failures are returned as ai.TransientError so callers can
// retry. A response that parses but violates the analysis contract is
// returned as ai.ValidationError after local re-asks are exhausted.
func (a *Analyzer) Analyze(ctx context.Context, item *core.Item) (*core.Analysis, error) {
	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildItemPrompt(item)),
			},
		},
	}

	// Ask up to 3 times for well-formed JSON before giving up on the item.
	var result analysisResponse
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := a.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			a.logger.Error("failed to generate content", "path", item.Path, "attempt", attempt+1, "err", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ai.Transient(err)
		}

		if len(response.Choices) < 1 {
			lastErr = errors.New("model returned no choices")
			continue
		}

		responseText := stripFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := ai.ValidateAnalysisJSON([]byte(responseText)); err != nil {
			lastErr = err
			a.logger.Warn("analysis response rejected",
				"path", item.Path,
				"attempt", attempt+1,
				"err", err)
			continue
		}

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			a.logger.Warn("error parsing analysis response",
				"path", item.Path,
				"attempt", attempt+1,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		a.logger.Error("analysis failed after retries", "path", item.Path, "err", lastErr)
		return nil, ai.Validation(lastErr)
	}

	result.Purpose = strings.TrimSpace(result.Purpose)
	analysis := &core.Analysis{
		Purpose:     result.Purpose,
		Questions:   trimAll(result.Questions),
		KeyConcepts: trimAll(result.KeyConcepts),
		Packages:    trimAll(result.Packages),
	}
	if err := core.ValidateAnalysis(analysis); err != nil {
		return nil, ai.Validation(err)
	}

	a.logger.Debug("analyzed item",
		"path", item.Path,
		"questions", len(analysis.Questions),
		"concepts", len(analysis.KeyConcepts))
	return analysis, nil
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
