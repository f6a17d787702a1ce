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


package aquakb

import (
	"io"
	"log/slog"

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/ai/openai"
	"github.com/poiesic/aquakb/pipeline"
	"github.com/poiesic/aquakb/search"
	"github.com/poiesic/aquakb/storage"
	"github.com/poiesic/aquakb/storage/badger"
)

// KnowledgeBase bundles the storage backend, repositories, and AI
// provider behind one handle. It is the entry point for both building
// the knowledge base (pipeline) and querying it (search).
type KnowledgeBase struct {
	backend        *badger.Backend
	itemRepo       storage.ItemRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.Provider
	logger         *slog.Logger
}

// KnowledgeBaseOption configures a KnowledgeBase.
type KnowledgeBaseOption func(*knowledgeBaseOptions)

type knowledgeBaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig overrides the AI service configuration.
func WithAIConfig(config *ai.Config) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider substitutes a pre-built AI provider, bypassing the
// OpenAI-compatible default. Tests use this with the mock provider.
func WithProvider(provider ai.Provider) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.provider = provider
	}
}

// Open opens (or creates) a knowledge base at the given path.
func Open(filePath string, opts ...KnowledgeBaseOption) (*KnowledgeBase, error) {
	options := &knowledgeBaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	itemRepo, err := badger.NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	checkpointRepo := badger.NewCheckpointRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &KnowledgeBase{
		backend:        backend,
		itemRepo:       itemRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		logger:         slog.Default(),
	}, nil
}

func (kb *KnowledgeBase) Close() error {
	// Close AI provider first
	if err := kb.provider.Close(); err != nil {
		kb.logger.Error("error closing AI provider", "err", err)
	}

	if err := kb.itemRepo.Close(); err != nil {
		kb.logger.Error("error closing item repository", "err", err)
		return err
	}

	if err := kb.backend.Close(); err != nil {
		kb.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (kb *KnowledgeBase) ItemRepository() storage.ItemRepository {
	return kb.itemRepo
}

func (kb *KnowledgeBase) CheckpointRepository() storage.CheckpointRepository {
	return kb.checkpointRepo
}

// NewPipelineController builds the two-stage analysis and embedding
// pipeline over the given corpus enumerator.
func (kb *KnowledgeBase) NewPipelineController(enumerator pipeline.Enumerator, config *pipeline.Config, progress io.Writer) (*pipeline.Controller, error) {
	stages, err := pipeline.DefaultStages(kb.provider)
	if err != nil {
		return nil, err
	}
	return pipeline.NewController(enumerator, kb.itemRepo, kb.checkpointRepo, stages, config, progress)
}

func (kb *KnowledgeBase) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(kb.itemRepo, kb.provider, opts...)
}
