// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Analyzer, ai.Embedder,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	analysis, err := provider.Analyzer().Analyze(ctx, item)
//
//	// Custom behavior injection
//	analyzer := mock.NewMockAnalyzer()
//	analyzer.AnalyzeFunc = func(ctx context.Context, item *core.Item) (*core.Analysis, error) {
//	    return nil, ai.Transient(errors.New("service unavailable"))
//	}
//
//	// Check call counts
//	count := analyzer.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockAnalyzer: Synthesizes a valid analysis from the item path
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockProvider: Aggregates mock analyzer and embedder
package mock
