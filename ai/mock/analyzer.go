package mock

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/aquakb/core"
)

// MockAnalyzer is a test double for ai.Analyzer.
// It allows custom behavior injection via function fields.
type MockAnalyzer struct {
	// AnalyzeFunc is called by Analyze if set.
	// If nil, uses default deterministic behavior.
	AnalyzeFunc func(ctx context.Context, item *core.Item) (*core.Analysis, error)

	callCount int
}

// NewMockAnalyzer creates a mock analyzer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// Analyze produces a deterministic analysis derived from the item path.
// Default behavior: synthesizes a purpose, questions, and key concepts
// from the item's path and title so the result always passes validation.
func (m *MockAnalyzer) Analyze(ctx context.Context, item *core.Item) (*core.Analysis, error) {
	m.callCount++

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, item)
	}

	name := strings.TrimSuffix(filepath.Base(item.Path), filepath.Ext(item.Path))
	if name == "" {
		name = "item"
	}

	return &core.Analysis{
		Purpose: fmt.Sprintf("Demonstrates %s usage in %s.", name, item.Path),
		Questions: []string{
			fmt.Sprintf("What does %s configure in this item?", name),
			fmt.Sprintf("How is %s exercised in %s?", name, item.Path),
		},
		KeyConcepts: []string{strings.ToLower(name)},
		Packages:    []string{},
	}, nil
}

// CallCount returns the number of times Analyze was called.
func (m *MockAnalyzer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockAnalyzer) Reset() {
	m.callCount = 0
	m.AnalyzeFunc = nil
}
