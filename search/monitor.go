package search

import "github.com/poiesic/aquakb/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(matches []*core.SearchResult)
	VerbatimBoost(record *core.ItemRecord)
	PathBoost(record *core.ItemRecord)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) VerbatimBoost(_ *core.ItemRecord)          {}
func (n *noopMonitor) PathBoost(_ *core.ItemRecord)              {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)             {}
