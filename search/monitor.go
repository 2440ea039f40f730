package search

import "github.com/gridlyapp/gigsearch/core"

// Monitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate steps and results during search.
type Monitor interface {
	Start(query string)
	AfterRefinement(refined string, changed bool)
	AfterConstraintExtraction(constraints core.QueryConstraints)
	AfterEmbedding(dimensions int)
	AfterScan(candidates int)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                    {}
func (n *noopMonitor) AfterRefinement(_ string, _ bool)                  {}
func (n *noopMonitor) AfterConstraintExtraction(_ core.QueryConstraints) {}
func (n *noopMonitor) AfterEmbedding(_ int)                              {}
func (n *noopMonitor) AfterScan(_ int)                                   {}
func (n *noopMonitor) Finish(_ *Response)                                {}
