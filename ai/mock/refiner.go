package mock

import (
	"context"
)

// MockRefiner is a test double for ai.QueryRefiner.
// It allows custom behavior injection via function fields.
type MockRefiner struct {
	// RefineFunc is called by Refine if set.
	// If nil, the query is returned unchanged.
	RefineFunc func(ctx context.Context, query string) (string, error)

	callCount int
}

// NewMockRefiner creates a mock refiner that returns queries unchanged.
// Note: Returns concrete type to allow test assertions and behavior injection.
func NewMockRefiner() *MockRefiner {
	return &MockRefiner{}
}

// Refine returns the refined query. Default behavior is the identity,
// which keeps constraint extraction working directly on test queries.
func (m *MockRefiner) Refine(ctx context.Context, query string) (string, error) {
	m.callCount++

	if m.RefineFunc != nil {
		return m.RefineFunc(ctx, query)
	}

	return query, nil
}

// CallCount returns the number of times Refine was called.
func (m *MockRefiner) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockRefiner) Reset() {
	m.callCount = 0
	m.RefineFunc = nil
}
