// Copyright 2025 Gridly Labs
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


package mock

import "github.com/gridlyapp/gigsearch/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder and refiner instances.
type MockProvider struct {
	embedder *MockEmbedder
	refiner  *MockRefiner
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production
// constructors. Use GetMockEmbedder()/GetMockRefiner() to access concrete
// types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		refiner:  NewMockRefiner(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock
// services, allowing full control over the behavior of each.
func NewMockProviderWithServices(embedder *MockEmbedder, refiner *MockRefiner) ai.AIProvider {
	return &MockProvider{
		embedder: embedder,
		refiner:  refiner,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// QueryRefiner returns the mock refiner.
func (p *MockProvider) QueryRefiner() ai.QueryRefiner {
	return p.refiner
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockRefiner returns the underlying mock refiner for test assertions.
func (p *MockProvider) GetMockRefiner() *MockRefiner {
	return p.refiner
}
