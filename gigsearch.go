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


package gigsearch

import (
	"io"
	"log/slog"

	"github.com/gridlyapp/gigsearch/ai"
	"github.com/gridlyapp/gigsearch/ai/openai"
	"github.com/gridlyapp/gigsearch/backfill"
	"github.com/gridlyapp/gigsearch/ingestion"
	"github.com/gridlyapp/gigsearch/search"
	"github.com/gridlyapp/gigsearch/storage"
	"github.com/gridlyapp/gigsearch/storage/badger"
)

// Service bundles the storage backend, the listing repository and the AI
// provider behind one handle. It is the composition root for embedding
// the gig search engine in another program or behind the HTTP API.
type Service struct {
	backend  *badger.Backend
	listings storage.ListingRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory opens the store in memory instead of on disk. The filePath
// argument to NewService is ignored in this mode.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// NewService opens the listing store at filePath and connects the AI
// provider. Call Close when done.
func NewService(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	listings, err := badger.NewListingRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		listings.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:  backend,
		listings: listings,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider, the repository and the backend.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.listings.Close(); err != nil {
		s.logger.Error("error closing listing repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ListingRepository exposes the underlying repository.
func (s *Service) ListingRepository() storage.ListingRepository {
	return s.listings
}

// NewPipeline creates a search pipeline over the service's store and provider.
func (s *Service) NewPipeline(opts ...search.Option) (*search.Pipeline, error) {
	return search.NewPipeline(s.listings, s.provider, opts...)
}

// NewIngestor creates a listing ingestor over the service's store and provider.
func (s *Service) NewIngestor(opts ...ingestion.Option) (*ingestion.Ingestor, error) {
	return ingestion.NewIngestor(s.listings, s.provider, opts...)
}

// NewBackfiller creates a backfiller writing progress to the given writer.
func (s *Service) NewBackfiller(config *backfill.Config, progress io.Writer) *backfill.Backfiller {
	return backfill.NewBackfiller(s.listings, s.provider.Embedder(), config, progress)
}
