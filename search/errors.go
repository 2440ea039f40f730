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


package search

import "errors"

var (
	// ErrListingRepositoryRequired is returned when a listing repository is not provided.
	ErrListingRepositoryRequired = errors.New("listing repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyQuery is returned when the search query is empty or whitespace.
	ErrEmptyQuery = errors.New("query must be a non-empty string")
)

// ErrorKind classifies a pipeline failure so callers can decide how to
// surface it without inspecting the wrapped cause.
type ErrorKind string

const (
	// KindClientInput marks failures caused by the caller's request.
	KindClientInput ErrorKind = "ClientInputError"

	// KindUpstreamEmbedding marks failures of the embedding provider.
	// The pipeline cannot rank without a query vector, so these are fatal.
	KindUpstreamEmbedding ErrorKind = "UpstreamEmbeddingError"

	// KindStoreUnavailable marks failures reading the listing store.
	KindStoreUnavailable ErrorKind = "StoreUnavailableError"
)

// PipelineError wraps a pipeline failure with its classification.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func clientError(err error) *PipelineError {
	return &PipelineError{Kind: KindClientInput, Err: err}
}

func embeddingError(err error) *PipelineError {
	return &PipelineError{Kind: KindUpstreamEmbedding, Err: err}
}

func storeError(err error) *PipelineError {
	return &PipelineError{Kind: KindStoreUnavailable, Err: err}
}
