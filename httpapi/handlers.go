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


package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/ingestion"
	"github.com/gridlyapp/gigsearch/search"
)

// Handlers holds dependencies for the HTTP handlers.
type Handlers struct {
	pipeline *search.Pipeline
	ingestor *ingestion.Ingestor
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(pipeline *search.Pipeline, ingestor *ingestion.Ingestor, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		pipeline: pipeline,
		ingestor: ingestor,
		logger:   logger,
	}
}

type searchRequest struct {
	Query *string `json:"query"`
}

type searchResponse struct {
	Reply string      `json:"reply"`
	Gigs  []gigResult `json:"gigs"`
	Debug searchDebug `json:"debug_info"`
}

type gigResult struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	University  string   `json:"university,omitempty"`
	Price       string   `json:"price"`
	Images      []string `json:"images,omitempty"`
	PostedDate  string   `json:"postedDate,omitempty"`
	Similarity  float64  `json:"similarity"`
}

type searchDebug struct {
	QueryType         string           `json:"query_type"`
	ExecutionTime     float64          `json:"execution_time"`
	CandidatesScanned int              `json:"candidates_scanned"`
	TotalMatched      int              `json:"total_gigs_matched"`
	Constraints       constraintsDebug `json:"price_constraints"`
	QueryRefined      bool             `json:"query_refinement"`
}

type constraintsDebug struct {
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	TargetPrice *float64 `json:"target_price,omitempty"`
	Exclusions  []string `json:"exclusions,omitempty"`
}

// isJSONRequest reports whether the request declares a JSON body.
// Charset parameters are accepted, other media types are not.
func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// HandleSearch handles POST /search.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == nil {
		writeError(w, http.StatusBadRequest, "Query must be a non-empty string")
		return
	}

	result, err := h.pipeline.Search(r.Context(), *req.Query)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(result))
}

func (h *Handlers) respondPipelineError(w http.ResponseWriter, err error) {
	var pe *search.PipelineError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case search.KindClientInput:
			writeError(w, http.StatusBadRequest, pe.Err.Error())
		default:
			h.logger.Error("search failed", "kind", pe.Kind, "err", pe.Err)
			writeInternalError(w, string(pe.Kind), pe.Err)
		}
		return
	}

	h.logger.Error("search failed", "err", err)
	writeInternalError(w, "InternalError", err)
}

func toSearchResponse(result *search.Response) searchResponse {
	gigs := make([]gigResult, len(result.Gigs))
	for i, scored := range result.Gigs {
		gigs[i] = toGigResult(scored)
	}

	return searchResponse{
		Reply: result.Reply,
		Gigs:  gigs,
		Debug: searchDebug{
			QueryType:         result.Debug.QueryType,
			ExecutionTime:     result.Debug.ExecutionTime,
			CandidatesScanned: result.Debug.CandidatesScanned,
			TotalMatched:      result.Debug.TotalMatched,
			Constraints: constraintsDebug{
				MinPrice:    result.Debug.Constraints.MinPrice,
				MaxPrice:    result.Debug.Constraints.MaxPrice,
				TargetPrice: result.Debug.Constraints.TargetPrice,
				Exclusions:  result.Debug.Constraints.Exclusions,
			},
			QueryRefined: result.Debug.QueryRefined,
		},
	}
}

func toGigResult(scored core.ScoredListing) gigResult {
	listing := scored.Listing
	out := gigResult{
		Id:          listing.Id,
		Title:       listing.Title,
		Description: listing.Description,
		Category:    listing.Category,
		University:  listing.University,
		Price:       listing.Price,
		Images:      listing.Images,
		Similarity:  scored.Similarity,
	}
	if !listing.PostedDate.IsZero() {
		out.PostedDate = listing.PostedDate.Format(time.RFC3339)
	}
	return out
}

type ingestRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	University  string   `json:"university"`
	Price       string   `json:"price"`
	Images      []string `json:"images"`
	PostedDate  string   `json:"postedDate"`
}

type ingestResponse struct {
	Id string `json:"id"`
}

// HandleIngest handles POST /ingest.
func (h *Handlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be a JSON listing")
		return
	}

	listing := &core.Listing{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		University:  req.University,
		Price:       req.Price,
		Images:      req.Images,
	}
	if req.PostedDate != "" {
		posted, err := time.Parse(time.RFC3339, req.PostedDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "postedDate must be RFC 3339")
			return
		}
		listing.PostedDate = posted
	}

	added, err := h.ingestor.Ingest(r.Context(), listing)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidListing):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ingestion.ErrEmbeddingFailed):
			h.logger.Error("ingest embedding failed", "err", err)
			writeInternalError(w, string(search.KindUpstreamEmbedding), err)
		default:
			h.logger.Error("ingest failed", "err", err)
			writeInternalError(w, "InternalError", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{Id: added.Id})
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
