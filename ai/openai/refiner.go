package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gridlyapp/gigsearch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Refiner implements ai.QueryRefiner using OpenAI-compatible chat APIs.
type Refiner struct {
	client  llms.Model
	timeout timeoutFunc
	logger  *slog.Logger
}

// newRefiner is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newRefiner(config *ai.Config) (*Refiner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Refiner{
		client:  client,
		timeout: boundBy(config.RefineTimeout),
		logger:  slog.Default().With("component", "openai-refiner"),
	}, nil
}

// NewRefiner creates a new query refiner using the provided configuration.
//
// Returns ai.QueryRefiner interface to enforce abstraction.
func NewRefiner(config *ai.Config) (ai.QueryRefiner, error) {
	return newRefiner(config)
}

// Refine rewrites the query with the refinement system instruction. The
// model output is returned verbatim apart from whitespace trimming; the
// pipeline falls back to the raw query when this call fails, so no retry
// happens here.
func (r *Refiner) Refine(ctx context.Context, rawQuery string) (string, error) {
	ctx, cancel := r.timeout(ctx)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(refinementPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(rawQuery),
			},
		},
	}

	response, err := r.client.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		r.logger.Error("failed to refine query", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		r.logger.Debug("no choices returned from model, keeping raw query")
		return rawQuery, nil
	}

	refined := strings.TrimSpace(response.Choices[0].Content)
	if refined == "" {
		return rawQuery, nil
	}

	return refined, nil
}
