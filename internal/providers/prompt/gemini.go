package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/genai"
)

const enrichSystemInstruction = `You expand short product-scene briefs into rich photographic descriptions
for an AI image model. Describe composition, lighting, surfaces, and mood in
2-4 sentences. Never invent products that are not mentioned. Respond with the
description only, no preamble.`

// GeminiOptions configures the Gemini-backed enricher.
type GeminiOptions struct {
	Client   *genai.Client
	Fallback Enricher
	// OnFallback is invoked whenever the remote call is skipped or failed
	// and the fallback enricher takes over.
	OnFallback func(reason string, err error)
}

// GeminiEnricher expands scene descriptions through the Gemini text model,
// degrading to a deterministic fallback on any failure. Enrichment is never a
// hard gate on generation.
type GeminiEnricher struct {
	client     *genai.Client
	fallback   Enricher
	onFallback func(reason string, err error)
}

func NewGeminiEnricher(opts GeminiOptions) (*GeminiEnricher, error) {
	if opts.Client == nil {
		return nil, errors.New("prompt: genai client is required")
	}
	return &GeminiEnricher{
		client:     opts.Client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (g *GeminiEnricher) Enrich(ctx context.Context, req EnrichRequest) (string, error) {
	user := buildEnrichUserPrompt(req)
	text, err := g.client.GenerateText(ctx, enrichSystemInstruction, user)
	if err != nil {
		return g.useFallback(ctx, req, "remote_error", err)
	}
	if strings.TrimSpace(text) == "" {
		return g.useFallback(ctx, req, "empty_response", nil)
	}
	return text, nil
}

func (g *GeminiEnricher) useFallback(ctx context.Context, req EnrichRequest, reason string, err error) (string, error) {
	if g.onFallback != nil {
		g.onFallback(reason, err)
	}
	if g.fallback == nil {
		return "", nil
	}
	return g.fallback.Enrich(ctx, req)
}

func buildEnrichUserPrompt(req EnrichRequest) string {
	var sb strings.Builder
	sb.WriteString("Scene brief: ")
	sb.WriteString(strings.TrimSpace(req.Description))
	if ref := strings.TrimSpace(req.TemplateRef); ref != "" {
		sb.WriteString(fmt.Sprintf("\nLayout template: %s", ref))
	}
	if len(req.StyleTags) > 0 {
		sb.WriteString("\nStyle tags: " + strings.Join(req.StyleTags, ", "))
	}
	return sb.String()
}

var _ Enricher = (*GeminiEnricher)(nil)
