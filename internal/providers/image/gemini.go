package image

import (
	"context"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/genai"
)

// GeminiGenerator implements Generator on top of the Gemini client.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	apiReq := genai.ImageRequest{
		Prompt:      req.Prompt,
		AspectRatio: string(req.AspectRatio),
		References:  make([]genai.InlineImage, len(req.References)),
	}
	for i, ref := range req.References {
		apiReq.References[i] = genai.InlineImage{Data: ref.Data, MimeType: ref.MimeType}
	}
	if req.SourceImage != nil {
		apiReq.SourceImage = &genai.InlineImage{Data: req.SourceImage.Data, MimeType: req.SourceImage.MimeType}
	}

	result, err := g.client.GenerateImage(ctx, apiReq)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:              result.Data,
		MimeType:          result.MimeType,
		CostEstimateCents: result.CostEstimateCents,
	}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
