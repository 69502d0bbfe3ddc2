package image

import (
	"context"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// Reference is one decoded reference image handed to the generator. Order is
// meaningful: downstream prompt text addresses images by position.
type Reference struct {
	Data     []byte
	MimeType string
}

// GenerateRequest carries the composed instruction, the ordered reference
// set, and the optional prior image used as an edit source on refinement.
type GenerateRequest struct {
	Prompt      string
	References  []Reference
	SourceImage *Reference
	AspectRatio domain.AspectRatio
}

// Result is the normalized output of one generation call.
type Result struct {
	Data              []byte
	MimeType          string
	CostEstimateCents int
}

// Generator produces one rendered scene image.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
}
