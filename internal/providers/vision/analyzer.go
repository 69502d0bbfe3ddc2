package vision

import (
	"context"
	"errors"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/genai"
)

// AnalyzeRequest carries a rendered image and the checklist it is judged
// against.
type AnalyzeRequest struct {
	Image     []byte
	MimeType  string
	Checklist string
}

// Analyzer inspects a rendered image against material ground truth and
// returns a semi-structured text report. Errors are surfaced to the caller;
// the verifier absorbs them into a neutral result.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
}

// GeminiAnalyzer implements Analyzer on top of the Gemini client.
type GeminiAnalyzer struct {
	client *genai.Client
}

func NewGeminiAnalyzer(client *genai.Client) (*GeminiAnalyzer, error) {
	if client == nil {
		return nil, errors.New("vision: genai client is required")
	}
	return &GeminiAnalyzer{client: client}, nil
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	return a.client.AnalyzeImage(ctx, genai.InlineImage{Data: req.Image, MimeType: req.MimeType}, req.Checklist)
}

var _ Analyzer = (*GeminiAnalyzer)(nil)
