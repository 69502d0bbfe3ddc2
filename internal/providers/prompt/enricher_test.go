package prompt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/genai"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testGenaiClient(t *testing.T, rt roundTripFunc) *genai.Client {
	t.Helper()
	client, err := genai.NewClient(genai.Options{
		APIKey:     "dummy",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestStaticEnricher(t *testing.T) {
	enricher := NewStaticEnricher()
	got, err := enricher.Enrich(context.Background(), EnrichRequest{
		Description: "three paint pots on a shelf.",
		StyleTags:   []string{"warm", " rustic "},
	})
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if !strings.Contains(got, "three paint pots on a shelf") {
		t.Fatalf("enriched %q drops the description", got)
	}
	if !strings.Contains(got, "Warm, Rustic") {
		t.Fatalf("enriched %q misses the title-cased style tags", got)
	}
}

func TestStaticEnricherEmptyDescription(t *testing.T) {
	got, err := NewStaticEnricher().Enrich(context.Background(), EnrichRequest{})
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if got != "" {
		t.Fatalf("Enrich(empty) = %q, want empty", got)
	}
}

func TestGeminiEnricherFallsBackOnError(t *testing.T) {
	client := testGenaiClient(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	var capturedReason string
	enricher, err := NewGeminiEnricher(GeminiOptions{
		Client:   client,
		Fallback: NewStaticEnricher(),
		OnFallback: func(reason string, err error) {
			capturedReason = reason
		},
	})
	if err != nil {
		t.Fatalf("NewGeminiEnricher returned error: %v", err)
	}

	got, err := enricher.Enrich(context.Background(), EnrichRequest{Description: "a cozy studio"})
	if err != nil {
		t.Fatalf("Enrich returned error despite fallback: %v", err)
	}
	if !strings.Contains(got, "a cozy studio") {
		t.Fatalf("fallback output %q drops the description", got)
	}
	if capturedReason != "remote_error" {
		t.Fatalf("fallback reason = %q, want remote_error", capturedReason)
	}
}

func TestGeminiEnricherFallsBackOnEmptyResponse(t *testing.T) {
	client := testGenaiClient(t, func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`)),
		}, nil
	})
	var capturedReason string
	enricher, err := NewGeminiEnricher(GeminiOptions{
		Client:   client,
		Fallback: NewStaticEnricher(),
		OnFallback: func(reason string, _ error) {
			capturedReason = reason
		},
	})
	if err != nil {
		t.Fatalf("NewGeminiEnricher returned error: %v", err)
	}

	if _, err := enricher.Enrich(context.Background(), EnrichRequest{Description: "a scene"}); err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if capturedReason != "empty_response" {
		t.Fatalf("fallback reason = %q, want empty_response", capturedReason)
	}
}

func TestGeminiEnricherUsesRemoteText(t *testing.T) {
	client := testGenaiClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"candidates":[{"content":{"parts":[{"text":"A lush painting studio at dusk."}]}}]}`)),
		}, nil
	})
	enricher, err := NewGeminiEnricher(GeminiOptions{
		Client:   client,
		Fallback: NewStaticEnricher(),
		OnFallback: func(string, error) {
			t.Fatal("fallback invoked on a successful remote call")
		},
	})
	if err != nil {
		t.Fatalf("NewGeminiEnricher returned error: %v", err)
	}

	got, err := enricher.Enrich(context.Background(), EnrichRequest{Description: "studio"})
	if err != nil {
		t.Fatalf("Enrich returned error: %v", err)
	}
	if got != "A lush painting studio at dusk." {
		t.Fatalf("Enrich = %q, want the remote text", got)
	}
}

func TestGeminiEnricherRequiresClient(t *testing.T) {
	if _, err := NewGeminiEnricher(GeminiOptions{}); err == nil {
		t.Fatal("NewGeminiEnricher accepted a nil client")
	}
}
