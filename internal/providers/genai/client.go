package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
	// RequestsPerMinute throttles outbound generateContent calls. Zero
	// disables throttling.
	RequestsPerMinute int
}

// Client is a lightweight facade over the Gemini generateContent REST API
// covering the three capabilities the pipeline needs: text expansion, image
// generation with reference images, and image analysis.
type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *infra.Logger
	limiter    *rate.Limiter
}

// InlineImage is an image payload sent or received inline.
type InlineImage struct {
	Data     []byte
	MimeType string
}

// ImageRequest carries everything needed to generate one image.
type ImageRequest struct {
	Prompt      string
	References  []InlineImage
	SourceImage *InlineImage
	AspectRatio string
}

// ImageResult is the normalized generation output.
type ImageResult struct {
	Data              []byte
	MimeType          string
	CostEstimateCents int
}

// Flat per-call cost estimates, tracked on render jobs for reporting.
const (
	imageCostCents   = 4
	textCostCents    = 1
	analyzeCostCents = 1
)

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature        float64            `json:"temperature,omitempty"`
	CandidateCount     int                `json:"candidateCount,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. The API key is
// required; credential resolution happens before this constructor is called.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("genai: api key is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 2)
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: httpClient,
		logger:     logger,
		limiter:    limiter,
	}, nil
}

// GenerateText expands the user instruction under the given system
// instruction and returns the plain-text response. An empty response is
// returned as-is; callers decide how to degrade.
func (c *Client) GenerateText(ctx context.Context, system, user string) (string, error) {
	req := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: user}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    0.5,
			CandidateCount: 1,
		},
	}
	if strings.TrimSpace(system) != "" {
		req.SystemInstruction = &geminiContent{Role: "user", Parts: []geminiPart{{Text: system}}}
	}
	resp, err := c.generateContent(ctx, c.textModel, req)
	if err != nil {
		return "", err
	}
	text, _ := extractParts(resp)
	return strings.TrimSpace(text), nil
}

// GenerateImage produces one image grounded on the ordered reference images.
// When a source image is present the call is an edit of that image rather
// than a from-scratch generation.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	parts := []geminiPart{{Text: req.Prompt}}
	if req.SourceImage != nil {
		parts = append(parts, inlinePart(*req.SourceImage))
	}
	for _, ref := range req.References {
		parts = append(parts, inlinePart(ref))
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &geminiImageConfig{AspectRatio: req.AspectRatio},
		},
	}
	resp, err := c.generateContent(ctx, c.imageModel, payload)
	if err != nil {
		return nil, err
	}
	_, images := extractParts(resp)
	if len(images) == 0 {
		return nil, fmt.Errorf("genai: response contained no image data")
	}
	return &ImageResult{
		Data:              images[0].Data,
		MimeType:          images[0].MimeType,
		CostEstimateCents: imageCostCents,
	}, nil
}

// AnalyzeImage runs a text analysis of the given image and returns the raw
// report text.
func (c *Client) AnalyzeImage(ctx context.Context, image InlineImage, prompt string) (string, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}, inlinePart(image)},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    0.2,
			CandidateCount: 1,
		},
	}
	resp, err := c.generateContent(ctx, c.textModel, payload)
	if err != nil {
		return "", err
	}
	text, _ := extractParts(resp)
	return strings.TrimSpace(text), nil
}

func (c *Client) generateContent(ctx context.Context, model string, payload geminiGenerateContentRequest) (geminiGenerateContentResponse, error) {
	var decoded geminiGenerateContentResponse

	if err := c.limiter.Wait(ctx); err != nil {
		return decoded, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return decoded, fmt.Errorf("genai: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return decoded, fmt.Errorf("genai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	started := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return decoded, fmt.Errorf("genai: request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return decoded, fmt.Errorf("genai: read response: %w", err)
	}

	c.logger.Debug().
		Str("model", model).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("genai: generateContent")

	if httpResp.StatusCode >= 400 {
		var apiErr geminiErrorResponse
		if json.Unmarshal(rawBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return decoded, fmt.Errorf("genai: %s (%s)", apiErr.Error.Message, httpResp.Status)
		}
		return decoded, fmt.Errorf("genai: %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return decoded, fmt.Errorf("genai: decode response: %w", err)
	}
	return decoded, nil
}

func inlinePart(img InlineImage) geminiPart {
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return geminiPart{InlineData: &geminiInlineData{
		MimeType: mime,
		Data:     base64.StdEncoding.EncodeToString(img.Data),
	}}
}

func extractParts(resp geminiGenerateContentResponse) (string, []InlineImage) {
	var texts []string
	var images []InlineImage
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
			if part.InlineData != nil && part.InlineData.Data != "" {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					continue
				}
				images = append(images, InlineImage{Data: data, MimeType: part.InlineData.MimeType})
			}
		}
	}
	return strings.Join(texts, "\n"), images
}
