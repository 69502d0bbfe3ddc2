package prompt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EnrichRequest carries the raw scene intent to be expanded into a fuller
// photographic description.
type EnrichRequest struct {
	Description string
	TemplateRef string
	StyleTags   []string
}

// Enricher expands a short scene description into the richer prompt actually
// sent to the image model. Implementations may return an empty string; the
// orchestrator falls back to the raw description in that case.
type Enricher interface {
	Enrich(ctx context.Context, req EnrichRequest) (string, error)
}

const (
	geminiProviderName = "gemini"
	staticProviderName = "static"
)

// StaticEnricher is the deterministic fallback used when no remote enricher
// is reachable. It produces a serviceable photographic framing of the raw
// description without any external call.
type StaticEnricher struct{}

func NewStaticEnricher() *StaticEnricher {
	return &StaticEnricher{}
}

func (s *StaticEnricher) Enrich(ctx context.Context, req EnrichRequest) (string, error) {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return "", nil
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("A professional product photograph: %s.", strings.TrimSuffix(desc, ".")))
	if len(req.StyleTags) > 0 {
		c := cases.Title(language.Und)
		tags := make([]string, 0, len(req.StyleTags))
		for _, tag := range req.StyleTags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, c.String(tag))
			}
		}
		if len(tags) > 0 {
			lines = append(lines, "Mood and style: "+strings.Join(tags, ", ")+".")
		}
	}
	lines = append(lines, "Soft natural lighting, sharp focus on the products, realistic materials and shadows.")
	return strings.Join(lines, " "), nil
}

var _ Enricher = (*StaticEnricher)(nil)
