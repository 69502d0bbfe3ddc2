package scenegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// ComposeInput is the structured scene data turned into instruction text.
type ComposeInput struct {
	Description      string
	EnrichedPrompt   string
	TemplateRef      string
	StyleTags        []string
	Materials        []domain.Material
	MotifCount       int
	BlueprintPresent bool
	ExtraRefCount    int
}

// allCategories drives the restriction builder: one negative rule is emitted
// for every category absent from the scene.
var allCategories = []struct {
	category domain.MaterialCategory
	rule     string
}{
	{domain.CategoryPaintPot, "Do not show any paint pots or paint containers; none are part of this scene."},
	{domain.CategoryBrush, "Do not show any brushes; none are part of this scene."},
	{domain.CategoryCanvasMotif, "Do not show any printed canvas motifs; none are part of this scene."},
	{domain.CategoryCanvas, "Do not show any blank canvases; none are part of this scene."},
	{domain.CategoryFrame, "Do not show any frames; none are part of this scene."},
	{domain.CategoryTool, "Do not show any painting tools; none are part of this scene."},
	{domain.CategoryPackaging, "Do not show any product packaging; none are part of this scene."},
	{domain.CategoryAccessory, "Do not show any accessories; none are part of this scene."},
}

const closingRestriction = "Only objects shown in the reference images and the uploaded motifs may appear in the scene. Invent nothing else."

// BuildGenerationInstruction renders the full instruction block sent to the
// image model.
func BuildGenerationInstruction(in ComposeInput) string {
	var sections []string

	description := strings.TrimSpace(in.EnrichedPrompt)
	if description == "" {
		description = strings.TrimSpace(in.Description)
	}
	if description != "" {
		sections = append(sections, description)
	}

	if block := buildMaterialBlock(in.Materials); block != "" {
		sections = append(sections, block)
	}

	if scale := BuildScaleStatement(in.Materials); scale != "" {
		sections = append(sections, scale)
	}

	restrictions := BuildRestrictions(in.Materials)
	sections = append(sections, "Restrictions:\n- "+strings.Join(restrictions, "\n- "))

	if in.BlueprintPresent {
		sections = append(sections, "One reference image is a layout blueprint: follow its composition and object placement, but render everything photorealistically.")
	}
	if in.ExtraRefCount > 0 {
		sections = append(sections, fmt.Sprintf("%d reference image(s) show people or objects that must appear in the scene as depicted.", in.ExtraRefCount))
	}
	if in.MotifCount > 0 {
		sections = append(sections, fmt.Sprintf("The last %d image(s) show the exact artwork that must appear on the canvas. Reproduce this artwork on the canvas faithfully, stroke for stroke; never replace or reinterpret it.", in.MotifCount))
	}

	return strings.Join(sections, "\n\n")
}

func buildMaterialBlock(materials []domain.Material) string {
	if len(materials) == 0 {
		return ""
	}
	var lines []string
	lines = append(lines, "Products in the scene:")
	for _, m := range materials {
		attrs := materialAttributes(m)
		line := fmt.Sprintf("- %s (%s)", m.Name, CategoryDisplayName(m.Category))
		if attrs != "" {
			line += ": " + attrs
		}
		lines = append(lines, line)
		lines = append(lines, "  "+PolicyFor(m.Category).FidelityNote)
	}
	return strings.Join(lines, "\n")
}

func materialAttributes(m domain.Material) string {
	var parts []string
	if v := strings.TrimSpace(m.Dimensions); v != "" {
		parts = append(parts, "size "+v)
	}
	if v := strings.TrimSpace(m.Color); v != "" {
		parts = append(parts, "color "+v)
	}
	if v := strings.TrimSpace(m.Surface); v != "" {
		parts = append(parts, "surface "+v)
	}
	if v := strings.TrimSpace(m.Weight); v != "" {
		parts = append(parts, "weight "+v)
	}
	if v := strings.TrimSpace(m.FormatCode); v != "" {
		parts = append(parts, "format "+v)
	}
	return strings.Join(parts, ", ")
}

// BuildRestrictions emits one negative rule per category absent from the
// active material set, plus the closing only-referenced-content rule.
func BuildRestrictions(materials []domain.Material) []string {
	present := map[domain.MaterialCategory]bool{}
	for _, m := range materials {
		present[m.Category] = true
	}
	var rules []string
	for _, entry := range allCategories {
		if !present[entry.category] {
			rules = append(rules, entry.rule)
		}
	}
	rules = append(rules, closingRestriction)
	return rules
}

var (
	sizePairRegexp   = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*[x×*]\s*(\d+(?:[.,]\d+)?)\s*(mm|cm)\s*$`)
	sizeScalarRegexp = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*(mm|cm)\s*$`)
)

// ParseSizeMM parses a declared material size ("40×50 cm", "24x30cm",
// "2 cm", "25 mm") into a millimeter scalar, using the larger dimension of a
// pair. Returns false for anything unparseable.
func ParseSizeMM(size string) (float64, bool) {
	if m := sizePairRegexp.FindStringSubmatch(size); m != nil {
		a, okA := parseDecimal(m[1])
		b, okB := parseDecimal(m[2])
		if !okA || !okB {
			return 0, false
		}
		value := a
		if b > value {
			value = b
		}
		return toMM(value, m[3]), true
	}
	if m := sizeScalarRegexp.FindStringSubmatch(size); m != nil {
		value, ok := parseDecimal(m[1])
		if !ok {
			return 0, false
		}
		return toMM(value, m[2]), true
	}
	return 0, false
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func toMM(value float64, unit string) float64 {
	if strings.EqualFold(unit, "cm") {
		return value * 10
	}
	return value
}

// BuildScaleStatement computes the smallest/largest parseable material sizes
// and emits a proportion statement. Skipped entirely when fewer than two
// sizes parse or smallest equals largest. Parse failures drop the material
// from the computation, never raise.
func BuildScaleStatement(materials []domain.Material) string {
	type sized struct {
		name string
		mm   float64
	}
	var sizes []sized
	for _, m := range materials {
		if mm, ok := ParseSizeMM(m.Dimensions); ok {
			sizes = append(sizes, sized{name: m.Name, mm: mm})
		}
	}
	if len(sizes) < 2 {
		return ""
	}
	smallest, largest := sizes[0], sizes[0]
	for _, s := range sizes[1:] {
		if s.mm < smallest.mm {
			smallest = s
		}
		if s.mm > largest.mm {
			largest = s
		}
	}
	if smallest.mm == largest.mm {
		return ""
	}
	ratio := largest.mm / smallest.mm
	return fmt.Sprintf(
		"Respect real-world proportions: %s (%.0f mm) is the largest object and %s (%.0f mm) the smallest, a size ratio of about %.1f to 1. Render every product at its true relative scale.",
		largest.name, largest.mm, smallest.name, smallest.mm, ratio)
}

// BuildChecklist renders the category-aware verification checklist sent to
// the analysis capability, including the expected report format.
func BuildChecklist(materials []domain.Material, sceneDescription string) string {
	var sb strings.Builder
	sb.WriteString("You are inspecting an AI-generated product photograph against ground-truth product data.\n")
	if desc := strings.TrimSpace(sceneDescription); desc != "" {
		sb.WriteString("Scene intent: " + desc + "\n")
	}
	sb.WriteString("\nProducts and checks:\n")
	for _, m := range materials {
		sb.WriteString(fmt.Sprintf("- %s (%s", m.Name, CategoryDisplayName(m.Category)))
		if attrs := materialAttributes(m); attrs != "" {
			sb.WriteString("; " + attrs)
		}
		sb.WriteString("): " + PolicyFor(m.Category).ChecklistNote + "\n")
	}
	sb.WriteString(`
Report strictly in this format:
SCORE: <integer 0-100 for overall consistency>
ISSUE: <product name> | <label|orientation|material|proportion|color|other> | <critical|major|minor> | <short description>
SUGGESTION: <one concrete correction>

Emit one ISSUE line per defect and one SUGGESTION line per fix. Omit ISSUE and SUGGESTION lines entirely when the image is fully consistent.`)
	return sb.String()
}
