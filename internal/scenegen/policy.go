package scenegen

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// perspectiveWeight maps perspective-label fragments to a rank weight. Rules
// are checked in order; the first fragment contained in the label wins.
type perspectiveWeight struct {
	fragments []string
	weight    int
}

// unknownPerspectiveWeight is the floor every unrecognized label falls to.
const unknownPerspectiveWeight = 10

// CategoryPolicy bundles every per-category decision the pipeline makes so
// ranking, selection capping, and instruction building cannot drift apart.
type CategoryPolicy struct {
	// Tier orders material groups during reference selection. Lower first.
	Tier int
	// ImageCap limits how many images one material of this category may
	// contribute to the reference set.
	ImageCap int
	// RankRules score perspective labels, best first.
	RankRules []perspectiveWeight
	// ExcludedFragments name perspective labels that must never be
	// selected at all.
	ExcludedFragments []string
	// FidelityNote is the per-category instruction appended for each
	// material of this category.
	FidelityNote string
	// ChecklistNote is the per-category verification instruction.
	ChecklistNote string
}

var defaultPolicy = CategoryPolicy{
	Tier:     3,
	ImageCap: 2,
	RankRules: []perspectiveWeight{
		{fragments: []string{"front"}, weight: 100},
		{fragments: []string{"detail"}, weight: 80},
		{fragments: []string{"side"}, weight: 60},
		{fragments: []string{"top"}, weight: 40},
	},
	FidelityNote:  "Reproduce this product exactly as shown in its reference images, including shape, color, and surface finish.",
	ChecklistNote: "Check that the product's overall appearance, color, and proportions match the reference images.",
}

var categoryPolicies = map[domain.MaterialCategory]CategoryPolicy{
	domain.CategoryPaintPot: {
		Tier:     1,
		ImageCap: 5,
		RankRules: []perspectiveWeight{
			{fragments: []string{"label", "detail"}, weight: 100},
			{fragments: []string{"front"}, weight: 90},
			{fragments: []string{"top"}, weight: 80},
			{fragments: []string{"packaged", "pack"}, weight: 70},
		},
		FidelityNote:  "This paint pot carries a small printed alphanumeric label of roughly 2 characters. The label must stay crisp and legible exactly as printed in the reference images.",
		ChecklistNote: "Verify the printed pot label: it must be legible, correctly positioned, and match the reference spelling exactly.",
	},
	domain.CategoryBrush: {
		Tier:     2,
		ImageCap: 3,
		RankRules: []perspectiveWeight{
			{fragments: []string{"bristle"}, weight: 100},
			{fragments: []string{"side"}, weight: 90},
			{fragments: []string{"detail"}, weight: 80},
		},
		FidelityNote:  "Preserve the exact bristle shape, ferrule, and handle of this brush as shown in the reference images.",
		ChecklistNote: "Verify bristle shape and handle fidelity against the reference images.",
	},
	domain.CategoryCanvasMotif: {
		Tier:     3,
		ImageCap: 2,
		RankRules: []perspectiveWeight{
			{fragments: []string{"front"}, weight: 100},
			{fragments: []string{"detail"}, weight: 90},
		},
		// The back face shows packaging text only, never the paintable
		// side, so it must not reach the model at all.
		ExcludedFragments: []string{"back"},
		FidelityNote:      "The reference images of this canvas show its format and frame only. Do not copy any motif printed on them; the canvas content comes exclusively from the uploaded motif images.",
		ChecklistNote:     "Verify only the front face of the canvas is visible and its format matches the reference.",
	},
}

// PolicyFor returns the category policy, falling back to the shared default
// for categories without special handling.
func PolicyFor(category domain.MaterialCategory) CategoryPolicy {
	if policy, ok := categoryPolicies[category]; ok {
		return policy
	}
	return defaultPolicy
}

var titleCaser = cases.Title(language.Und)

// CategoryDisplayName renders a category constant as prose ("paint_pot" ->
// "Paint Pot").
func CategoryDisplayName(category domain.MaterialCategory) string {
	return titleCaser.String(strings.ReplaceAll(string(category), "_", " "))
}
