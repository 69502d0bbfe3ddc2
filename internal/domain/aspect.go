package domain

import "strings"

// AspectRatio is one of the fixed ratios supported by the generation
// providers.
type AspectRatio string

const (
	AspectSquare            AspectRatio = "1:1"
	AspectLandscapeWide     AspectRatio = "16:9"
	AspectLandscapeClassic  AspectRatio = "4:3"
	AspectLandscapePhoto    AspectRatio = "3:2"
	AspectPortraitTall      AspectRatio = "9:16"
	AspectPortraitClassic   AspectRatio = "3:4"
	AspectPortraitPhoto     AspectRatio = "2:3"
	DefaultAspectRatio                  = AspectSquare
)

var aspectRatios = []struct {
	ratio AspectRatio
	value float64
}{
	{AspectSquare, 1.0},
	{AspectLandscapeWide, 16.0 / 9.0},
	{AspectLandscapeClassic, 4.0 / 3.0},
	{AspectLandscapePhoto, 3.0 / 2.0},
	{AspectPortraitTall, 9.0 / 16.0},
	{AspectPortraitClassic, 3.0 / 4.0},
	{AspectPortraitPhoto, 2.0 / 3.0},
}

// ResolveAspectRatio selects the supported ratio for a scene. A preset that
// names a supported ratio wins; otherwise the ratio nearest to the explicit
// pixel dimensions is chosen. Falls back to square when neither is usable.
func ResolveAspectRatio(preset string, width, height int) AspectRatio {
	preset = strings.TrimSpace(preset)
	for _, entry := range aspectRatios {
		if string(entry.ratio) == preset {
			return entry.ratio
		}
	}
	if width <= 0 || height <= 0 {
		return DefaultAspectRatio
	}
	target := float64(width) / float64(height)
	best := DefaultAspectRatio
	bestDiff := -1.0
	for _, entry := range aspectRatios {
		diff := entry.value - target
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best = entry.ratio
			bestDiff = diff
		}
	}
	return best
}
