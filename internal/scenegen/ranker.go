package scenegen

import (
	"strings"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// Rank scores how well a perspective label depicts diagnostic detail for a
// material of the given category. Higher is better; 0 means the view is
// excluded entirely. Pure function: unknown labels fall to the lowest tier,
// never an error.
func Rank(category domain.MaterialCategory, perspective string) int {
	policy := PolicyFor(category)
	label := strings.ToLower(strings.TrimSpace(perspective))

	for _, fragment := range policy.ExcludedFragments {
		if strings.Contains(label, fragment) {
			return 0
		}
	}
	for _, rule := range policy.RankRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(label, fragment) {
				return rule.weight
			}
		}
	}
	return unknownPerspectiveWeight
}

// Excluded reports whether the perspective must be dropped before selection.
func Excluded(category domain.MaterialCategory, perspective string) bool {
	return Rank(category, perspective) == 0
}
