package scenegen

import (
	"fmt"
	"strings"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// RefineScoreThreshold is the score below which an automatic retry is
// triggered for a failed verification.
const RefineScoreThreshold = 70

// ShouldRefine decides whether to enqueue another generation pass. Retry iff
// the check failed, the attempt cap is not reached, and either the score is
// below the threshold or a critical issue exists. On stop the scene
// finalizes as done with the latest image regardless of score; the system
// never blocks on verification.
func ShouldRefine(result domain.VerificationResult, attempts int) bool {
	if result.Passed {
		return false
	}
	if attempts >= domain.MaxVerificationAttempts {
		return false
	}
	return result.Score < RefineScoreThreshold || result.CriticalCount() > 0
}

// BuildCorrectiveInstruction synthesizes the refinement prompt from a
// verification result: critical issues first, then major, then free-text
// suggestions, closing with the preserve-composition directive. Deterministic
// for identical input (stable ordering by severity, then input order).
func BuildCorrectiveInstruction(result domain.VerificationResult) string {
	var lines []string
	lines = append(lines, "Correct the following defects in the image:")

	appendIssues := func(severity domain.IssueSeverity) {
		for _, issue := range result.Issues {
			if issue.Severity != severity {
				continue
			}
			subject := issue.MaterialName
			if subject == "" {
				subject = "the scene"
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s: %s", issue.Severity, subject, issue.Description))
		}
	}
	appendIssues(domain.SeverityCritical)
	appendIssues(domain.SeverityMajor)

	for _, suggestion := range result.Suggestions {
		lines = append(lines, "- "+suggestion)
	}

	lines = append(lines, "Apply only these corrections. Preserve the existing composition, lighting, and camera angle in every other respect.")
	return strings.Join(lines, "\n")
}
