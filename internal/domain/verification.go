package domain

import "time"

// IssueKind classifies a verification finding.
type IssueKind string

const (
	IssueKindLabel       IssueKind = "label"
	IssueKindOrientation IssueKind = "orientation"
	IssueKindMaterial    IssueKind = "material"
	IssueKindProportion  IssueKind = "proportion"
	IssueKindColor       IssueKind = "color"
	IssueKindOther       IssueKind = "other"
)

// IssueSeverity grades a verification finding.
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityMajor    IssueSeverity = "major"
	SeverityMinor    IssueSeverity = "minor"
)

// VerificationIssue is one defect reported by the consistency check, tied
// back to a known material where the report allowed a match.
type VerificationIssue struct {
	MaterialID   string        `json:"material_id,omitempty"`
	MaterialName string        `json:"material_name,omitempty"`
	Kind         IssueKind     `json:"kind"`
	Severity     IssueSeverity `json:"severity"`
	Description  string        `json:"description"`
}

// VerificationResult is the typed outcome of one consistency check.
type VerificationResult struct {
	Passed      bool
	Score       int
	Issues      []VerificationIssue
	Suggestions []string
}

// CriticalCount returns the number of critical issues in the result.
func (r VerificationResult) CriticalCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// VerificationLog is an append-only record of one verification call.
type VerificationLog struct {
	ID        string              `json:"id"`
	SceneID   string              `json:"scene_id"`
	CheckType string              `json:"check_type"`
	Score     int                 `json:"score"`
	Issues    []VerificationIssue `json:"issues"`
	CreatedAt time.Time           `json:"created_at"`
}
