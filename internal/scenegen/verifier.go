package scenegen

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/vision"
)

// PassScore is the minimum verification score for a pass.
const PassScore = 80

// neutralFallbackScore is reported when the analysis capability is
// unavailable. Verification is advisory, so the run still passes.
const neutralFallbackScore = 75

const checkTypeConsistency = "consistency"

// Report grammar. The analyzer is asked for exactly this shape, but the
// parser stays defensive: any line that does not match is ignored and
// missing parts fall back to neutral defaults.
var (
	scoreRegexp      = regexp.MustCompile(`(?im)^\s*(?:overall[ _-]?)?score\s*[:=]\s*(\d{1,3})`)
	issueRegexp      = regexp.MustCompile(`(?im)^\s*-?\s*issue\s*:\s*(.+)$`)
	suggestionRegexp = regexp.MustCompile(`(?im)^\s*-?\s*suggestion\s*:\s*(.+)$`)
)

// Verifier scores a rendered image against material ground truth. Analyzer
// failures are absorbed into a neutral passing result; a verification log row
// is appended on every call regardless of outcome.
type Verifier struct {
	analyzer vision.Analyzer
	logs     domain.VerificationLogRepository
	logger   zerolog.Logger
}

func NewVerifier(analyzer vision.Analyzer, logs domain.VerificationLogRepository, logger zerolog.Logger) *Verifier {
	return &Verifier{analyzer: analyzer, logs: logs, logger: logger}
}

// Verify runs one consistency check of the rendered image.
func (v *Verifier) Verify(ctx context.Context, image []byte, mimeType string, materials []domain.Material, sceneID, sceneDescription string) domain.VerificationResult {
	result := v.analyze(ctx, image, mimeType, materials, sceneDescription)

	if err := v.logs.Append(ctx, &domain.VerificationLog{
		ID:        uuid.NewString(),
		SceneID:   sceneID,
		CheckType: checkTypeConsistency,
		Score:     result.Score,
		Issues:    result.Issues,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		v.logger.Error().Err(err).Str("scene_id", sceneID).Msg("verifier: append verification log failed")
	}

	return result
}

func (v *Verifier) analyze(ctx context.Context, image []byte, mimeType string, materials []domain.Material, sceneDescription string) domain.VerificationResult {
	if v.analyzer == nil {
		return neutralFallbackResult()
	}
	report, err := v.analyzer.Analyze(ctx, vision.AnalyzeRequest{
		Image:     image,
		MimeType:  mimeType,
		Checklist: BuildChecklist(materials, sceneDescription),
	})
	if err != nil {
		v.logger.Warn().Err(err).Msg("verifier: analysis unavailable, using neutral result")
		return neutralFallbackResult()
	}
	return ParseReport(report, materials)
}

func neutralFallbackResult() domain.VerificationResult {
	return domain.VerificationResult{
		Passed: true,
		Score:  neutralFallbackScore,
		Issues: []domain.VerificationIssue{{
			Kind:        domain.IssueKindOther,
			Severity:    domain.SeverityMinor,
			Description: "verification unavailable",
		}},
	}
}

// ParseReport extracts the typed result from the analyzer's semi-structured
// report. The parser is lossy and advisory: a missing score defaults to the
// neutral value and malformed lines are dropped.
func ParseReport(report string, materials []domain.Material) domain.VerificationResult {
	result := domain.VerificationResult{Score: neutralFallbackScore}

	if m := scoreRegexp.FindStringSubmatch(report); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil {
			if score < 0 {
				score = 0
			}
			if score > 100 {
				score = 100
			}
			result.Score = score
		}
	}

	for _, m := range issueRegexp.FindAllStringSubmatch(report, -1) {
		if issue, ok := parseIssueLine(m[1], materials); ok {
			result.Issues = append(result.Issues, issue)
		}
	}

	for _, m := range suggestionRegexp.FindAllStringSubmatch(report, -1) {
		if suggestion := strings.TrimSpace(m[1]); suggestion != "" {
			result.Suggestions = append(result.Suggestions, suggestion)
		}
	}

	result.Passed = result.Score >= PassScore && result.CriticalCount() == 0
	return result
}

func parseIssueLine(line string, materials []domain.Material) (domain.VerificationIssue, bool) {
	fields := strings.Split(line, "|")
	if len(fields) < 2 {
		return domain.VerificationIssue{}, false
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	issue := domain.VerificationIssue{
		MaterialName: fields[0],
		Kind:         domain.IssueKindOther,
		Severity:     domain.SeverityMinor,
	}
	if len(fields) > 1 {
		issue.Kind = parseIssueKind(fields[1])
	}
	if len(fields) > 2 {
		issue.Severity = parseSeverity(fields[2])
	}
	if len(fields) > 3 {
		issue.Description = strings.Join(fields[3:], " | ")
	}
	if issue.Description == "" {
		issue.Description = line
	}
	issue.MaterialID = matchMaterialID(issue.MaterialName, materials)
	return issue, true
}

func parseIssueKind(s string) domain.IssueKind {
	switch strings.ToLower(s) {
	case "label":
		return domain.IssueKindLabel
	case "orientation":
		return domain.IssueKindOrientation
	case "material":
		return domain.IssueKindMaterial
	case "proportion":
		return domain.IssueKindProportion
	case "color", "colour":
		return domain.IssueKindColor
	default:
		return domain.IssueKindOther
	}
}

func parseSeverity(s string) domain.IssueSeverity {
	switch strings.ToLower(s) {
	case "critical":
		return domain.SeverityCritical
	case "major":
		return domain.SeverityMajor
	default:
		return domain.SeverityMinor
	}
}

// matchMaterialID fuzzy-matches a reported product name back to a known
// material: exact match first, then substring either way, then best token
// overlap. Returns an empty id when nothing plausibly matches.
func matchMaterialID(name string, materials []domain.Material) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return ""
	}

	for _, m := range materials {
		if strings.ToLower(m.Name) == needle {
			return m.ID
		}
	}
	for _, m := range materials {
		haystack := strings.ToLower(m.Name)
		if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
			return m.ID
		}
	}

	bestID := ""
	bestOverlap := 0
	needleTokens := strings.Fields(needle)
	for _, m := range materials {
		overlap := 0
		haystack := strings.ToLower(m.Name)
		for _, token := range needleTokens {
			if len(token) > 2 && strings.Contains(haystack, token) {
				overlap++
			}
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			bestID = m.ID
		}
	}
	return bestID
}
