package domain

import "time"

// ImageStatus enumerates the scene rendering lifecycle states.
type ImageStatus string

const (
	ImageStatusDraft      ImageStatus = "draft"
	ImageStatusGenerating ImageStatus = "generating"
	ImageStatusDone       ImageStatus = "done"
	ImageStatusFailed     ImageStatus = "failed"
)

// MaxVerificationAttempts caps the automatic refinement loop per scene.
const MaxVerificationAttempts = 3

// Scene is one generated product photograph together with its inputs and
// lifecycle metadata.
type Scene struct {
	ID                   string
	ProjectID            string
	Description          string
	TemplateRef          string
	StyleTags            []string
	MaterialIDs          []string
	BlueprintPath        string
	MotifPaths           []string
	ExtraRefPaths        []string
	AspectRatio          AspectRatio
	Width                int
	Height               int
	EnrichedPrompt       string
	LastRefinementPrompt string
	ImagePath            string
	ImageStatus          ImageStatus
	LastErrorMessage     string
	VerificationScore    *int
	VerificationIssues   []VerificationIssue
	VerificationAttempts int
	ReviewRating         *int
	ReviewNotes          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
