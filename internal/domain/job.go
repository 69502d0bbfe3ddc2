package domain

import "time"

// RenderJobType enumerates supported generation attempts.
type RenderJobType string

const (
	RenderJobTypeImage           RenderJobType = "image"
	RenderJobTypeImageRefinement RenderJobType = "image_refinement"
)

// RenderJobStatus enumerates job lifecycle states.
type RenderJobStatus string

const (
	RenderJobStatusPending    RenderJobStatus = "pending"
	RenderJobStatusProcessing RenderJobStatus = "processing"
	RenderJobStatusCompleted  RenderJobStatus = "completed"
	RenderJobStatusFailed     RenderJobStatus = "failed"
)

// RenderJob encapsulates one generation attempt for a scene. A job is
// finalized exactly once, to completed or failed.
type RenderJob struct {
	ID                string
	SceneID           string
	Type              RenderJobType
	Status            RenderJobStatus
	ErrorMessage      string
	CostEstimateCents int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
