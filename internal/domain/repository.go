package domain

import "context"

// SceneRepository defines persistence for scenes.
type SceneRepository interface {
	Create(ctx context.Context, scene *Scene) error
	GetByID(ctx context.Context, id string) (*Scene, error)
	// MarkGenerating atomically flips the scene into generating. Returns
	// ErrSceneBusy when the scene is already generating, so two runs can
	// never race on the same scene.
	MarkGenerating(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status ImageStatus, errorMessage string) error
	UpdateImage(ctx context.Context, id, imagePath, enrichedPrompt string) error
	UpdateVerification(ctx context.Context, id string, score int, issues []VerificationIssue) error
	SetRefinement(ctx context.Context, id, correctiveInstruction string, attempts int) error
	SetReview(ctx context.Context, id string, rating *int, notes string) error
	Delete(ctx context.Context, id string) error
	// SweepGenerating fails every scene left generating by a previous
	// process lifetime with no pending or processing job to finish it.
	// Returns the number of swept scenes.
	SweepGenerating(ctx context.Context, errorMessage string) (int64, error)
}

// RenderJobRepository defines persistence for render jobs.
type RenderJobRepository interface {
	// Create enqueues a job. At most one pending or processing job may
	// exist per scene; Create returns ErrSceneBusy when that slot is
	// already taken.
	Create(ctx context.Context, job *RenderJob) error
	GetByID(ctx context.Context, id string) (*RenderJob, error)
	// Claim atomically moves the oldest pending job to processing. Returns
	// ErrNotFound when no job is claimable.
	Claim(ctx context.Context) (*RenderJob, error)
	Complete(ctx context.Context, id string, costEstimateCents int) error
	Fail(ctx context.Context, id, errorMessage string) error
	// SweepProcessing fails every job left processing by a previous process
	// lifetime. Returns the number of swept jobs.
	SweepProcessing(ctx context.Context, errorMessage string) (int64, error)
}

// MaterialRepository reads materials and their images. The core never writes
// materials.
type MaterialRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]Material, error)
}

// SceneVersionRepository defines persistence for archived scene snapshots.
type SceneVersionRepository interface {
	Create(ctx context.Context, version *SceneVersion) error
	NextVersionNo(ctx context.Context, sceneID string) (int, error)
	ListByScene(ctx context.Context, sceneID string) ([]SceneVersion, error)
	GetBySceneAndNo(ctx context.Context, sceneID string, versionNo int) (*SceneVersion, error)
	Delete(ctx context.Context, id string) error
}

// VerificationLogRepository appends verification records.
type VerificationLogRepository interface {
	Append(ctx context.Context, log *VerificationLog) error
	ListByScene(ctx context.Context, sceneID string) ([]VerificationLog, error)
}
