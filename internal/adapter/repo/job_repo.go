package repo

import (
	"context"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/sqlinline"
)

// RenderJobRepositoryPG implements domain.RenderJobRepository.
type RenderJobRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewRenderJobRepository(sql infra.SQLExecutor) *RenderJobRepositoryPG {
	return &RenderJobRepositoryPG{sql: sql}
}

func (r *RenderJobRepositoryPG) Create(ctx context.Context, job *domain.RenderJob) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertRenderJob,
		job.ID,
		job.SceneID,
		string(job.Type),
		string(job.Status),
	)
	// The scene-active unique index rejects a second pending or processing
	// job for the same scene.
	if infra.IsUniqueViolation(err) {
		return domain.ErrSceneBusy
	}
	return err
}

func (r *RenderJobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.RenderJob, error) {
	return r.scanJob(ctx, sqlinline.QSelectRenderJobByID, id)
}

func (r *RenderJobRepositoryPG) Claim(ctx context.Context) (*domain.RenderJob, error) {
	return r.scanJob(ctx, sqlinline.QClaimRenderJob)
}

func (r *RenderJobRepositoryPG) scanJob(ctx context.Context, query string, args ...any) (*domain.RenderJob, error) {
	row := r.sql.QueryRow(ctx, query, args...)
	var job domain.RenderJob
	if err := row.Scan(
		&job.ID,
		&job.SceneID,
		&job.Type,
		&job.Status,
		&job.ErrorMessage,
		&job.CostEstimateCents,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *RenderJobRepositoryPG) Complete(ctx context.Context, id string, costEstimateCents int) error {
	_, err := r.sql.Exec(ctx, sqlinline.QCompleteRenderJob, id, costEstimateCents)
	return err
}

func (r *RenderJobRepositoryPG) Fail(ctx context.Context, id, errorMessage string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QFailRenderJob, id, errorMessage)
	return err
}

func (r *RenderJobRepositoryPG) SweepProcessing(ctx context.Context, errorMessage string) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QSweepProcessingJobs, errorMessage)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ domain.RenderJobRepository = (*RenderJobRepositoryPG)(nil)
