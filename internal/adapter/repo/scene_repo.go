package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/sqlinline"
)

// SceneRepositoryPG implements domain.SceneRepository.
type SceneRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSceneRepository(sql infra.SQLExecutor) *SceneRepositoryPG {
	return &SceneRepositoryPG{sql: sql}
}

func (r *SceneRepositoryPG) Create(ctx context.Context, scene *domain.Scene) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertScene,
		scene.ID,
		scene.ProjectID,
		scene.Description,
		scene.TemplateRef,
		scene.StyleTags,
		scene.MaterialIDs,
		scene.BlueprintPath,
		scene.MotifPaths,
		scene.ExtraRefPaths,
		string(scene.AspectRatio),
		scene.Width,
		scene.Height,
		string(scene.ImageStatus),
	)
	return err
}

func (r *SceneRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Scene, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectSceneByID, id)

	var scene domain.Scene
	var issuesRaw []byte
	if err := row.Scan(
		&scene.ID,
		&scene.ProjectID,
		&scene.Description,
		&scene.TemplateRef,
		&scene.StyleTags,
		&scene.MaterialIDs,
		&scene.BlueprintPath,
		&scene.MotifPaths,
		&scene.ExtraRefPaths,
		&scene.AspectRatio,
		&scene.Width,
		&scene.Height,
		&scene.EnrichedPrompt,
		&scene.LastRefinementPrompt,
		&scene.ImagePath,
		&scene.ImageStatus,
		&scene.LastErrorMessage,
		&scene.VerificationScore,
		&issuesRaw,
		&scene.VerificationAttempts,
		&scene.ReviewRating,
		&scene.ReviewNotes,
		&scene.CreatedAt,
		&scene.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(issuesRaw) > 0 {
		if err := json.Unmarshal(issuesRaw, &scene.VerificationIssues); err != nil {
			return nil, fmt.Errorf("decode verification issues: %w", err)
		}
	}
	return &scene, nil
}

func (r *SceneRepositoryPG) MarkGenerating(ctx context.Context, id string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QMarkSceneGenerating, id)
	var updated string
	if err := row.Scan(&updated); err != nil {
		if infra.IsNoRows(err) {
			// Either the scene does not exist or it is already
			// generating; disambiguate for the caller.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return getErr
			}
			return domain.ErrSceneBusy
		}
		return err
	}
	return nil
}

func (r *SceneRepositoryPG) SetStatus(ctx context.Context, id string, status domain.ImageStatus, errorMessage string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QSetSceneStatus, id, string(status), errorMessage)
	return err
}

func (r *SceneRepositoryPG) UpdateImage(ctx context.Context, id, imagePath, enrichedPrompt string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateSceneImage, id, imagePath, enrichedPrompt)
	return err
}

func (r *SceneRepositoryPG) UpdateVerification(ctx context.Context, id string, score int, issues []domain.VerificationIssue) error {
	raw, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("encode verification issues: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QUpdateSceneVerification, id, score, raw)
	return err
}

func (r *SceneRepositoryPG) SetRefinement(ctx context.Context, id, correctiveInstruction string, attempts int) error {
	_, err := r.sql.Exec(ctx, sqlinline.QSetSceneRefinement, id, correctiveInstruction, attempts)
	return err
}

func (r *SceneRepositoryPG) SetReview(ctx context.Context, id string, rating *int, notes string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateSceneReview, id, rating, notes)
	return err
}

func (r *SceneRepositoryPG) Delete(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteScene, id)
	return err
}

func (r *SceneRepositoryPG) SweepGenerating(ctx context.Context, errorMessage string) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QSweepGeneratingScenes, errorMessage)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ domain.SceneRepository = (*SceneRepositoryPG)(nil)
