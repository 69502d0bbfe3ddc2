package repo

import (
	"context"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/sqlinline"
)

// SceneVersionRepositoryPG implements domain.SceneVersionRepository.
type SceneVersionRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewSceneVersionRepository(sql infra.SQLExecutor) *SceneVersionRepositoryPG {
	return &SceneVersionRepositoryPG{sql: sql}
}

func (r *SceneVersionRepositoryPG) Create(ctx context.Context, version *domain.SceneVersion) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertSceneVersion,
		version.ID,
		version.SceneID,
		version.VersionNo,
		version.ImagePath,
		version.Prompt,
	)
	return err
}

func (r *SceneVersionRepositoryPG) NextVersionNo(ctx context.Context, sceneID string) (int, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QNextSceneVersionNo, sceneID)
	var next int
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *SceneVersionRepositoryPG) ListByScene(ctx context.Context, sceneID string) ([]domain.SceneVersion, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectSceneVersions, sceneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []domain.SceneVersion
	for rows.Next() {
		var v domain.SceneVersion
		if err := rows.Scan(&v.ID, &v.SceneID, &v.VersionNo, &v.ImagePath, &v.Prompt, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *SceneVersionRepositoryPG) GetBySceneAndNo(ctx context.Context, sceneID string, versionNo int) (*domain.SceneVersion, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectSceneVersionByNo, sceneID, versionNo)
	var v domain.SceneVersion
	if err := row.Scan(&v.ID, &v.SceneID, &v.VersionNo, &v.ImagePath, &v.Prompt, &v.CreatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *SceneVersionRepositoryPG) Delete(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteSceneVersion, id)
	return err
}

var _ domain.SceneVersionRepository = (*SceneVersionRepositoryPG)(nil)
