package repo

import (
	"context"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/sqlinline"
)

// MaterialRepositoryPG implements domain.MaterialRepository. The core only
// reads materials; management lives in another service.
type MaterialRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewMaterialRepository(sql infra.SQLExecutor) *MaterialRepositoryPG {
	return &MaterialRepositoryPG{sql: sql}
}

// ListByIDs loads materials and their ordered images, preserving the order
// of the requested ids. Unknown ids are silently dropped.
func (r *MaterialRepositoryPG) ListByIDs(ctx context.Context, ids []string) ([]domain.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.sql.Query(ctx, sqlinline.QSelectMaterialsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []domain.Material
	index := map[string]int{}
	for rows.Next() {
		var m domain.Material
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Category,
			&m.Status,
			&m.Dimensions,
			&m.Surface,
			&m.Weight,
			&m.Color,
			&m.FormatCode,
		); err != nil {
			return nil, err
		}
		index[m.ID] = len(materials)
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(materials) == 0 {
		return nil, nil
	}

	materialIDs := make([]string, len(materials))
	for i, m := range materials {
		materialIDs[i] = m.ID
	}

	imgRows, err := r.sql.Query(ctx, sqlinline.QSelectMaterialImages, materialIDs)
	if err != nil {
		return nil, err
	}
	defer imgRows.Close()

	for imgRows.Next() {
		var img domain.MaterialImage
		if err := imgRows.Scan(
			&img.ID,
			&img.MaterialID,
			&img.Path,
			&img.Perspective,
			&img.IsPrimary,
			&img.Position,
		); err != nil {
			return nil, err
		}
		if i, ok := index[img.MaterialID]; ok {
			materials[i].Images = append(materials[i].Images, img)
		}
	}
	if err := imgRows.Err(); err != nil {
		return nil, err
	}

	return materials, nil
}

var _ domain.MaterialRepository = (*MaterialRepositoryPG)(nil)
