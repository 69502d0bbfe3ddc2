package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/sqlinline"
)

// VerificationLogRepositoryPG implements domain.VerificationLogRepository.
type VerificationLogRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewVerificationLogRepository(sql infra.SQLExecutor) *VerificationLogRepositoryPG {
	return &VerificationLogRepositoryPG{sql: sql}
}

func (r *VerificationLogRepositoryPG) Append(ctx context.Context, log *domain.VerificationLog) error {
	issues := log.Issues
	if issues == nil {
		issues = []domain.VerificationIssue{}
	}
	raw, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertVerificationLog,
		log.ID,
		log.SceneID,
		log.CheckType,
		log.Score,
		raw,
	)
	return err
}

func (r *VerificationLogRepositoryPG) ListByScene(ctx context.Context, sceneID string) ([]domain.VerificationLog, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectVerificationLogs, sceneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.VerificationLog
	for rows.Next() {
		var entry domain.VerificationLog
		var issuesRaw []byte
		if err := rows.Scan(&entry.ID, &entry.SceneID, &entry.CheckType, &entry.Score, &issuesRaw, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(issuesRaw) > 0 {
			if err := json.Unmarshal(issuesRaw, &entry.Issues); err != nil {
				return nil, fmt.Errorf("decode issues: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

var _ domain.VerificationLogRepository = (*VerificationLogRepositoryPG)(nil)
