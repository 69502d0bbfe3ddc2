package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// JobGet reports the state of one render job.
func (a *App) JobGet(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "job_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":                  job.ID,
		"scene_id":            job.SceneID,
		"type":                job.Type,
		"status":              job.Status,
		"error_message":       job.ErrorMessage,
		"cost_estimate_cents": job.CostEstimateCents,
		"created_at":          job.CreatedAt,
		"updated_at":          job.UpdatedAt,
	})
}
