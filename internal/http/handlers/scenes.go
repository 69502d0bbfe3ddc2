package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/scenegen"
)

type sceneCreateRequest struct {
	ProjectID     string   `json:"project_id"`
	Description   string   `json:"description"`
	TemplateRef   string   `json:"template_ref"`
	StyleTags     []string `json:"style_tags"`
	MaterialIDs   []string `json:"material_ids"`
	BlueprintPath string   `json:"blueprint_path"`
	MotifPaths    []string `json:"motif_paths"`
	ExtraRefPaths []string `json:"extra_ref_paths"`
	AspectRatio   string   `json:"aspect_ratio"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
}

type sceneRefineRequest struct {
	Instruction string `json:"instruction"`
}

type sceneReviewRequest struct {
	Rating *int   `json:"rating"`
	Notes  string `json:"notes"`
}

type enqueueResponse struct {
	SceneID string `json:"scene_id"`
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
}

// SceneCreate persists a new scene in generating state, enqueues its first
// render job, and returns immediately. The worker picks the job up
// asynchronously.
func (a *App) SceneCreate(w http.ResponseWriter, r *http.Request) {
	var req sceneCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Description) == "" && len(req.MaterialIDs) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "description or material_ids required")
		return
	}

	scene := &domain.Scene{
		ID:            uuid.NewString(),
		ProjectID:     req.ProjectID,
		Description:   strings.TrimSpace(req.Description),
		TemplateRef:   req.TemplateRef,
		StyleTags:     orEmpty(req.StyleTags),
		MaterialIDs:   orEmpty(req.MaterialIDs),
		BlueprintPath: req.BlueprintPath,
		MotifPaths:    orEmpty(req.MotifPaths),
		ExtraRefPaths: orEmpty(req.ExtraRefPaths),
		AspectRatio:   domain.ResolveAspectRatio(req.AspectRatio, req.Width, req.Height),
		Width:         req.Width,
		Height:        req.Height,
		ImageStatus:   domain.ImageStatusGenerating,
	}
	if err := a.Scenes.Create(r.Context(), scene); err != nil {
		a.Logger.Error().Err(err).Msg("handlers: scene create failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create scene")
		return
	}

	jobID, err := a.enqueueJob(r, scene.ID, domain.RenderJobTypeImage)
	if err != nil {
		a.enqueueError(w, r, scene.ID, err)
		return
	}
	a.json(w, http.StatusAccepted, enqueueResponse{SceneID: scene.ID, JobID: jobID, Status: string(domain.ImageStatusGenerating)})
}

// SceneRegenerate enqueues a fresh generation for an existing scene. A scene
// already generating is rejected rather than interleaved.
func (a *App) SceneRegenerate(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	if err := a.Scenes.MarkGenerating(r.Context(), sceneID); err != nil {
		a.markGeneratingError(w, err)
		return
	}
	jobID, err := a.enqueueJob(r, sceneID, domain.RenderJobTypeImage)
	if err != nil {
		a.enqueueError(w, r, sceneID, err)
		return
	}
	a.json(w, http.StatusAccepted, enqueueResponse{SceneID: sceneID, JobID: jobID, Status: string(domain.ImageStatusGenerating)})
}

// SceneRefine enqueues a refinement pass with a user-supplied corrective
// instruction, editing the current image rather than starting over.
func (a *App) SceneRefine(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	var req sceneRefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Instruction) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "instruction required")
		return
	}

	scene, err := a.Scenes.GetByID(r.Context(), sceneID)
	if err != nil {
		a.markGeneratingError(w, err)
		return
	}
	if err := a.Scenes.MarkGenerating(r.Context(), sceneID); err != nil {
		a.markGeneratingError(w, err)
		return
	}
	if err := a.Scenes.SetRefinement(r.Context(), sceneID, strings.TrimSpace(req.Instruction), scene.VerificationAttempts); err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("handlers: refinement update failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store instruction")
		return
	}
	jobID, err := a.enqueueJob(r, sceneID, domain.RenderJobTypeImageRefinement)
	if err != nil {
		a.enqueueError(w, r, sceneID, err)
		return
	}
	a.json(w, http.StatusAccepted, enqueueResponse{SceneID: sceneID, JobID: jobID, Status: string(domain.ImageStatusGenerating)})
}

// SceneGet is the status polling surface: safe to call repeatedly while a
// run is in flight.
func (a *App) SceneGet(w http.ResponseWriter, r *http.Request) {
	scene, err := a.Scenes.GetByID(r.Context(), chi.URLParam(r, "scene_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "scene not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load scene")
		return
	}
	a.json(w, http.StatusOK, sceneToJSON(scene))
}

// SceneReview stores user feedback on a scene, independent of automated
// verification.
func (a *App) SceneReview(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	var req sceneReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		a.error(w, http.StatusBadRequest, "bad_request", "rating must be between 1 and 5")
		return
	}
	if _, err := a.Scenes.GetByID(r.Context(), sceneID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "scene not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load scene")
		return
	}
	if err := a.Scenes.SetReview(r.Context(), sceneID, req.Rating, req.Notes); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to store review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SceneDelete removes a scene, its jobs, versions, logs (database cascade),
// and every stored file.
func (a *App) SceneDelete(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	if _, err := a.Scenes.GetByID(r.Context(), sceneID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "scene not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load scene")
		return
	}
	if err := a.Scenes.Delete(r.Context(), sceneID); err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("handlers: scene delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete scene")
		return
	}
	if err := a.Store.RemoveAll(r.Context(), scenegen.SceneStoragePrefix(sceneID)); err != nil {
		a.Logger.Warn().Err(err).Str("scene_id", sceneID).Msg("handlers: scene file cleanup failed")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) enqueueJob(r *http.Request, sceneID string, jobType domain.RenderJobType) (string, error) {
	job := &domain.RenderJob{
		ID:      uuid.NewString(),
		SceneID: sceneID,
		Type:    jobType,
		Status:  domain.RenderJobStatusPending,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("handlers: render job create failed")
		return "", err
	}
	return job.ID, nil
}

// enqueueError handles a failed job enqueue after the scene was already
// flipped to generating. A busy conflict means the scene still has a queued
// job, so the status stands; anything else reverts the scene to failed so it
// does not sit stuck in generating with nothing to finish it.
func (a *App) enqueueError(w http.ResponseWriter, r *http.Request, sceneID string, err error) {
	if errors.Is(err, domain.ErrSceneBusy) {
		a.error(w, http.StatusConflict, "scene_busy", "a render job for this scene is already queued")
		return
	}
	if revertErr := a.Scenes.SetStatus(r.Context(), sceneID, domain.ImageStatusFailed, "failed to enqueue render job"); revertErr != nil {
		a.Logger.Error().Err(revertErr).Str("scene_id", sceneID).Msg("handlers: scene status revert failed")
	}
	a.error(w, http.StatusInternalServerError, "internal", "failed to enqueue render job")
}

func (a *App) markGeneratingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "scene not found")
	case errors.Is(err, domain.ErrSceneBusy):
		a.error(w, http.StatusConflict, "scene_busy", "a generation is already in flight for this scene")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "failed to update scene")
	}
}

func sceneToJSON(scene *domain.Scene) map[string]any {
	return map[string]any{
		"id":                     scene.ID,
		"project_id":             scene.ProjectID,
		"description":            scene.Description,
		"template_ref":           scene.TemplateRef,
		"style_tags":             scene.StyleTags,
		"material_ids":           scene.MaterialIDs,
		"blueprint_path":         scene.BlueprintPath,
		"motif_paths":            scene.MotifPaths,
		"extra_ref_paths":        scene.ExtraRefPaths,
		"aspect_ratio":           scene.AspectRatio,
		"width":                  scene.Width,
		"height":                 scene.Height,
		"enriched_prompt":        scene.EnrichedPrompt,
		"last_refinement_prompt": scene.LastRefinementPrompt,
		"image_path":             scene.ImagePath,
		"image_status":           scene.ImageStatus,
		"last_error_message":     scene.LastErrorMessage,
		"verification_score":     scene.VerificationScore,
		"verification_issues":    scene.VerificationIssues,
		"verification_attempts":  scene.VerificationAttempts,
		"review_rating":          scene.ReviewRating,
		"review_notes":           scene.ReviewNotes,
		"created_at":             scene.CreatedAt,
		"updated_at":             scene.UpdatedAt,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
