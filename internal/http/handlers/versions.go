package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/pkg/zip"
)

type versionJSON struct {
	ID        string `json:"id"`
	SceneID   string `json:"scene_id"`
	VersionNo int    `json:"version_no"`
	ImagePath string `json:"image_path"`
	Prompt    string `json:"prompt"`
	CreatedAt string `json:"created_at"`
}

// VersionList returns every archived snapshot of a scene, oldest first.
func (a *App) VersionList(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	if _, err := a.Scenes.GetByID(r.Context(), sceneID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "scene not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load scene")
		return
	}
	versions, err := a.Versions.ListByScene(r.Context(), sceneID)
	if err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("handlers: version list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list versions")
		return
	}
	out := make([]versionJSON, 0, len(versions))
	for _, v := range versions {
		out = append(out, versionJSON{
			ID:        v.ID,
			SceneID:   v.SceneID,
			VersionNo: v.VersionNo,
			ImagePath: v.ImagePath,
			Prompt:    v.Prompt,
			CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"versions": out})
}

// VersionDelete removes one archived snapshot and its stored file.
func (a *App) VersionDelete(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	versionNo, err := strconv.Atoi(chi.URLParam(r, "version_no"))
	if err != nil || versionNo < 1 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid version number")
		return
	}
	version, err := a.Versions.GetBySceneAndNo(r.Context(), sceneID, versionNo)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "version not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load version")
		return
	}
	if err := a.Versions.Delete(r.Context(), version.ID); err != nil {
		a.Logger.Error().Err(err).Str("version_id", version.ID).Msg("handlers: version delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete version")
		return
	}
	if err := a.Store.Remove(r.Context(), version.ImagePath); err != nil {
		a.Logger.Warn().Err(err).Str("version_id", version.ID).Msg("handlers: version file cleanup failed")
	}
	w.WriteHeader(http.StatusNoContent)
}

// VersionArchive streams every archived snapshot of a scene as a zip file.
// Snapshots whose file is missing on disk are skipped.
func (a *App) VersionArchive(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	versions, err := a.Versions.ListByScene(r.Context(), sceneID)
	if err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("handlers: version list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list versions")
		return
	}
	if len(versions) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "scene has no archived versions")
		return
	}

	entries := make([]zip.Entry, 0, len(versions))
	for _, v := range versions {
		data, err := a.Store.Read(r.Context(), v.ImagePath)
		if err != nil {
			a.Logger.Warn().Err(err).Str("version_id", v.ID).Msg("handlers: version file unreadable, skipping")
			continue
		}
		entries = append(entries, zip.Entry{
			Filename: fmt.Sprintf("v%d%s", v.VersionNo, filepath.Ext(v.ImagePath)),
			Data:     data,
		})
	}
	if len(entries) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no version files available")
		return
	}

	archive, err := zip.Archive(entries)
	if err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("handlers: archive build failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "scene-"+sceneID+"-versions.zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// VerificationLogList returns the verification history of a scene.
func (a *App) VerificationLogList(w http.ResponseWriter, r *http.Request) {
	sceneID := chi.URLParam(r, "scene_id")
	logs, err := a.Logs.ListByScene(r.Context(), sceneID)
	if err != nil {
		a.Logger.Error().Err(err).Str("scene_id", sceneID).Msg("handlers: verification log list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list verification logs")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"logs": logs})
}
