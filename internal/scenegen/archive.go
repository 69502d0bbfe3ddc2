package scenegen

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
)

// ImageCopier duplicates stored files. Satisfied by storage.FileStore.
type ImageCopier interface {
	Copy(ctx context.Context, srcKey, dstKey string) (string, error)
}

// Archiver snapshots a scene's rendered image before it is overwritten.
// Archival is best-effort: a missing source file logs a warning and the run
// continues.
type Archiver struct {
	versions domain.SceneVersionRepository
	store    ImageCopier
	logger   zerolog.Logger
}

func NewArchiver(versions domain.SceneVersionRepository, store ImageCopier, logger zerolog.Logger) *Archiver {
	return &Archiver{versions: versions, store: store, logger: logger}
}

// Snapshot copies the scene's current image into the version archive and
// records a SceneVersion with the next sequential number. No-op when the
// scene has no rendered image yet.
func (a *Archiver) Snapshot(ctx context.Context, scene *domain.Scene) {
	if scene.ImagePath == "" {
		return
	}

	versionNo, err := a.versions.NextVersionNo(ctx, scene.ID)
	if err != nil {
		a.logger.Warn().Err(err).Str("scene_id", scene.ID).Msg("archive: next version number lookup failed")
		return
	}

	dstKey := VersionImageKey(scene.ID, versionNo, filepath.Ext(scene.ImagePath))
	archivedKey, err := a.store.Copy(ctx, scene.ImagePath, dstKey)
	if err != nil {
		a.logger.Warn().Err(err).Str("scene_id", scene.ID).Str("src", scene.ImagePath).
			Msg("archive: snapshot copy failed, continuing without version")
		return
	}

	if err := a.versions.Create(ctx, &domain.SceneVersion{
		ID:        uuid.NewString(),
		SceneID:   scene.ID,
		VersionNo: versionNo,
		ImagePath: archivedKey,
		Prompt:    scene.EnrichedPrompt,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		a.logger.Warn().Err(err).Str("scene_id", scene.ID).Int("version_no", versionNo).
			Msg("archive: version record insert failed")
	}
}

// SceneImageKey is the storage key of a scene's current rendered image.
func SceneImageKey(sceneID, ext string) string {
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("scenes/%s/current%s", sceneID, ext)
}

// VersionImageKey is the storage key of an archived scene version image.
func VersionImageKey(sceneID string, versionNo int, ext string) string {
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("scenes/%s/versions/v%d%s", sceneID, versionNo, ext)
}

// SceneStoragePrefix is the storage directory holding every file of a scene.
func SceneStoragePrefix(sceneID string) string {
	return fmt.Sprintf("scenes/%s", sceneID)
}
