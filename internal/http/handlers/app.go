package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/storage"
)

// App aggregates the dependencies of the HTTP surface.
type App struct {
	Scenes   domain.SceneRepository
	Jobs     domain.RenderJobRepository
	Versions domain.SceneVersionRepository
	Logs     domain.VerificationLogRepository
	Store    *storage.FileStore
	Logger   zerolog.Logger
}

func NewApp(
	scenes domain.SceneRepository,
	jobs domain.RenderJobRepository,
	versions domain.SceneVersionRepository,
	logs domain.VerificationLogRepository,
	store *storage.FileStore,
	logger zerolog.Logger,
) *App {
	return &App{
		Scenes:   scenes,
		Jobs:     jobs,
		Versions: versions,
		Logs:     logs,
		Store:    store,
		Logger:   logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}
