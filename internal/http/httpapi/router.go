package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/http/handlers"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/middleware"
)

func NewRouter(app *handlers.App, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/scenes", func(r chi.Router) {
		r.Post("/", app.SceneCreate)
		r.Route("/{scene_id}", func(r chi.Router) {
			r.Get("/", app.SceneGet)
			r.Delete("/", app.SceneDelete)
			r.Post("/regenerate", app.SceneRegenerate)
			r.Post("/refine", app.SceneRefine)
			r.Patch("/review", app.SceneReview)
			r.Get("/verifications", app.VerificationLogList)
			r.Route("/versions", func(r chi.Router) {
				r.Get("/", app.VersionList)
				r.Get("/archive", app.VersionArchive)
				r.Delete("/{version_no}", app.VersionDelete)
			})
		})
	})

	r.Get("/v1/jobs/{job_id}", app.JobGet)

	return r
}
