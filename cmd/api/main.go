package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/adapter/repo"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/http/handlers"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/http/httpapi"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/storage"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	app := handlers.NewApp(
		repo.NewSceneRepository(runner),
		repo.NewRenderJobRepository(runner),
		repo.NewSceneVersionRepository(runner),
		repo.NewVerificationLogRepository(runner),
		fileStore,
		logger,
	)

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, logger))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}
	logger.Info().Msg("api: stopped")
}
