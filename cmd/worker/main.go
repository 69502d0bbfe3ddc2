package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/adapter/repo"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/domain"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra/credentials"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/genai"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/image"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/prompt"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/providers/vision"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/scenegen"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/storage"
)

const (
	jobPollInterval  = 2 * time.Second
	sweepErrorReason = "server restarted while job was in flight"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	scenes := repo.NewSceneRepository(runner)
	jobs := repo.NewRenderJobRepository(runner)
	materials := repo.NewMaterialRepository(runner)
	versions := repo.NewSceneVersionRepository(runner)
	logs := repo.NewVerificationLogRepository(runner)

	// Jobs and scenes left in flight by a previous process lifetime cannot
	// resume; fail them so clients see a terminal state instead of a hang.
	if swept, err := jobs.SweepProcessing(ctx, sweepErrorReason); err != nil {
		logger.Error().Err(err).Msg("worker: processing job sweep failed")
	} else if swept > 0 {
		logger.Warn().Int64("count", swept).Msg("worker: swept stale processing jobs")
	}
	if swept, err := scenes.SweepGenerating(ctx, sweepErrorReason); err != nil {
		logger.Error().Err(err).Msg("worker: generating scene sweep failed")
	} else if swept > 0 {
		logger.Warn().Int64("count", swept).Msg("worker: swept stale generating scenes")
	}

	resolver := &providerResolver{
		cfg:         cfg,
		credentials: credentials.NewStore(runner, cfg.GeminiAPIKey),
		logger:      logger,
	}

	orchestrator := scenegen.NewOrchestrator(
		scenes,
		jobs,
		materials,
		logs,
		resolver,
		fileStore,
		scenegen.NewArchiver(versions, fileStore, logger),
		scenegen.NewSelector(fileStore, logger),
		logger,
	)

	logger.Info().Int("workers", cfg.WorkerCount).Msg("worker: started")

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.WorkerCount; i++ {
		g.Go(func() error {
			return runLoop(gctx, jobs, orchestrator, logger)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func runLoop(ctx context.Context, jobs domain.RenderJobRepository, orchestrator *scenegen.Orchestrator, logger infra.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, err := jobs.Claim(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jobPollInterval):
			}
			continue
		}

		orchestrator.Run(ctx, job)
	}
}

// providerResolver builds the provider set lazily per run, so a key stored
// through the providerkey tool is picked up without a worker restart. The
// built clients are cached per key to keep one shared rate limiter.
type providerResolver struct {
	cfg         *infra.Config
	credentials *credentials.Store
	logger      infra.Logger

	mu       sync.Mutex
	cacheKey string
	cached   *scenegen.Providers
}

func (r *providerResolver) Resolve(ctx context.Context) (*scenegen.Providers, error) {
	key, err := r.credentials.GeminiAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrMissingCredentials
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil && r.cacheKey == key {
		return r.cached, nil
	}

	client, err := genai.NewClient(genai.Options{
		APIKey:            key,
		BaseURL:           r.cfg.GeminiBaseURL,
		TextModel:         r.cfg.GeminiTextModel,
		ImageModel:        r.cfg.GeminiImageModel,
		HTTPClient:        &http.Client{Timeout: 120 * time.Second},
		Logger:            &r.logger,
		RequestsPerMinute: r.cfg.ProviderRPM,
	})
	if err != nil {
		return nil, err
	}

	enricher, err := prompt.NewGeminiEnricher(prompt.GeminiOptions{
		Client:   client,
		Fallback: prompt.NewStaticEnricher(),
		OnFallback: func(reason string, err error) {
			r.logger.Warn().Err(err).Str("reason", reason).Msg("worker: prompt enrichment fell back to static")
		},
	})
	if err != nil {
		return nil, err
	}
	analyzer, err := vision.NewGeminiAnalyzer(client)
	if err != nil {
		return nil, err
	}

	r.cacheKey = key
	r.cached = &scenegen.Providers{
		Enricher:  enricher,
		Generator: image.NewGeminiGenerator(client),
		Analyzer:  analyzer,
	}
	return r.cached, nil
}
