package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fieldquote/internal/adapter/repo"
	"fieldquote/internal/infra"
	"fieldquote/internal/providers/genai"
	"fieldquote/internal/providers/image"
	"fieldquote/internal/render"
	"fieldquote/internal/storage"
)

func main() {
	_ = godotenv.Load()

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

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	client, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: cfg.RenderTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure generation client")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Str("model", client.Model()).Msg("worker: api key missing, using synthetic concept generation")
	}

	runner := infra.NewSQLRunner(pool, logger)
	worker := render.NewWorker(
		repo.NewRenderJobRepository(runner),
		image.NewGeminiGenerator(client),
		fileStore,
		cfg.StorageBaseURL,
		logger,
	).WithTimeout(cfg.RenderTimeout)

	logger.Info().Msg("worker: started")
	run(ctx, worker, cfg.WorkerPollInterval, logger)
	logger.Info().Msg("worker: stopped")
}

// run invokes the worker once per tick. Each invocation claims and fully
// processes at most one job; overlap across worker processes is safe because
// the claim is atomic.
func run(ctx context.Context, worker *render.Worker, interval time.Duration, logger infra.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := worker.ProcessOneQueuedRender(ctx)
		switch {
		case !result.OK:
			logger.Error().Err(result.Err).Str("job_id", result.JobID).Msg("worker: processing error")
		case result.DidWork:
			// A job reached a terminal state; look for the next one
			// immediately instead of sleeping.
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
