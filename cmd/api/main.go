package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fieldquote/internal/adapter/repo"
	"fieldquote/internal/http/handlers"
	"fieldquote/internal/http/httpapi"
	"fieldquote/internal/infra"
	"fieldquote/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: db connection failed")
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
		logger.Fatal().Err(err).Msg("api: failed to configure storage")
	}

	runner := infra.NewSQLRunner(pool, logger)
	app := handlers.NewApp(
		repo.NewRenderJobRepository(runner),
		repo.NewQuoteRepository(runner),
		repo.NewTenantRepository(runner),
		logger,
	)

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, cfg, logger, fileStore))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api: shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("api: listening")
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("api: server stopped with error")
	}
	logger.Info().Msg("api: stopped")
}
