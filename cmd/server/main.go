// Package main is the entrypoint for the PodScribe API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/podscribe/internal/ai"
	"github.com/kiranshivaraju/podscribe/internal/api"
	"github.com/kiranshivaraju/podscribe/internal/api/handler"
	mw "github.com/kiranshivaraju/podscribe/internal/api/middleware"
	"github.com/kiranshivaraju/podscribe/internal/api/response"
	"github.com/kiranshivaraju/podscribe/internal/cache"
	"github.com/kiranshivaraju/podscribe/internal/catalog"
	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/internal/engine"
	"github.com/kiranshivaraju/podscribe/internal/pipeline"
	"github.com/kiranshivaraju/podscribe/internal/resolver"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"speech_provider", cfg.AI.SpeechProvider,
		"text_provider", cfg.AI.TextProvider,
		"env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Ensure storage directories exist
	if err := ensureStorageDirs(cfg.Storage); err != nil {
		return fmt.Errorf("prepare storage: %w", err)
	}
	slog.Info("storage directories ready", "audio_dir", cfg.Storage.AudioDir)

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Create AI providers
	speech, err := ai.NewSpeechProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create speech provider: %w", err)
	}
	chatModel, err := ai.NewChatModel(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("create chat model: %w", err)
	}
	text := ai.NewTextService(chatModel, cfg.AI.InferenceTimeout)
	slog.Info("AI providers initialized", "speech", speech.Name(), "text", chatModel.Name())

	// 5. Build the domain services
	index := catalog.New(cfg.Storage)
	res := resolver.New(index, speech, text, cfg.Storage)
	eng := engine.New(index, res, text, cfg.Storage)

	runner := pipeline.NewStageRunner(speech, text, text, cfg.Storage)
	tracker := pipeline.NewTracker(runner, redisCache, cfg.Storage)

	// 6. Build router with dependencies
	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		RateLimit: rateLimit,

		HealthHandler:  healthHandler(cfg.Storage, redisCache),
		ChatHandler:    handler.NewChatHandler(eng),
		ContentHandler: handler.NewContentHandler(eng),

		SubmitPipeline:         handler.NewSubmitPipelineHandler(tracker),
		PipelineStatus:         handler.NewPipelineStatusHandler(tracker),
		RemovePipeline:         handler.NewRemovePipelineHandler(tracker),
		PipelineTranscript:     handler.NewPipelineArtifactHandler(tracker, models.ArtifactTranscript),
		PipelineSummary:        handler.NewPipelineArtifactHandler(tracker, models.ArtifactSummary),
		PipelineRecommendation: handler.NewPipelineArtifactHandler(tracker, models.ArtifactRecommendations),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// ensureStorageDirs creates the artifact directories if missing.
func ensureStorageDirs(storage config.StorageConfig) error {
	dirs := []string{
		storage.AudioDir,
		storage.TranscriptsDir,
		storage.SummariesDir,
		storage.RecommendationsDir,
		storage.DownloadsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// healthHandler checks storage and cache availability.
func healthHandler(storage config.StorageConfig, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"storage": "ok",
			"cache":   "ok",
		}

		if _, err := os.Stat(storage.AudioDir); err != nil {
			checks["storage"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["storage"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
