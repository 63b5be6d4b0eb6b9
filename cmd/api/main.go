package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilbhutani/speakdoc/internal/api"
	"github.com/nikhilbhutani/speakdoc/internal/api/handlers"
	"github.com/nikhilbhutani/speakdoc/internal/cache"
	"github.com/nikhilbhutani/speakdoc/internal/config"
	"github.com/nikhilbhutani/speakdoc/internal/database"
	"github.com/nikhilbhutani/speakdoc/internal/document"
	"github.com/nikhilbhutani/speakdoc/internal/logging"
	"github.com/nikhilbhutani/speakdoc/internal/queue"
	"github.com/nikhilbhutani/speakdoc/internal/speech"
	"github.com/nikhilbhutani/speakdoc/internal/storage"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	checks := map[string]handlers.Pinger{}

	// Database (optional: history is skipped without DATABASE_URL)
	history := speech.NewHistory(nil)
	if cfg.Database.URL != "" {
		db, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, running without history", "error", err)
		} else {
			defer db.Close()
			if err := database.RunMigrations(ctx, db); err != nil {
				slog.Warn("migrations failed", "error", err)
			}
			history = speech.NewHistory(db)
			checks["database"] = db
		}
	}

	// Redis (optional: no audio cache or background jobs without it)
	var (
		synthOpts []synthesis.ServiceOption
		deps      api.Dependencies
	)
	rdb := cache.NewClient(cfg.Redis)
	defer rdb.Close()
	c := cache.NewCache(rdb)
	if err := c.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, running without cache and jobs", "error", err)
	} else {
		synthOpts = append(synthOpts, synthesis.WithCache(cache.NewAudioCache(c, cfg.TTS.CacheTTL)))
		checks["redis"] = handlers.PingFunc(c.Ping)

		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		deps.Jobs = cache.NewJobStore(c, cfg.Worker.JobTTL)
		deps.Queue = qc
	}

	provider, err := synthesis.NewProvider(ctx, cfg.TTS)
	if err != nil {
		slog.Error("failed to initialize TTS backend", "backend", cfg.TTS.Backend, "error", err)
		os.Exit(1)
	}
	synthOpts = append(synthOpts,
		synthesis.WithMaxInputChars(cfg.TTS.MaxInputChars),
		synthesis.WithMaxChunks(cfg.TTS.MaxChunks),
		synthesis.WithChunkStrategy(cfg.TTS.ChunkStrategy),
	)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize audio storage", "error", err)
		os.Exit(1)
	}

	deps.Speech = speech.NewService(
		document.NewTextExtractor(document.Detection(cfg.Extraction.Detection), nil),
		synthesis.NewService(provider, synthOpts...),
		store,
		history,
	)
	deps.Checks = checks

	// Setup router
	router := api.NewRouter(cfg, deps)
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "tts_backend", provider.Name(), "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
