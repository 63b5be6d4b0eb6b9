package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speakdoc/internal/cache"
	"github.com/nikhilbhutani/speakdoc/internal/config"
	"github.com/nikhilbhutani/speakdoc/internal/database"
	"github.com/nikhilbhutani/speakdoc/internal/document"
	"github.com/nikhilbhutani/speakdoc/internal/logging"
	"github.com/nikhilbhutani/speakdoc/internal/queue"
	"github.com/nikhilbhutani/speakdoc/internal/queue/workers"
	"github.com/nikhilbhutani/speakdoc/internal/speech"
	"github.com/nikhilbhutani/speakdoc/internal/storage"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
	"github.com/nikhilbhutani/speakdoc/internal/webhook"
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

	history := speech.NewHistory(nil)
	if cfg.Database.URL != "" {
		db, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, running without history", "error", err)
		} else {
			defer db.Close()
			history = speech.NewHistory(db)
		}
	}

	rdb := cache.NewClient(cfg.Redis)
	defer rdb.Close()
	c := cache.NewCache(rdb)
	if err := c.Ping(ctx); err != nil {
		slog.Error("redis unavailable", "error", err)
		os.Exit(1)
	}

	provider, err := synthesis.NewProvider(ctx, cfg.TTS)
	if err != nil {
		slog.Error("failed to initialize TTS backend", "backend", cfg.TTS.Backend, "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize audio storage", "error", err)
		os.Exit(1)
	}

	svc := speech.NewService(
		document.NewTextExtractor(document.Detection(cfg.Extraction.Detection), nil),
		synthesis.NewService(provider,
			synthesis.WithCache(cache.NewAudioCache(c, cfg.TTS.CacheTTL)),
			synthesis.WithMaxInputChars(cfg.TTS.MaxInputChars),
			synthesis.WithMaxChunks(cfg.TTS.MaxChunks),
			synthesis.WithChunkStrategy(cfg.TTS.ChunkStrategy),
		),
		store,
		history,
	)

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	callbacks := webhook.NewDispatcher(cfg.Webhook.Secret, &http.Client{Timeout: cfg.Webhook.Timeout})
	speechWorker := workers.NewSpeechWorker(svc, cache.NewJobStore(c, cfg.Worker.JobTTL), workers.WithNotifier(callbacks))
	registry.RegisterSpeech(speechWorker.ProcessTask)

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "tts_backend", provider.Name())
	err = srv.Run(registry.Mux())
	callbacks.Close()
	if err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
