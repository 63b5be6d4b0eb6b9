// Command piper-download fetches a Piper voice model and its config from
// the rhasspy/piper-voices repository.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikhilbhutani/speakdoc/internal/config"
	"github.com/nikhilbhutani/speakdoc/internal/logging"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, config.LogConfig{Level: cfg.Log.Level, Format: "text"}))

	name := flag.String("voice", "en_US-lessac-medium", "Voice name, e.g. en_GB-alan-medium")
	version := flag.String("version", cfg.TTS.PiperVoiceVersion, "Voice repository version")
	dir := flag.String("dir", cfg.TTS.PiperModelDir, "Directory to write the model into")
	baseURL := flag.String("base-url", cfg.TTS.PiperVoicesURL, "Voice repository base URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	modelPath, configPath, err := synthesis.DownloadVoice(ctx, synthesis.DownloadOptions{
		Name:    *name,
		Version: *version,
		Dir:     *dir,
		BaseURL: *baseURL,
	})
	if err != nil {
		slog.Error("download failed", "voice", *name, "error", err)
		os.Exit(1)
	}

	fmt.Println(modelPath)
	fmt.Println(configPath)
}
