package synthesis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DownloadOptions describe a Piper voice hosted in the rhasspy/piper-voices
// repository.
type DownloadOptions struct {
	Name    string // e.g. "en_GB-alan-medium"
	Version string // default: "v1.0.0"
	Dir     string // default: "."
	BaseURL string // default: "https://huggingface.co/rhasspy/piper-voices/resolve"
	Client  *http.Client
}

// VoiceURLs returns the model and config URLs for a voice name. The name's
// dashes map to path segments: en_GB-alan-medium lives under en/en_GB/alan/medium.
func VoiceURLs(baseURL, version, name string) (modelURL, configURL string) {
	lang := name
	if i := strings.IndexByte(name, '_'); i > 0 {
		lang = name[:i]
	}
	dir := fmt.Sprintf("%s/%s/%s/%s", strings.TrimRight(baseURL, "/"), version, lang, strings.ReplaceAll(name, "-", "/"))
	return dir + "/" + name + ".onnx", dir + "/" + name + ".onnx.json"
}

// DownloadVoice fetches a voice's .onnx model and .onnx.json config into
// opts.Dir. Partial files are removed on failure.
func DownloadVoice(ctx context.Context, opts DownloadOptions) (string, string, error) {
	if opts.Name == "" {
		return "", "", fmt.Errorf("voice name required")
	}
	if opts.Version == "" {
		opts.Version = "v1.0.0"
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://huggingface.co/rhasspy/piper-voices/resolve"
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Minute}
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create download dir: %w", err)
	}

	modelURL, configURL := VoiceURLs(opts.BaseURL, opts.Version, opts.Name)
	modelPath := filepath.Join(opts.Dir, opts.Name+".onnx")
	configPath := filepath.Join(opts.Dir, opts.Name+".onnx.json")

	// A model without its config must not survive: Piper cannot load it.
	cleanup := func() {
		os.Remove(modelPath)
		os.Remove(configPath)
	}

	slog.Info("downloading piper voice", "voice", opts.Name, "version", opts.Version)

	if err := downloadFile(ctx, opts.Client, modelURL, modelPath); err != nil {
		cleanup()
		return "", "", fmt.Errorf("download model: %w", err)
	}
	if err := downloadFile(ctx, opts.Client, configURL, configPath); err != nil {
		cleanup()
		return "", "", fmt.Errorf("download config: %w", err)
	}

	slog.Info("piper voice downloaded", "model", modelPath, "config", configPath)
	return modelPath, configPath, nil
}

func downloadFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return os.Rename(tmp.Name(), dest)
}
