package synthesis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestVoiceURLs(t *testing.T) {
	model, cfg := VoiceURLs("https://huggingface.co/rhasspy/piper-voices/resolve/", "v1.0.0", "en_GB-alan-medium")
	wantModel := "https://huggingface.co/rhasspy/piper-voices/resolve/v1.0.0/en/en_GB/alan/medium/en_GB-alan-medium.onnx"
	if model != wantModel {
		t.Errorf("model URL = %q, want %q", model, wantModel)
	}
	if cfg != wantModel+".json" {
		t.Errorf("config URL = %q", cfg)
	}
}

func TestDownloadVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.0.0/en/en_GB/alan/medium/en_GB-alan-medium.onnx":
			w.Write([]byte("onnx-bytes"))
		case "/v1.0.0/en/en_GB/alan/medium/en_GB-alan-medium.onnx.json":
			w.Write([]byte(`{"audio":{"sample_rate":22050}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	modelPath, configPath, err := DownloadVoice(context.Background(), DownloadOptions{
		Name:    "en_GB-alan-medium",
		Dir:     dir,
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("DownloadVoice() error: %v", err)
	}
	if modelPath != filepath.Join(dir, "en_GB-alan-medium.onnx") {
		t.Errorf("modelPath = %q", modelPath)
	}
	data, err := os.ReadFile(modelPath)
	if err != nil || string(data) != "onnx-bytes" {
		t.Errorf("model file = %q, %v", data, err)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("config file missing: %v", err)
	}
}

func TestDownloadVoice_CleansUpOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Ext(r.URL.Path) == ".onnx" {
			w.Write([]byte("onnx-bytes"))
			return
		}
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, _, err := DownloadVoice(context.Background(), DownloadOptions{Name: "en_US-lessac-medium", Dir: dir, BaseURL: srv.URL})
	if err == nil {
		t.Fatal("DownloadVoice() succeeded without a config file")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("partial files left behind: %v", entries)
	}
}
