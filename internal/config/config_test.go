package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.TTS.Backend != "openai" {
		t.Errorf("TTS.Backend = %q, want openai", cfg.TTS.Backend)
	}
	if cfg.TTS.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Errorf("TTS.OpenAIBaseURL = %q", cfg.TTS.OpenAIBaseURL)
	}
	if cfg.Storage.AudioDir != "audio_files" {
		t.Errorf("Storage.AudioDir = %q, want audio_files", cfg.Storage.AudioDir)
	}
	if cfg.TTS.ChunkStrategy != "recursive" {
		t.Errorf("TTS.ChunkStrategy = %q, want recursive", cfg.TTS.ChunkStrategy)
	}
	if cfg.TTS.MaxChunks != 64 {
		t.Errorf("TTS.MaxChunks = %d, want 64", cfg.TTS.MaxChunks)
	}
	if cfg.Webhook.Timeout != 10*time.Second || cfg.Webhook.Secret != "" {
		t.Errorf("Webhook = %+v", cfg.Webhook)
	}
	if cfg.Extraction.Detection != "sniff" {
		t.Errorf("Extraction.Detection = %q, want sniff", cfg.Extraction.Detection)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8888")
	t.Setenv("TTS_BACKEND", "piper")
	t.Setenv("PIPER_MODEL", "en_US-lessac-medium.onnx")
	t.Setenv("TTS_CACHE_TTL", "90m")
	t.Setenv("PIPER_AUTO_DOWNLOAD", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8888" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.TTS.CacheTTL != 90*time.Minute {
		t.Errorf("TTS.CacheTTL = %v, want 90m", cfg.TTS.CacheTTL)
	}
	if !cfg.TTS.PiperAutoDownload {
		t.Error("TTS.PiperAutoDownload = false, want true")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SERVER_PORT", "eighty"},
		{"TTS_CACHE_TTL", "forever"},
		{"PIPER_AUTO_DOWNLOAD", "maybe"},
		{"RATE_LIMIT_RPS", "fast"},
		{"TTS_MAX_CHUNKS", "lots"},
		{"WEBHOOK_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "openai without key",
			mutate:  func(c *Config) { c.TTS.OpenAIKey = "" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.TTS.Backend = "espeak" },
			wantErr: "TTS_BACKEND",
		},
		{
			name: "supabase without credentials",
			mutate: func(c *Config) {
				c.Storage.Backend = "supabase"
			},
			wantErr: "SUPABASE_URL",
		},
		{
			name:    "bad detection mode",
			mutate:  func(c *Config) { c.Extraction.Detection = "guess" },
			wantErr: "FORMAT_DETECTION",
		},
		{
			name:    "bad chunk strategy",
			mutate:  func(c *Config) { c.TTS.ChunkStrategy = "words" },
			wantErr: "TTS_CHUNK_STRATEGY",
		},
		{
			name:   "valid openai",
			mutate: func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			cfg.TTS.OpenAIKey = "sk-test"
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
