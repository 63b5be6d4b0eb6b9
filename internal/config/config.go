package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Extraction ExtractionConfig
	TTS        TTSConfig
	Worker     WorkerConfig
	Webhook    WebhookConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string // empty disables bearer auth on /api/v1
}

type StorageConfig struct {
	Backend     string // "local" or "supabase"
	AudioDir    string
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type ExtractionConfig struct {
	MaxUploadBytes int64
	Detection      string // "sniff" or "extension"
}

type TTSConfig struct {
	Backend       string // "openai", "coqui" or "piper"
	Voice         string
	Model         string
	MaxInputChars int
	MaxChunks     int    // pieces a long document may be split into
	ChunkStrategy string // "recursive" or "sentence"
	CacheTTL      time.Duration

	OpenAIKey     string
	OpenAIBaseURL string

	CoquiURL       string
	CoquiSpeakerID string
	CoquiLanguage  string

	PiperBinPath      string
	PiperModel        string // path to the .onnx voice model
	PiperModelDir     string
	PiperAutoDownload bool
	PiperVoicesURL    string
	PiperVoiceVersion string
}

type WorkerConfig struct {
	Concurrency int
	JobTTL      time.Duration
}

type WebhookConfig struct {
	Secret  string // signs job callbacks; empty sends them unsigned
	Timeout time.Duration
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	shutdown, err := getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	maxInput, err := getEnvInt("TTS_MAX_INPUT_CHARS", 4096)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_MAX_INPUT_CHARS: %w", err)
	}

	maxChunks, err := getEnvInt("TTS_MAX_CHUNKS", 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_MAX_CHUNKS: %w", err)
	}

	cacheTTL, err := getEnvDuration("TTS_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_CACHE_TTL: %w", err)
	}

	autoDownload, err := getEnvBool("PIPER_AUTO_DOWNLOAD", false)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPER_AUTO_DOWNLOAD: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	jobTTL, err := getEnvDuration("JOB_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TTL: %w", err)
	}

	webhookTimeout, err := getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            port,
			CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
			RateLimitRPS:    rps,
			RateLimitBurst:  burst,
			ShutdownTimeout: shutdown,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "local"),
			AudioDir:    getEnv("AUDIO_DIR", "audio_files"),
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "audio"),
		},
		Extraction: ExtractionConfig{
			MaxUploadBytes: int64(maxUpload),
			Detection:      getEnv("FORMAT_DETECTION", "sniff"),
		},
		TTS: TTSConfig{
			Backend:       getEnv("TTS_BACKEND", "openai"),
			Voice:         getEnv("TTS_VOICE", ""),
			Model:         getEnv("TTS_MODEL", ""),
			MaxInputChars: maxInput,
			MaxChunks:     maxChunks,
			ChunkStrategy: getEnv("TTS_CHUNK_STRATEGY", "recursive"),
			CacheTTL:      cacheTTL,

			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

			CoquiURL:       getEnv("COQUI_URL", "http://localhost:5002"),
			CoquiSpeakerID: getEnv("COQUI_SPEAKER_ID", "0"),
			CoquiLanguage:  getEnv("COQUI_LANGUAGE", "en"),

			PiperBinPath:      getEnv("PIPER_BIN", "piper"),
			PiperModel:        getEnv("PIPER_MODEL", ""),
			PiperModelDir:     getEnv("PIPER_MODEL_DIR", "."),
			PiperAutoDownload: autoDownload,
			PiperVoicesURL:    getEnv("PIPER_VOICES_URL", "https://huggingface.co/rhasspy/piper-voices/resolve"),
			PiperVoiceVersion: getEnv("PIPER_VOICE_VERSION", "v1.0.0"),
		},
		Worker: WorkerConfig{
			Concurrency: concurrency,
			JobTTL:      jobTTL,
		},
		Webhook: WebhookConfig{
			Secret:  getEnv("WEBHOOK_SECRET", ""),
			Timeout: webhookTimeout,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var missing []string

	switch c.TTS.Backend {
	case "openai":
		if c.TTS.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "coqui":
		if c.TTS.CoquiURL == "" {
			missing = append(missing, "COQUI_URL")
		}
	case "piper":
		if c.TTS.PiperModel == "" {
			missing = append(missing, "PIPER_MODEL")
		}
	default:
		return fmt.Errorf("unknown TTS_BACKEND %q (want openai, coqui or piper)", c.TTS.Backend)
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.AudioDir == "" {
			missing = append(missing, "AUDIO_DIR")
		}
	case "supabase":
		if c.Storage.SupabaseURL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.Storage.SupabaseKey == "" {
			missing = append(missing, "SUPABASE_SERVICE_KEY")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want local or supabase)", c.Storage.Backend)
	}

	if c.TTS.ChunkStrategy != "recursive" && c.TTS.ChunkStrategy != "sentence" {
		return fmt.Errorf("unknown TTS_CHUNK_STRATEGY %q (want recursive or sentence)", c.TTS.ChunkStrategy)
	}

	if c.Extraction.Detection != "sniff" && c.Extraction.Detection != "extension" {
		return fmt.Errorf("unknown FORMAT_DETECTION %q (want sniff or extension)", c.Extraction.Detection)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
