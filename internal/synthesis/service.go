package synthesis

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nikhilbhutani/speakdoc/internal/config"
	"github.com/nikhilbhutani/speakdoc/pkg/chunker"
)

// Cache stores synthesized audio keyed by request fingerprint.
type Cache interface {
	Load(ctx context.Context, key string) (*SynthesisResult, bool)
	Store(ctx context.Context, key string, res *SynthesisResult)
}

// Service validates requests and fronts a Provider with an optional cache.
// It is built once at startup and shared by handlers and workers.
type Service struct {
	provider      Provider
	cache         Cache
	maxInputChars int
	maxChunks     int
	chunkStrategy string
	logger        *slog.Logger
}

type ServiceOption func(*Service)

func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func WithMaxInputChars(n int) ServiceOption {
	return func(s *Service) { s.maxInputChars = n }
}

// WithMaxChunks caps how many pieces SynthesizeLong may split a text into.
func WithMaxChunks(n int) ServiceOption {
	return func(s *Service) { s.maxChunks = n }
}

// WithChunkStrategy picks how long input is split: chunker.StrategyRecursive
// (the default) or chunker.StrategySentence.
func WithChunkStrategy(strategy string) ServiceOption {
	return func(s *Service) { s.chunkStrategy = strategy }
}

func NewService(p Provider, opts ...ServiceOption) *Service {
	s := &Service{
		provider: p,
		logger:   slog.Default().With("component", "synthesis", "provider", p.Name()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewProvider builds the backend selected by cfg.Backend. It fails fast when
// the backend cannot work: missing key, missing voice model.
func NewProvider(ctx context.Context, cfg config.TTSConfig) (Provider, error) {
	switch cfg.Backend {
	case "openai":
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Voice:   cfg.Voice,
			Model:   cfg.Model,
		})
	case "coqui":
		return NewCoqui(CoquiConfig{
			BaseURL:   cfg.CoquiURL,
			Model:     cfg.Model,
			SpeakerID: cfg.CoquiSpeakerID,
			Language:  cfg.CoquiLanguage,
		}), nil
	case "piper":
		modelPath := cfg.PiperModel
		if _, err := os.Stat(modelPath); err != nil && cfg.PiperAutoDownload {
			name := strings.TrimSuffix(filepath.Base(modelPath), ".onnx")
			modelPath, _, err = DownloadVoice(ctx, DownloadOptions{
				Name:    name,
				Version: cfg.PiperVoiceVersion,
				Dir:     cfg.PiperModelDir,
				BaseURL: cfg.PiperVoicesURL,
			})
			if err != nil {
				return nil, fmt.Errorf("fetch piper voice %s: %w", name, err)
			}
		}
		return NewPiper(PiperConfig{BinPath: cfg.PiperBinPath, ModelPath: modelPath})
	default:
		return nil, fmt.Errorf("unknown TTS backend %q", cfg.Backend)
	}
}

func (s *Service) Name() string { return s.provider.Name() }

// Validate checks a request without synthesizing it.
func (s *Service) Validate(req SynthesisRequest) error {
	if strings.TrimSpace(req.Input) == "" {
		return ErrEmptyInput
	}
	if n := utf8.RuneCountInString(req.Input); s.maxInputChars > 0 && n > s.maxInputChars {
		return fmt.Errorf("%w: %d characters (max %d)", ErrInputTooLong, n, s.maxInputChars)
	}
	return nil
}

// ValidateLong checks a request bound for SynthesizeLong: the text may
// exceed the input limit as long as it fits in the allowed chunks. It
// returns the pieces that would be synthesized.
func (s *Service) ValidateLong(req SynthesisRequest) ([]chunker.TextChunk, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, ErrEmptyInput
	}
	if s.maxInputChars <= 0 || utf8.RuneCountInString(req.Input) <= s.maxInputChars {
		return []chunker.TextChunk{{Content: req.Input}}, nil
	}
	chunks := chunker.Chunk(req.Input, chunker.Options{MaxChars: s.maxInputChars, Strategy: s.chunkStrategy})
	if s.maxChunks > 0 && len(chunks) > s.maxChunks {
		return nil, fmt.Errorf("%w: needs %d requests of %d characters (max %d)", ErrInputTooLong, len(chunks), s.maxInputChars, s.maxChunks)
	}
	return chunks, nil
}

// SynthesizeLong synthesizes text of any length. Input over the limit is
// split at paragraph and sentence breaks and the audio of each piece is
// joined in order.
func (s *Service) SynthesizeLong(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	chunks, err := s.ValidateLong(req)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 1 {
		return s.Synthesize(ctx, req)
	}

	s.logger.Info("synthesizing long input in chunks", "chars", utf8.RuneCountInString(req.Input), "chunks", len(chunks), "strategy", s.chunkStrategy)
	parts := make([]*SynthesisResult, 0, len(chunks))
	for _, c := range chunks {
		r := req
		r.Input = c.Content
		res, err := s.Synthesize(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("synthesize chunk %d of %d: %w", c.Index+1, len(chunks), err)
		}
		parts = append(parts, res)
	}
	return joinAudio(parts)
}

// StreamLong is Stream for input that may exceed the limit. Long input is
// synthesized in full before the reader is returned.
func (s *Service) StreamLong(ctx context.Context, req SynthesisRequest) (io.ReadCloser, string, error) {
	chunks, err := s.ValidateLong(req)
	if err != nil {
		return nil, "", err
	}
	if len(chunks) == 1 {
		return s.Stream(ctx, req)
	}
	res, err := s.SynthesizeLong(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return io.NopCloser(bytes.NewReader(res.Audio)), res.ContentType, nil
}

// Synthesize returns audio for req, serving repeated requests from cache.
func (s *Service) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	key := s.cacheKey(req)
	if s.cache != nil {
		if res, ok := s.cache.Load(ctx, key); ok {
			s.logger.Debug("audio cache hit", "key", key)
			return res, nil
		}
	}

	res, err := s.provider.Synthesize(ctx, req)
	if err != nil {
		s.logger.Error("synthesis failed", "error", err, "chars", len(req.Input))
		return nil, err
	}
	s.logger.Info("generated speech", "chars", len(req.Input), "bytes", len(res.Audio), "content_type", res.ContentType)

	if s.cache != nil {
		s.cache.Store(ctx, key, res)
	}
	return res, nil
}

// Stream returns audio as a reader. Providers that stream natively are used
// directly when no cache is configured; otherwise the full result is buffered.
func (s *Service) Stream(ctx context.Context, req SynthesisRequest) (io.ReadCloser, string, error) {
	if err := s.Validate(req); err != nil {
		return nil, "", err
	}

	if st, ok := s.provider.(Streamer); ok && s.cache == nil {
		body, contentType, err := st.Stream(ctx, req)
		if err != nil {
			s.logger.Error("synthesis stream failed", "error", err, "chars", len(req.Input))
			return nil, "", err
		}
		return body, contentType, nil
	}

	res, err := s.Synthesize(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return io.NopCloser(bytes.NewReader(res.Audio)), res.ContentType, nil
}

func (s *Service) cacheKey(req SynthesisRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%g\x00%s", s.provider.Name(), req.Voice, req.Model, req.Speed, req.Input)
	return "tts:" + hex.EncodeToString(h.Sum(nil))
}
