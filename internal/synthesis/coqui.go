package synthesis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const providerCoqui = "coqui"

// CoquiConfig holds configuration for a Coqui TTS server backend.
type CoquiConfig struct {
	BaseURL   string // default: "http://localhost:5002"
	Model     string // default: "tts_models/en/ljspeech/tacotron2-DDC"
	SpeakerID string // default: "0"
	Language  string // default: "en"
}

// Coqui synthesizes speech by calling the /api/tts endpoint of a running
// Coqui TTS server.
type Coqui struct {
	cfg        CoquiConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCoqui creates a Coqui provider with defaults applied.
func NewCoqui(cfg CoquiConfig) *Coqui {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5002"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "tts_models/en/ljspeech/tacotron2-DDC"
	}
	if cfg.SpeakerID == "" {
		cfg.SpeakerID = "0"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Coqui{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     slog.Default().With("component", "synthesis.coqui"),
	}
}

func (c *Coqui) Name() string { return providerCoqui }

// Synthesize returns the WAV produced by the server.
func (c *Coqui) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	speaker := req.Voice
	if speaker == "" {
		speaker = c.cfg.SpeakerID
	}

	params := url.Values{}
	params.Set("text", req.Input)
	params.Set("model_name", model)
	params.Set("speaker_idx", speaker)
	params.Set("language", c.cfg.Language)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/api/tts?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("coqui request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Provider: providerCoqui}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	c.logger.Debug("synthesized audio", "model", model, "chars", len(req.Input), "bytes", len(audio))
	return &SynthesisResult{Audio: audio, ContentType: ContentTypeWAV}, nil
}
