package synthesis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const providerOpenAI = "openai"

// OpenAIConfig holds configuration for the OpenAI speech backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Voice   string // default: "alloy"
	Model   string // default: "tts-1"
}

// OpenAI synthesizes speech using OpenAI's /audio/speech endpoint.
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI provider with defaults applied.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Voice == "" {
		cfg.Voice = string(openai.VoiceAlloy)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.TTSModel1)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	return &OpenAI{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: slog.Default().With("component", "synthesis.openai"),
	}, nil
}

func (o *OpenAI) Name() string { return providerOpenAI }

// Synthesize converts text to audio and returns the audio bytes as MP3.
func (o *OpenAI) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	body, contentType, err := o.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	return &SynthesisResult{Audio: audio, ContentType: contentType}, nil
}

// Stream returns the response body as it arrives from the API.
func (o *OpenAI) Stream(ctx context.Context, req SynthesisRequest) (io.ReadCloser, string, error) {
	voice := req.Voice
	if voice == "" {
		voice = o.cfg.Voice
	}
	model := req.Model
	if model == "" {
		model = o.cfg.Model
	}

	o.logger.Debug("requesting speech", "voice", voice, "model", model, "chars", len(req.Input))

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(model),
		Input:          req.Input,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          req.Speed,
	})
	if err != nil {
		return nil, "", o.wrapError(err)
	}

	return resp, ContentTypeMP3, nil
}

func (o *OpenAI) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Provider: providerOpenAI}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Provider: providerOpenAI}
	}
	return fmt.Errorf("openai speech: %w", err)
}
