package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const providerPiper = "piper"

// PiperConfig holds configuration for the local Piper backend.
type PiperConfig struct {
	BinPath   string // default: "piper"
	ModelPath string // required: path to the .onnx voice model
}

// Piper synthesizes speech by running the Piper binary as a subprocess.
// Voice selection is controlled by the model file, not runtime flags.
type Piper struct {
	cfg        PiperConfig
	sampleRate int
	logger     *slog.Logger
}

// NewPiper checks that the voice model exists and reads its sample rate
// from the accompanying .onnx.json file.
func NewPiper(cfg PiperConfig) (*Piper, error) {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	if cfg.ModelPath == "" {
		return nil, ErrNoModel
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("piper model: %w", err)
	}

	return &Piper{
		cfg:        cfg,
		sampleRate: readSampleRate(cfg.ModelPath + ".json"),
		logger:     slog.Default().With("component", "synthesis.piper"),
	}, nil
}

func (p *Piper) Name() string { return providerPiper }

// SampleRate returns the rate of the PCM produced by the voice model.
func (p *Piper) SampleRate() int { return p.sampleRate }

// Synthesize pipes text into Piper via stdin and wraps the raw PCM written
// to stdout in a WAV container.
func (p *Piper) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	args := []string{"--model", p.cfg.ModelPath, "--output-raw"}
	if req.Speed > 0 {
		// Piper expresses speed as phoneme length: larger is slower.
		args = append(args, "--length_scale", fmt.Sprintf("%.3f", 1/req.Speed))
	}

	cmd := exec.CommandContext(ctx, p.cfg.BinPath, args...)
	cmd.Stdin = strings.NewReader(req.Input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	pcm := stdout.Bytes()
	if len(pcm)%2 != 0 {
		pcm = pcm[:len(pcm)-1]
	}

	audio, err := wavBytes(pcm, p.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}

	p.logger.Debug("synthesized audio", "chars", len(req.Input), "samples", len(pcm)/2, "sample_rate", p.sampleRate)
	return &SynthesisResult{Audio: audio, ContentType: ContentTypeWAV}, nil
}

func readSampleRate(configPath string) int {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultSampleRate
	}
	var voiceCfg struct {
		Audio struct {
			SampleRate int `json:"sample_rate"`
		} `json:"audio"`
	}
	if err := json.Unmarshal(data, &voiceCfg); err != nil || voiceCfg.Audio.SampleRate <= 0 {
		return DefaultSampleRate
	}
	return voiceCfg.Audio.SampleRate
}
