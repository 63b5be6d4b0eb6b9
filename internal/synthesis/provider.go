// Package synthesis turns text into speech through a configurable backend.
package synthesis

import (
	"context"
	"io"
)

const (
	ContentTypeMP3 = "audio/mpeg"
	ContentTypeWAV = "audio/wav"
)

// SynthesisRequest holds the parameters for text-to-speech generation.
type SynthesisRequest struct {
	Input string  `json:"input"`
	Voice string  `json:"voice,omitempty"`
	Model string  `json:"model,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// SynthesisResult holds the generated audio and its content type.
type SynthesisResult struct {
	Audio       []byte `json:"audio"`
	ContentType string `json:"content_type"` // "audio/mpeg" (OpenAI) or "audio/wav" (Coqui, Piper)
}

// Ext returns the file extension matching the result's content type.
func (r *SynthesisResult) Ext() string {
	return ExtFor(r.ContentType)
}

// ExtFor maps an audio content type to a file extension.
func ExtFor(contentType string) string {
	if contentType == ContentTypeWAV {
		return ".wav"
	}
	return ".mp3"
}

// Provider is the interface for text-to-speech backends.
type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}

// Streamer is implemented by providers that can hand back audio while it is
// still being generated. The caller closes the returned reader.
type Streamer interface {
	Stream(ctx context.Context, req SynthesisRequest) (io.ReadCloser, string, error)
}
