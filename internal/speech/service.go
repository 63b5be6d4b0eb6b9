// Package speech turns text and uploaded documents into stored audio clips.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/speakdoc/internal/document"
	"github.com/nikhilbhutani/speakdoc/internal/models"
	"github.com/nikhilbhutani/speakdoc/internal/storage"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
)

// Request describes one clip to generate.
type Request struct {
	synthesis.SynthesisRequest
	Source   string // models.SourceText or models.SourceDocument
	Filename string
	Format   string
}

// Clip is a stored audio file and its history record.
type Clip struct {
	Name        string
	URL         string
	ContentType string
	Record      *models.SpeechRecord
}

type Service struct {
	extractor document.TextExtractor
	synth     *synthesis.Service
	store     storage.Storage
	history   Recorder
	logger    *slog.Logger
}

func NewService(extractor document.TextExtractor, synth *synthesis.Service, store storage.Storage, history Recorder) *Service {
	if history == nil {
		history = NewHistory(nil)
	}
	return &Service{
		extractor: extractor,
		synth:     synth,
		store:     store,
		history:   history,
		logger:    slog.Default().With("component", "speech"),
	}
}

func (s *Service) Extractor() document.TextExtractor { return s.extractor }
func (s *Service) Synthesizer() *synthesis.Service { return s.synth }
func (s *Service) Storage() storage.Storage { return s.store }
func (s *Service) History() Recorder { return s.history }

// Generate synthesizes req, stores the audio under a fresh name and
// records it. Document text may run past the per-request limit and is
// synthesized in chunks. A history failure is logged; the stored clip is
// still returned.
func (s *Service) Generate(ctx context.Context, req Request) (*Clip, error) {
	var res *synthesis.SynthesisResult
	var err error
	if req.Source == models.SourceDocument {
		res, err = s.synth.SynthesizeLong(ctx, req.SynthesisRequest)
	} else {
		res, err = s.synth.Synthesize(ctx, req.SynthesisRequest)
	}
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	name := id.String() + res.Ext()
	if err := s.store.Upload(ctx, name, bytes.NewReader(res.Audio), res.ContentType); err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}

	source := req.Source
	if source == "" {
		source = models.SourceText
	}
	rec := &models.SpeechRecord{
		ID:          id,
		Source:      source,
		Filename:    req.Filename,
		Format:      req.Format,
		Backend:     s.synth.Name(),
		Voice:       req.Voice,
		Model:       req.Model,
		Characters:  utf8.RuneCountInString(req.Input),
		AudioName:   name,
		ContentType: res.ContentType,
		SizeBytes:   int64(len(res.Audio)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.Warn("failed to record speech", "audio_name", name, "error", err)
	}

	s.logger.Info("stored speech clip", "audio_name", name, "source", source, "bytes", len(res.Audio))
	return &Clip{
		Name:        name,
		URL:         s.store.URL(name),
		ContentType: res.ContentType,
		Record:      rec,
	}, nil
}

// GenerateFromDocument extracts the upload's text and generates a clip
// from it.
func (s *Service) GenerateFromDocument(ctx context.Context, filename string, data []byte, req synthesis.SynthesisRequest) (*Clip, error) {
	ext, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	req.Input = ext.Text
	return s.Generate(ctx, Request{
		SynthesisRequest: req,
		Source:           models.SourceDocument,
		Filename:         filename,
		Format:           ext.Format.String(),
	})
}
