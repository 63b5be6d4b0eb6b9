package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/nikhilbhutani/speakdoc/internal/document"
	"github.com/nikhilbhutani/speakdoc/internal/models"
	"github.com/nikhilbhutani/speakdoc/internal/storage"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
	"github.com/nikhilbhutani/speakdoc/pkg/textextract"
)

type wavProvider struct{}

func (wavProvider) Name() string { return "fake" }

func (wavProvider) Synthesize(_ context.Context, req synthesis.SynthesisRequest) (*synthesis.SynthesisResult, error) {
	return &synthesis.SynthesisResult{Audio: []byte("RIFF" + req.Input), ContentType: synthesis.ContentTypeWAV}, nil
}

type memRecorder struct {
	mu      sync.Mutex
	records []models.SpeechRecord
	err     error
}

func (m *memRecorder) Record(_ context.Context, rec *models.SpeechRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *memRecorder) List(_ context.Context, limit, offset int) ([]models.SpeechRecord, error) {
	return m.records, nil
}

func newTestService(t *testing.T, rec Recorder) (*Service, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error: %v", err)
	}
	svc := NewService(
		document.NewTextExtractor(document.DetectSniff, nil),
		synthesis.NewService(wavProvider{}),
		store,
		rec,
	)
	return svc, store
}

func TestService_Generate(t *testing.T) {
	rec := &memRecorder{}
	svc, store := newTestService(t, rec)
	ctx := context.Background()

	clip, err := svc.Generate(ctx, Request{SynthesisRequest: synthesis.SynthesisRequest{Input: "hello", Voice: "v1"}})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.HasSuffix(clip.Name, ".wav") {
		t.Errorf("Name = %q, want .wav suffix", clip.Name)
	}
	if clip.URL != "/audio/"+clip.Name {
		t.Errorf("URL = %q", clip.URL)
	}

	rc, err := store.Download(ctx, clip.Name)
	if err != nil {
		t.Fatalf("stored clip missing: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "RIFFhello" {
		t.Errorf("stored audio = %q", data)
	}

	if len(rec.records) != 1 {
		t.Fatalf("recorded %d clips, want 1", len(rec.records))
	}
	r := rec.records[0]
	if r.Source != models.SourceText || r.Characters != 5 || r.Backend != "fake" || r.AudioName != clip.Name {
		t.Errorf("record = %+v", r)
	}
}

func TestService_GenerateHistoryFailureKeepsClip(t *testing.T) {
	svc, _ := newTestService(t, &memRecorder{err: errors.New("db down")})

	clip, err := svc.Generate(context.Background(), Request{SynthesisRequest: synthesis.SynthesisRequest{Input: "hello"}})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if clip.Name == "" {
		t.Error("clip not returned")
	}
}

func TestService_GenerateFromDocument(t *testing.T) {
	rec := &memRecorder{}
	svc, _ := newTestService(t, rec)
	ctx := context.Background()

	clip, err := svc.GenerateFromDocument(ctx, "notes.txt", []byte("read me aloud"), synthesis.SynthesisRequest{})
	if err != nil {
		t.Fatalf("GenerateFromDocument() error: %v", err)
	}
	if clip.Record.Source != models.SourceDocument || clip.Record.Format != "txt" || clip.Record.Filename != "notes.txt" {
		t.Errorf("record = %+v", clip.Record)
	}

	_, err = svc.GenerateFromDocument(ctx, "blank.txt", []byte("  \n "), synthesis.SynthesisRequest{})
	if !errors.Is(err, textextract.ErrEmptyContent) {
		t.Errorf("GenerateFromDocument() error = %v, want ErrEmptyContent", err)
	}
	if len(rec.records) != 1 {
		t.Errorf("recorded %d clips, want 1", len(rec.records))
	}
}

func TestService_GenerateRejectsEmptyText(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Generate(context.Background(), Request{})
	if !errors.Is(err, synthesis.ErrEmptyInput) {
		t.Errorf("Generate() error = %v, want ErrEmptyInput", err)
	}
}

func TestHistory_Disabled(t *testing.T) {
	var h *History
	if h.Enabled() {
		t.Fatal("nil history reports enabled")
	}
	if err := NewHistory(nil).Record(context.Background(), &models.SpeechRecord{}); err != nil {
		t.Errorf("Record() error: %v", err)
	}
	records, err := NewHistory(nil).List(context.Background(), 10, 0)
	if err != nil || records == nil || len(records) != 0 {
		t.Errorf("List() = %v, %v", records, err)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, defaultPageSize, 0},
		{5, 10, 5, 10},
		{1000, -3, maxPageSize, 0},
	}
	for _, tt := range tests {
		l, o := clampPage(tt.limit, tt.offset)
		if l != tt.wantLimit || o != tt.wantOffset {
			t.Errorf("clampPage(%d, %d) = %d, %d", tt.limit, tt.offset, l, o)
		}
	}
}

type mp3Provider struct{}

func (mp3Provider) Name() string { return "fake" }

func (mp3Provider) Synthesize(_ context.Context, req synthesis.SynthesisRequest) (*synthesis.SynthesisResult, error) {
	return &synthesis.SynthesisResult{Audio: []byte("[" + req.Input + "]"), ContentType: synthesis.ContentTypeMP3}, nil
}

func TestService_GenerateLongDocument(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error: %v", err)
	}
	svc := NewService(
		document.NewTextExtractor(document.DetectSniff, nil),
		synthesis.NewService(mp3Provider{}, synthesis.WithMaxInputChars(12), synthesis.WithMaxChunks(4)),
		store,
		nil,
	)
	ctx := context.Background()

	clip, err := svc.GenerateFromDocument(ctx, "story.txt", []byte("One two.\n\nThree four."), synthesis.SynthesisRequest{})
	if err != nil {
		t.Fatalf("GenerateFromDocument() error: %v", err)
	}
	rc, err := store.Download(ctx, clip.Name)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "[One two.][Three four.]" {
		t.Errorf("stored audio = %q", data)
	}

	// Plain text requests keep the single-request limit.
	_, err = svc.Generate(ctx, Request{SynthesisRequest: synthesis.SynthesisRequest{Input: "One two.\n\nThree four."}})
	if !errors.Is(err, synthesis.ErrInputTooLong) {
		t.Errorf("Generate() error = %v, want ErrInputTooLong", err)
	}
}
