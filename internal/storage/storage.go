package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nikhilbhutani/speakdoc/internal/config"
)

var (
	ErrNotFound    = errors.New("audio file not found")
	ErrInvalidName = errors.New("invalid audio file name")
)

// Storage keeps generated audio files under flat names such as
// "3f0c...e1.wav". Names never contain path separators.
type Storage interface {
	Upload(ctx context.Context, name string, data io.Reader, contentType string) error
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// New returns the backend selected by cfg.Backend.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.AudioDir)
	case "supabase":
		return NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ValidateName rejects empty names and anything that could escape the
// storage root.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
