package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/speakdoc/internal/storage"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
)

type AudioHandler struct {
	store storage.Storage
}

func NewAudioHandler(store storage.Storage) *AudioHandler {
	return &AudioHandler{store: store}
}

// Serve plays back a stored clip inline.
func (h *AudioHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := h.store.Download(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rc.Close()

	contentType := synthesis.ContentTypeMP3
	if filepath.Ext(name) == ".wav" {
		contentType = synthesis.ContentTypeWAV
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="speech`+synthesis.ExtFor(contentType)+`"`)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("audio download interrupted", "name", name, "error", err)
	}
}
