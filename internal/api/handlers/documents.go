package handlers

import (
	"net/http"
	"unicode/utf8"

	"github.com/nikhilbhutani/speakdoc/internal/document"
)

type DocumentHandler struct {
	extractor document.TextExtractor
	maxUpload int64
}

func NewDocumentHandler(extractor document.TextExtractor, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{extractor: extractor, maxUpload: maxUpload}
}

// Extract returns the text of an uploaded document without synthesizing it.
func (h *DocumentHandler) Extract(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		writeError(w, err)
		return
	}

	ext, err := h.extractor.Extract(r.Context(), filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":   ext.Filename,
		"format":     ext.Format.String(),
		"mime":       ext.MIME,
		"text":       ext.Text,
		"characters": utf8.RuneCountInString(ext.Text),
	})
}

// SupportedTypes lists the accepted upload extensions.
func (h *DocumentHandler) SupportedTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"supported_types": h.extractor.SupportedTypes()})
}
