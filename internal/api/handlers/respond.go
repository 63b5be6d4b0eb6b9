package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/speakdoc/internal/cache"
	"github.com/nikhilbhutani/speakdoc/internal/storage"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
	"github.com/nikhilbhutani/speakdoc/pkg/textextract"
)

var (
	errNoFile      = errors.New("file required")
	errBadForm     = errors.New("invalid multipart form")
	errTooLarge    = errors.New("upload too large")
	errBadJSONBody = errors.New("invalid request body")
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status code and a message safe to show the
// client. Extraction failures never carry partial text.
func writeError(w http.ResponseWriter, err error) {
	status, msg := errorResponse(err)
	writeJSON(w, status, map[string]string{"error": msg})
}

func errorResponse(err error) (int, string) {
	var apiErr *synthesis.APIError

	switch {
	case errors.Is(err, textextract.ErrUnsupportedFormat):
		value, _ := textextract.UnsupportedValue(err)
		return http.StatusUnsupportedMediaType, fmt.Sprintf("Unsupported file type: %s. Supported types are: %s",
			value, strings.Join(textextract.SupportedTypes(), ", "))
	case errors.Is(err, textextract.ErrEmptyContent):
		return http.StatusBadRequest, "No text content found in the document"
	case errors.Is(err, textextract.ErrDecode),
		errors.Is(err, textextract.ErrParse),
		errors.Is(err, textextract.ErrExtractionFailed):
		return http.StatusBadRequest, extractionMessage(err)
	case errors.Is(err, synthesis.ErrEmptyInput):
		return http.StatusBadRequest, "No text provided"
	case errors.Is(err, synthesis.ErrInputTooLong):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &apiErr):
		if apiErr.IsClientInput() {
			return http.StatusBadRequest, SanitizeForClient(err)
		}
		return http.StatusInternalServerError, "Failed to generate speech: " + SanitizeForClient(err)
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "Audio file not found"
	case errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest, "invalid audio file name"
	case errors.Is(err, cache.ErrJobNotFound):
		return http.StatusNotFound, "job not found"
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, errNoFile), errors.Is(err, errBadForm), errors.Is(err, errBadJSONBody):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to generate speech: " + SanitizeForClient(err)
	}
}

// extractionMessage drops the wrapping added on the way up and keeps the
// extractor's own message.
func extractionMessage(err error) string {
	var te *textextract.Error
	if errors.As(err, &te) {
		err = te
	}
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// readUpload pulls the "file" part out of a multipart request, capped at
// maxBytes.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, fmt.Errorf("%w (max %d bytes)", errTooLarge, maxBytes)
		}
		return "", nil, errBadForm
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errBadJSONBody
	}
	return nil
}
