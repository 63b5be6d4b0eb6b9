package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/speakdoc/internal/speech"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
)

type speechRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Model string  `json:"model,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

func (r speechRequest) synthesis() synthesis.SynthesisRequest {
	return synthesis.SynthesisRequest{Input: r.Text, Voice: r.Voice, Model: r.Model, Speed: r.Speed}
}

type SpeechHandler struct {
	svc       *speech.Service
	maxUpload int64
}

func NewSpeechHandler(svc *speech.Service, maxUpload int64) *SpeechHandler {
	return &SpeechHandler{svc: svc, maxUpload: maxUpload}
}

// TextToSpeech streams audio for JSON {"text", "voice", "model"} as a
// download.
func (h *SpeechHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("text-to-speech request", "voice", req.Voice, "model", req.Model, "chars", len(req.Text))
	h.stream(w, r, req.synthesis())
}

// DocumentToSpeech extracts the text of a multipart "file" upload and
// streams it back as audio. Voice and model come from the query string or
// form fields.
func (h *SpeechHandler) DocumentToSpeech(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		writeError(w, err)
		return
	}

	ext, err := h.svc.Extractor().Extract(r.Context(), filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	req := synthesis.SynthesisRequest{
		Input: ext.Text,
		Voice: r.FormValue("voice"),
		Model: r.FormValue("model"),
	}
	body, contentType, err := h.svc.Synthesizer().StreamLong(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.send(w, body, contentType, "document_speech")
}

func (h *SpeechHandler) stream(w http.ResponseWriter, r *http.Request, req synthesis.SynthesisRequest) {
	body, contentType, err := h.svc.Synthesizer().Stream(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.send(w, body, contentType, "speech")
}

// send streams body as a download named <base><ext>.
func (h *SpeechHandler) send(w http.ResponseWriter, body io.ReadCloser, contentType, base string) {
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+base+synthesis.ExtFor(contentType)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("audio stream interrupted", "error", err)
	}
}

// Synthesize stores a clip for JSON {"text"} and returns where to fetch it.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	clip, ok := h.generate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"file_path": clip.URL,
	})
}

// Convert is Synthesize with the response shape the Piper frontend reads.
func (h *SpeechHandler) Convert(w http.ResponseWriter, r *http.Request) {
	clip, ok := h.generate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"audio_path": clip.Name,
		"filename":   "speech" + synthesis.ExtFor(clip.ContentType),
	})
}

func (h *SpeechHandler) generate(w http.ResponseWriter, r *http.Request) (*speech.Clip, bool) {
	var req speechRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return nil, false
	}

	clip, err := h.svc.Generate(r.Context(), speech.Request{SynthesisRequest: req.synthesis()})
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return clip, true
}

// CreateFromDocument stores a clip for a multipart "file" upload and returns
// its history record.
func (h *SpeechHandler) CreateFromDocument(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		writeError(w, err)
		return
	}

	clip, err := h.svc.GenerateFromDocument(r.Context(), filename, data, synthesis.SynthesisRequest{
		Voice: r.FormValue("voice"),
		Model: r.FormValue("model"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"record":    clip.Record,
		"audio_url": clip.URL,
	})
}

// List returns stored clips, newest first.
func (h *SpeechHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.svc.History().List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list speech records"})
		slog.Error("list speech records", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records, "count": len(records)})
}
