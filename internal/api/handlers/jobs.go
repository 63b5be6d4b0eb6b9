package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/speakdoc/internal/cache"
	"github.com/nikhilbhutani/speakdoc/internal/document"
	"github.com/nikhilbhutani/speakdoc/internal/models"
	"github.com/nikhilbhutani/speakdoc/internal/queue"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
)

type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*models.Job)) (*models.Job, error)
}

type SpeechEnqueuer interface {
	EnqueueSpeechSynthesize(ctx context.Context, payload queue.SpeechSynthesizePayload) error
}

type JobHandler struct {
	extractor document.TextExtractor
	synth     *synthesis.Service
	jobs      JobStore
	queue     SpeechEnqueuer
	maxUpload int64
}

func NewJobHandler(extractor document.TextExtractor, synth *synthesis.Service, jobs JobStore, q SpeechEnqueuer, maxUpload int64) *JobHandler {
	return &JobHandler{
		extractor: extractor,
		synth:     synth,
		jobs:      jobs,
		queue:     q,
		maxUpload: maxUpload,
	}
}

// Create extracts an upload's text up front, so bad documents fail fast,
// then hands synthesis to the worker. An optional callback_url form field
// is notified when the job finishes.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		writeError(w, err)
		return
	}

	callback := strings.TrimSpace(r.FormValue("callback_url"))
	if callback != "" && !validCallbackURL(callback) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "callback_url must be an absolute http or https URL"})
		return
	}

	ext, err := h.extractor.Extract(r.Context(), filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	req := synthesis.SynthesisRequest{
		Input: ext.Text,
		Voice: r.FormValue("voice"),
		Model: r.FormValue("model"),
	}
	if _, err := h.synth.ValidateLong(req); err != nil {
		writeError(w, err)
		return
	}

	job := &models.Job{Filename: filename, Format: ext.Format.String(), CallbackURL: callback}
	if err := h.jobs.Create(r.Context(), job); err != nil {
		slog.Error("create job", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create job"})
		return
	}

	err = h.queue.EnqueueSpeechSynthesize(r.Context(), queue.SpeechSynthesizePayload{
		JobID:    job.ID.String(),
		Text:     req.Input,
		Voice:    req.Voice,
		Model:    req.Model,
		Filename: filename,
		Format:   job.Format,
	})
	if err != nil {
		slog.Error("enqueue speech job", "job_id", job.ID, "error", err)
		h.jobs.Update(r.Context(), job.ID, func(j *models.Job) {
			j.Status = models.JobStatusFailed
			j.Error = "failed to enqueue job"
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to enqueue job"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.ID.String(),
		"status":     job.Status,
		"status_url": "/api/v1/jobs/" + job.ID.String(),
	})
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job ID"})
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if errors.Is(err, cache.ErrJobNotFound) {
		writeError(w, err)
		return
	}
	if err != nil {
		slog.Error("load job", "job_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load job"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func validCallbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
