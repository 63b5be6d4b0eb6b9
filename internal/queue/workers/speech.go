package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speakdoc/internal/models"
	"github.com/nikhilbhutani/speakdoc/internal/queue"
	"github.com/nikhilbhutani/speakdoc/internal/speech"
	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
	"github.com/nikhilbhutani/speakdoc/internal/webhook"
)

type Generator interface {
	Generate(ctx context.Context, req speech.Request) (*speech.Clip, error)
}

type JobUpdater interface {
	Update(ctx context.Context, id uuid.UUID, fn func(*models.Job)) (*models.Job, error)
}

// Notifier delivers job callbacks.
type Notifier interface {
	Notify(id, url, event string, payload interface{})
}

// SpeechWorker runs speech:synthesize tasks and keeps the job record in
// step with the task's progress.
type SpeechWorker struct {
	gen    Generator
	jobs   JobUpdater
	notify Notifier
	logger *slog.Logger
}

type Option func(*SpeechWorker)

// WithNotifier sends a callback for jobs that carry a callback URL once
// they complete or permanently fail.
func WithNotifier(n Notifier) Option {
	return func(w *SpeechWorker) { w.notify = n }
}

func NewSpeechWorker(gen Generator, jobs JobUpdater, opts ...Option) *SpeechWorker {
	w := &SpeechWorker{
		gen:    gen,
		jobs:   jobs,
		logger: slog.Default().With("component", "worker.speech"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *SpeechWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.ParseSpeechSynthesizePayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("parse job ID: %v: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("processing speech job", "job_id", jobID, "chars", len(payload.Text))

	if _, err := w.jobs.Update(ctx, jobID, func(j *models.Job) {
		j.Status = models.JobStatusProcessing
		j.Error = ""
	}); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	clip, err := w.gen.Generate(ctx, speech.Request{
		SynthesisRequest: synthesis.SynthesisRequest{
			Input: payload.Text,
			Voice: payload.Voice,
			Model: payload.Model,
			Speed: payload.Speed,
		},
		Source:   models.SourceDocument,
		Filename: payload.Filename,
		Format:   payload.Format,
	})
	if err != nil {
		return w.fail(ctx, jobID, err)
	}

	job, err := w.jobs.Update(ctx, jobID, func(j *models.Job) {
		j.Status = models.JobStatusCompleted
		j.AudioName = clip.Name
		j.AudioURL = clip.URL
		if clip.Record != nil {
			id := clip.Record.ID
			j.RecordID = &id
		}
	})
	if err != nil {
		return fmt.Errorf("update status to completed: %w", err)
	}

	w.logger.Info("speech job completed", "job_id", jobID, "audio_name", clip.Name)
	w.callback(job, webhook.EventJobCompleted)
	return nil
}

// fail records the failure on the job. Jobs that will be retried go back to
// pending; permanent failures skip asynq's retries.
func (w *SpeechWorker) fail(ctx context.Context, jobID uuid.UUID, cause error) error {
	permanent := !retryable(cause)
	if !permanent {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		permanent = retried >= maxRetry
	}

	status := models.JobStatusPending
	if permanent {
		status = models.JobStatusFailed
	}

	w.logger.Error("speech job failed", "job_id", jobID, "error", cause, "permanent", permanent)
	job, err := w.jobs.Update(ctx, jobID, func(j *models.Job) {
		j.Status = status
		j.Error = failureMessage(cause)
	})
	if err != nil {
		w.logger.Error("failed to record job failure", "job_id", jobID, "error", err)
	}

	if permanent {
		w.callback(job, webhook.EventJobFailed)
		return fmt.Errorf("generate speech: %v: %w", cause, asynq.SkipRetry)
	}
	return fmt.Errorf("generate speech: %w", cause)
}

func (w *SpeechWorker) callback(job *models.Job, event string) {
	if w.notify == nil || job == nil || job.CallbackURL == "" {
		return
	}
	w.notify.Notify(job.ID.String(), job.CallbackURL, event, job)
}

func retryable(err error) bool {
	if errors.Is(err, synthesis.ErrEmptyInput) || errors.Is(err, synthesis.ErrInputTooLong) {
		return false
	}
	var apiErr *synthesis.APIError
	if errors.As(err, &apiErr) {
		return !apiErr.IsClientInput()
	}
	return true
}

func failureMessage(err error) string {
	var apiErr *synthesis.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s rejected the request (status %d)", apiErr.Provider, apiErr.StatusCode)
	}
	return err.Error()
}
