package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// HandlersRegistry maps task types to handlers. Every task passes through
// a logging middleware that records its type, duration and outcome.
type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	mux := asynq.NewServeMux()
	mux.Use(logTasks)
	return &HandlersRegistry{mux: mux}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
}

// RegisterSpeech installs the speech:synthesize handler.
func (r *HandlersRegistry) RegisterSpeech(fn func(context.Context, *asynq.Task) error) {
	r.Register(TypeSpeechSynthesize, asynq.HandlerFunc(fn))
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}

func logTasks(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		taskID, _ := asynq.GetTaskID(ctx)
		retry, _ := asynq.GetRetryCount(ctx)

		err := next.ProcessTask(ctx, t)

		attrs := []any{"type", t.Type(), "task_id", taskID, "retry", retry, "duration", time.Since(start)}
		if err != nil {
			slog.Warn("task failed", append(attrs, "error", err)...)
			return err
		}
		slog.Info("task done", attrs...)
		return nil
	})
}
