package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeSpeechSynthesize = "speech:synthesize"

// SpeechSynthesizePayload carries already-extracted text so the worker
// never needs the original upload.
type SpeechSynthesizePayload struct {
	JobID    string  `json:"job_id"`
	Text     string  `json:"text"`
	Voice    string  `json:"voice,omitempty"`
	Model    string  `json:"model,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
	Filename string  `json:"filename,omitempty"`
	Format   string  `json:"format,omitempty"`
}

// NewSpeechSynthesizeTask builds the task enqueued for a background job.
func NewSpeechSynthesizeTask(payload SpeechSynthesizePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeSpeechSynthesize, data,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.TaskID(payload.JobID),
	), nil
}

func ParseSpeechSynthesizePayload(t *asynq.Task) (SpeechSynthesizePayload, error) {
	var payload SpeechSynthesizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.JobID == "" {
		return payload, fmt.Errorf("payload missing job_id")
	}
	return payload, nil
}
