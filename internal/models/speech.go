package models

import (
	"time"

	"github.com/google/uuid"
)

// SpeechRecord is one generated audio clip.
type SpeechRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Source      string    `json:"source" db:"source"`
	Filename    string    `json:"filename,omitempty" db:"filename"`
	Format      string    `json:"format,omitempty" db:"format"`
	Backend     string    `json:"backend" db:"backend"`
	Voice       string    `json:"voice,omitempty" db:"voice"`
	Model       string    `json:"model,omitempty" db:"model"`
	Characters  int       `json:"characters" db:"characters"`
	AudioName   string    `json:"audio_name" db:"audio_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

const (
	SourceText     = "text"
	SourceDocument = "document"
)

// Job tracks a background synthesis request. CallbackURL, when set,
// receives a signed POST once the job completes or fails.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	Filename    string     `json:"filename,omitempty"`
	Format      string     `json:"format,omitempty"`
	AudioName   string     `json:"audio_name,omitempty"`
	AudioURL    string     `json:"audio_url,omitempty"`
	RecordID    *uuid.UUID `json:"record_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	CallbackURL string     `json:"callback_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)
