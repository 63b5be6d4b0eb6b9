package speech

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/speakdoc/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Recorder persists generated clips.
type Recorder interface {
	Record(ctx context.Context, rec *models.SpeechRecord) error
	List(ctx context.Context, limit, offset int) ([]models.SpeechRecord, error)
}

// History stores speech records in Postgres. A History without a pool
// records nothing and lists nothing, which lets the service run without
// a database.
type History struct {
	pool *pgxpool.Pool
}

func NewHistory(pool *pgxpool.Pool) *History {
	return &History{pool: pool}
}

func (h *History) Enabled() bool { return h != nil && h.pool != nil }

func (h *History) Record(ctx context.Context, rec *models.SpeechRecord) error {
	if !h.Enabled() {
		return nil
	}
	err := h.pool.QueryRow(ctx,
		`INSERT INTO speech_records (id, source, filename, format, backend, voice, model, characters, audio_name, content_type, size_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		rec.ID, rec.Source, rec.Filename, rec.Format, rec.Backend, rec.Voice, rec.Model,
		rec.Characters, rec.AudioName, rec.ContentType, rec.SizeBytes,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert speech record: %w", err)
	}
	return nil
}

func (h *History) List(ctx context.Context, limit, offset int) ([]models.SpeechRecord, error) {
	if !h.Enabled() {
		return []models.SpeechRecord{}, nil
	}
	limit, offset = clampPage(limit, offset)

	rows, err := h.pool.Query(ctx,
		`SELECT id, source, filename, format, backend, voice, model, characters, audio_name, content_type, size_bytes, created_at
		 FROM speech_records ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list speech records: %w", err)
	}
	defer rows.Close()

	records := []models.SpeechRecord{}
	for rows.Next() {
		var r models.SpeechRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Filename, &r.Format, &r.Backend, &r.Voice, &r.Model,
			&r.Characters, &r.AudioName, &r.ContentType, &r.SizeBytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan speech record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
