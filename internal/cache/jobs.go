package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/speakdoc/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

const jobKeyPrefix = "speech:job:"

// JobStore keeps background job state in Redis with a fixed TTL.
type JobStore struct {
	cache *Cache
	ttl   time.Duration
}

func NewJobStore(c *Cache, ttl time.Duration) *JobStore {
	return &JobStore{cache: c, ttl: ttl}
}

func (s *JobStore) Create(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	if err := s.cache.Set(ctx, jobKeyPrefix+job.ID.String(), job, s.ttl); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := s.cache.Get(ctx, jobKeyPrefix+id.String(), &job)
	if errors.Is(err, ErrMiss) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	return &job, nil
}

// Update applies fn to the stored job and saves it back.
func (s *JobStore) Update(ctx context.Context, id uuid.UUID, fn func(*models.Job)) (*models.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
	if err := s.cache.Set(ctx, jobKeyPrefix+id.String(), job, s.ttl); err != nil {
		return nil, fmt.Errorf("save job %s: %w", id, err)
	}
	return job, nil
}
