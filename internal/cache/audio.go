package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/speakdoc/internal/synthesis"
)

// AudioCache keeps synthesized clips in Redis. Failures are logged and
// treated as misses so synthesis never depends on Redis being up.
type AudioCache struct {
	cache  *Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewAudioCache(c *Cache, ttl time.Duration) *AudioCache {
	return &AudioCache{
		cache:  c,
		ttl:    ttl,
		logger: slog.Default().With("component", "cache.audio"),
	}
}

func (a *AudioCache) Load(ctx context.Context, key string) (*synthesis.SynthesisResult, bool) {
	var res synthesis.SynthesisResult
	if err := a.cache.Get(ctx, key, &res); err != nil {
		if !errors.Is(err, ErrMiss) {
			a.logger.Warn("audio cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(res.Audio) == 0 {
		return nil, false
	}
	return &res, true
}

func (a *AudioCache) Store(ctx context.Context, key string, res *synthesis.SynthesisResult) {
	if err := a.cache.Set(ctx, key, res, a.ttl); err != nil {
		a.logger.Warn("audio cache write failed", "key", key, "error", err)
	}
}
