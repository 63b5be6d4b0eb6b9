package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speakdoc/internal/config"
)

type Client struct {
	client *asynq.Client
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueSpeechSynthesize(ctx context.Context, payload SpeechSynthesizePayload) error {
	task, err := NewSpeechSynthesizeTask(payload)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeSpeechSynthesize, err)
	}
	return nil
}
