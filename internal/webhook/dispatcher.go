// Package webhook delivers job completion callbacks.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	EventJobCompleted = "job.completed"
	EventJobFailed    = "job.failed"
)

// Dispatcher posts signed JSON events to callback URLs from a background
// loop so job processing never waits on a slow receiver.
type Dispatcher struct {
	secret     string
	httpClient *http.Client
	deliveries chan Delivery
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

type Delivery struct {
	ID      string // sent as X-Webhook-ID
	URL     string
	Event   string
	Payload []byte
}

// NewDispatcher starts the delivery loop. An empty secret sends events
// unsigned.
func NewDispatcher(secret string, client *http.Client) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	d := &Dispatcher{
		secret:     secret,
		httpClient: client,
		deliveries: make(chan Delivery, 1000),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "webhook"),
	}
	go d.processLoop()
	return d
}

// Notify queues payload for delivery to url. Events are dropped when the
// queue is full.
func (d *Dispatcher) Notify(id, url, event string, payload interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		d.logger.Error("marshal webhook payload", "event", event, "error", err)
		return
	}

	select {
	case d.deliveries <- Delivery{ID: id, URL: url, Event: event, Payload: body}:
	default:
		d.logger.Warn("webhook delivery queue full, dropping", "id", id, "event", event)
	}
}

// Close stops accepting events and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.deliveries) })
	<-d.done
}

func (d *Dispatcher) processLoop() {
	defer close(d.done)
	for req := range d.deliveries {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := d.Deliver(ctx, req); err != nil {
			d.logger.Error("webhook delivery failed", "id", req.ID, "event", req.Event, "error", err)
		}
		cancel()
	}
}

// Deliver sends one event synchronously. Non-2xx responses are errors.
func (d *Dispatcher) Deliver(ctx context.Context, req Delivery) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Webhook-Event", req.Event)
	httpReq.Header.Set("X-Webhook-ID", req.ID)
	if d.secret != "" {
		httpReq.Header.Set("X-Webhook-Signature", Sign(req.Payload, d.secret))
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("receiver returned status %d", resp.StatusCode)
	}
	d.logger.Info("webhook delivered", "id", req.ID, "event", req.Event, "status", resp.StatusCode)
	return nil
}

// Sign returns the X-Webhook-Signature value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}

// Verify reports whether signature matches payload under secret.
func Verify(payload []byte, secret, signature string) bool {
	return hmac.Equal([]byte(Sign(payload, secret)), []byte(signature))
}
