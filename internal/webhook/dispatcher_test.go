package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type received struct {
	headers http.Header
	body    []byte
}

func receiver(t *testing.T, status int) (*httptest.Server, func() []received) {
	t.Helper()
	var mu sync.Mutex
	var got []received
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, received{headers: r.Header.Clone(), body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), got...)
	}
}

func TestDispatcher_NotifySigned(t *testing.T) {
	srv, got := receiver(t, http.StatusNoContent)
	d := NewDispatcher("s3cret", srv.Client())

	d.Notify("job-1", srv.URL, EventJobCompleted, map[string]string{"status": "completed"})
	d.Close()

	reqs := got()
	if len(reqs) != 1 {
		t.Fatalf("received %d deliveries, want 1", len(reqs))
	}
	r := reqs[0]
	if r.headers.Get("X-Webhook-Event") != EventJobCompleted || r.headers.Get("X-Webhook-ID") != "job-1" {
		t.Errorf("headers = %v", r.headers)
	}
	if !Verify(r.body, "s3cret", r.headers.Get("X-Webhook-Signature")) {
		t.Errorf("signature %q does not verify", r.headers.Get("X-Webhook-Signature"))
	}

	var body struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	if err := json.Unmarshal(r.body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Event != EventJobCompleted || body.Data["status"] != "completed" {
		t.Errorf("body = %+v", body)
	}
}

func TestDispatcher_UnsignedWithoutSecret(t *testing.T) {
	srv, got := receiver(t, http.StatusOK)
	d := NewDispatcher("", srv.Client())

	d.Notify("job-2", srv.URL, EventJobFailed, map[string]string{"error": "boom"})
	d.Close()

	reqs := got()
	if len(reqs) != 1 {
		t.Fatalf("received %d deliveries, want 1", len(reqs))
	}
	if sig := reqs[0].headers.Get("X-Webhook-Signature"); sig != "" {
		t.Errorf("X-Webhook-Signature = %q, want none", sig)
	}
}

func TestDispatcher_DeliverReportsStatus(t *testing.T) {
	srv, _ := receiver(t, http.StatusBadGateway)
	d := NewDispatcher("", srv.Client())
	defer d.Close()

	err := d.Deliver(context.Background(), Delivery{ID: "x", URL: srv.URL, Event: EventJobCompleted, Payload: []byte(`{}`)})
	if err == nil {
		t.Fatal("Deliver() error = nil, want status error")
	}
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"event":"job.completed"}`)
	sig := Sign(payload, "k")
	if !Verify(payload, "k", sig) {
		t.Error("Verify() rejected a valid signature")
	}
	if Verify(payload, "other", sig) {
		t.Error("Verify() accepted a signature made with another secret")
	}
	if Verify([]byte(`{}`), "k", sig) {
		t.Error("Verify() accepted a tampered payload")
	}
}
