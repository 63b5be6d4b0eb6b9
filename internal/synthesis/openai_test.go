package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAI_Synthesize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("path = %q, want /audio/speech", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-fake-mp3"))
	}))
	defer srv.Close()

	p, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAI() error: %v", err)
	}

	res, err := p.Synthesize(context.Background(), SynthesisRequest{Input: "hello world", Voice: "nova"})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(res.Audio) != "ID3-fake-mp3" || res.ContentType != ContentTypeMP3 {
		t.Errorf("Synthesize() = %q (%s)", res.Audio, res.ContentType)
	}
	if got["input"] != "hello world" || got["voice"] != "nova" || got["model"] != "tts-1" {
		t.Errorf("request body = %v", got)
	}
}

func TestOpenAI_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI(OpenAIConfig{APIKey: "sk-bad", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAI() error: %v", err)
	}

	_, err = p.Synthesize(context.Background(), SynthesisRequest{Input: "hi"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Synthesize() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Provider != "openai" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("NewOpenAI() error = %v, want ErrNoAPIKey", err)
	}
}
