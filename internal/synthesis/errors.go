package synthesis

import (
	"errors"
	"fmt"
)

var (
	ErrNoAPIKey     = errors.New("synthesis: API key required")
	ErrNoModel      = errors.New("synthesis: voice model required")
	ErrEmptyInput   = errors.New("no text provided")
	ErrInputTooLong = errors.New("input text too long")
)

// APIError is an error response from a remote TTS API.
type APIError struct {
	StatusCode int
	Message    string
	Provider   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may succeed if sent again.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsClientInput reports whether the remote API rejected the request itself
// (bad voice, bad model), as opposed to failing to serve it.
func (e *APIError) IsClientInput() bool {
	return e.StatusCode == 400 || e.StatusCode == 404 || e.StatusCode == 422
}
