package handlers

import (
	"log/slog"
	"strings"
)

// clientSafePatterns maps provider error patterns to client-safe messages.
var clientSafePatterns = []struct {
	pattern string
	message string
}{
	{"rate limit", "rate limit exceeded"},
	{"quota", "quota exceeded"},
	{"timeout", "request timed out"},
	{"deadline exceeded", "request timed out"},
	{"context canceled", "request cancelled"},
	{"invalid api", "authentication failed with provider"},
	{"unauthorized", "authentication failed with provider"},
	{"forbidden", "access denied by provider"},
	{"voice", "voice not available"},
	{"not found", "resource not found"},
}

// SanitizeForClient converts a provider error to a client-safe message.
// The full error is logged server-side.
func SanitizeForClient(err error) string {
	if err == nil {
		return ""
	}

	errLower := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(errLower, p.pattern) {
			slog.Debug("sanitizing error for client", "original", err.Error(), "sanitized", p.message)
			return p.message
		}
	}

	slog.Error("provider error (sanitized for client)", "error", err)
	return "provider temporarily unavailable"
}
