package textextract

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error matches exactly one of these with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDecode            = errors.New("decode error")
	ErrParse             = errors.New("parse error")
	ErrEmptyContent      = errors.New("empty content")
	ErrExtractionFailed  = errors.New("extraction failed")
)

// Error is a typed extraction failure.
type Error struct {
	Kind   error
	Format Format
	// Value holds the offending tag for ErrUnsupportedFormat.
	Value string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnsupportedFormat:
		return fmt.Sprintf("unsupported file type: %s. Supported types are: PDF, DOCX, TXT and RTF", e.Value)
	case ErrEmptyContent:
		return "no text content found in the document"
	case ErrDecode:
		return fmt.Sprintf("failed to decode %s file: %v", strings.ToUpper(e.Format.String()), e.Err)
	case ErrParse:
		return fmt.Sprintf("failed to extract text from %s file: %v", strings.ToUpper(e.Format.String()), e.Err)
	default:
		return fmt.Sprintf("failed to process %s file: %v", strings.ToUpper(e.Format.String()), e.Err)
	}
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func unsupported(value string) *Error {
	return &Error{Kind: ErrUnsupportedFormat, Value: value}
}

func decodeError(f Format, err error) *Error {
	return &Error{Kind: ErrDecode, Format: f, Err: err}
}

func parseError(f Format, err error) *Error {
	return &Error{Kind: ErrParse, Format: f, Err: err}
}

// UnsupportedValue returns the offending tag of an UnsupportedFormat error.
func UnsupportedValue(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrUnsupportedFormat {
		return e.Value, true
	}
	return "", false
}
