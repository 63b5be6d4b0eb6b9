package document

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nikhilbhutani/speakdoc/pkg/textextract"
)

// Detection selects how an upload's format is resolved.
type Detection string

const (
	// DetectSniff trusts the content's magic bytes and falls back to the
	// file extension when the content is not conclusive.
	DetectSniff Detection = "sniff"
	// DetectExtension trusts the file extension only.
	DetectExtension Detection = "extension"
)

// Extraction is the outcome of a successful upload extraction.
type Extraction struct {
	Filename string
	Format   textextract.Format
	MIME     string
	Text     string
}

type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (*Extraction, error)
	SupportedTypes() []string
}

type extractor struct {
	core      *textextract.Extractor
	detection Detection
	logger    *slog.Logger
}

func NewTextExtractor(detection Detection, core *textextract.Extractor) TextExtractor {
	if core == nil {
		core = textextract.New()
	}
	if detection == "" {
		detection = DetectSniff
	}
	return &extractor{
		core:      core,
		detection: detection,
		logger:    slog.Default().With("component", "document.extractor"),
	}
}

func (e *extractor) Extract(ctx context.Context, filename string, data []byte) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, detected, err := Resolve(e.detection, filename, data)
	if err != nil {
		e.logger.Info("unsupported upload", "filename", filename, "detected", detected)
		return nil, err
	}
	e.logger.Debug("resolved upload format", "filename", filename, "detected", detected, "format", format.String())

	text, err := e.core.Extract(data, format)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	e.logger.Info("extracted text from document", "filename", filename, "format", format.String(), "chars", len(text))
	return &Extraction{
		Filename: filename,
		Format:   format,
		MIME:     detected,
		Text:     text,
	}, nil
}

func (e *extractor) SupportedTypes() []string {
	return textextract.SupportedTypes()
}

// Resolve picks the document format of an upload. It returns the detected
// content type (or extension) alongside the format so callers can report it.
func Resolve(detection Detection, filename string, data []byte) (textextract.Format, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if detection == DetectExtension || len(data) == 0 {
		return byExtension(ext)
	}

	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is(textextract.MIMEPDF):
		return textextract.FormatPDF, mtype.String(), nil
	case mtype.Is(textextract.MIMEDOCX):
		return textextract.FormatDOCX, mtype.String(), nil
	case mtype.Is(textextract.MIMERTF):
		return textextract.FormatRTF, mtype.String(), nil
	case isText(mtype):
		return textextract.FormatTXT, mtype.String(), nil
	case mtype.Is("application/zip"), mtype.Is("application/octet-stream"):
		// Inconclusive: DOCX written by some tools sniffs as a bare zip.
		if f, detected, err := byExtension(ext); err == nil {
			return f, detected, nil
		}
	}

	detected := mtype.String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	return textextract.FormatUnknown, detected, &textextract.Error{Kind: textextract.ErrUnsupportedFormat, Value: detected}
}

// isText reports whether m is text/plain or one of its refinements
// (csv, html, json, ...), which are all read as plain text.
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(textextract.MIMEPlainText) {
			return true
		}
	}
	return false
}

func byExtension(ext string) (textextract.Format, string, error) {
	value := strings.TrimPrefix(ext, ".")
	if value == "" {
		return textextract.FormatUnknown, "", &textextract.Error{Kind: textextract.ErrUnsupportedFormat, Value: "(none)"}
	}
	f, err := textextract.ParseFormat(value)
	if err != nil {
		return textextract.FormatUnknown, value, err
	}
	return f, value, nil
}
