// Package textextract converts PDF, DOCX, TXT and RTF documents to plain text.
//
// An Extractor dispatches on a resolved Format and never sniffs content;
// resolving the format is the caller's job. Extraction is pure and safe for
// concurrent use.
package textextract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parser turns a document of one format into plain text.
type Parser interface {
	Parse(data []byte) (string, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(data []byte) (string, error)

func (f ParserFunc) Parse(data []byte) (string, error) { return f(data) }

// Extractor holds one parser per supported format.
type Extractor struct {
	txt  Parser
	pdf  Parser
	docx Parser
	rtf  Parser
}

// Option overrides a parser on an Extractor.
type Option func(*Extractor)

// WithParser replaces the parser used for f. Unknown formats are ignored.
func WithParser(f Format, p Parser) Option {
	return func(e *Extractor) {
		switch f {
		case FormatTXT:
			e.txt = p
		case FormatPDF:
			e.pdf = p
		case FormatDOCX:
			e.docx = p
		case FormatRTF:
			e.rtf = p
		}
	}
}

// New returns an Extractor backed by the built-in parsers.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		txt:  ParserFunc(parseTXT),
		pdf:  ParserFunc(parsePDF),
		docx: ParserFunc(parseDOCX),
		rtf:  ParserFunc(parseRTF),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract resolves fileType (extension, file name or MIME type) and extracts
// text with the built-in parsers.
func Extract(data []byte, fileType string) (string, error) {
	f, err := ParseFormat(fileType)
	if err != nil {
		return "", err
	}
	return defaultExtractor.Extract(data, f)
}

// Extract returns the text of data interpreted as format f. The returned text
// is never blank: a document without text yields ErrEmptyContent.
func (e *Extractor) Extract(data []byte, f Format) (text string, err error) {
	var p Parser
	switch f {
	case FormatTXT:
		p = e.txt
	case FormatPDF:
		p = e.pdf
	case FormatDOCX:
		p = e.docx
	case FormatRTF:
		p = e.rtf
	default:
		return "", unsupported(strconv.Itoa(int(f)))
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &Error{Kind: ErrExtractionFailed, Format: f, Err: fmt.Errorf("%v", r)}
		}
	}()

	text, err = p.Parse(data)
	if err != nil {
		return "", classify(f, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: ErrEmptyContent, Format: f}
	}
	return text, nil
}

func classify(f Format, err error) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Format == FormatUnknown && e.Kind != ErrUnsupportedFormat {
			e.Format = f
		}
		return e
	}
	return &Error{Kind: ErrExtractionFailed, Format: f, Err: err}
}
