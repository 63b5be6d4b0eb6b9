package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

var errNoDocumentXML = errors.New("word/document.xml not found")

// parseDOCX returns the text of every paragraph in document order, joined by
// newlines.
func parseDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", parseError(FormatDOCX, fmt.Errorf("open DOCX: %w", err))
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", parseError(FormatDOCX, fmt.Errorf("open document.xml: %w", err))
		}
		defer rc.Close()

		paragraphs, err := readParagraphs(rc)
		if err != nil {
			return "", parseError(FormatDOCX, fmt.Errorf("read document.xml: %w", err))
		}
		return strings.Join(paragraphs, "\n"), nil
	}

	return "", parseError(FormatDOCX, errNoDocumentXML)
}

func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		depth      int // nesting of w:p
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if depth > 0 {
					depth--
					if depth == 0 {
						paragraphs = append(paragraphs, current.String())
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && depth > 0 {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
