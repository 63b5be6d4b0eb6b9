package textextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// parsePDF appends each page's text followed by a newline, in page order.
func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", parseError(FormatPDF, fmt.Errorf("open PDF: %w", err))
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			buf.WriteString("\n")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", parseError(FormatPDF, fmt.Errorf("page %d: %w", i, err))
		}
		// GetPlainText brackets page text with its own line breaks.
		buf.WriteString(strings.Trim(text, "\n"))
		buf.WriteString("\n")
	}

	return buf.String(), nil
}
