package textextract

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported document type.
type Format int

const (
	FormatUnknown Format = iota
	FormatTXT
	FormatPDF
	FormatDOCX
	FormatRTF
)

const (
	MIMEPlainText = "text/plain"
	MIMEPDF       = "application/pdf"
	MIMEDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMERTF       = "text/rtf"
)

func (f Format) String() string {
	switch f {
	case FormatTXT:
		return "txt"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatRTF:
		return "rtf"
	default:
		return "unknown"
	}
}

// Ext returns the canonical file extension, including the leading dot.
func (f Format) Ext() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + f.String()
}

// MIME returns the canonical content type for the format.
func (f Format) MIME() string {
	switch f {
	case FormatTXT:
		return MIMEPlainText
	case FormatPDF:
		return MIMEPDF
	case FormatDOCX:
		return MIMEDOCX
	case FormatRTF:
		return MIMERTF
	default:
		return "application/octet-stream"
	}
}

// ParseFormat maps an extension ("pdf", ".pdf"), a file name or a MIME type
// to a Format. Unknown values yield an UnsupportedFormat error carrying the
// original value.
func ParseFormat(value string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}

	switch v {
	case "txt", ".txt", MIMEPlainText:
		return FormatTXT, nil
	case "pdf", ".pdf", MIMEPDF, "application/x-pdf":
		return FormatPDF, nil
	case "docx", ".docx", MIMEDOCX:
		return FormatDOCX, nil
	case "rtf", ".rtf", MIMERTF, "application/rtf":
		return FormatRTF, nil
	}

	if ext := filepath.Ext(v); ext != "" && ext != v {
		if f, err := ParseFormat(ext); err == nil {
			return f, nil
		}
	}

	return FormatUnknown, unsupported(value)
}

// SupportedTypes lists the accepted file extensions.
func SupportedTypes() []string {
	return []string{".pdf", ".docx", ".txt", ".rtf"}
}
