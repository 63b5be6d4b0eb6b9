package textextract

import (
	"fmt"
	"unicode/utf8"
)

func parseTXT(data []byte) (string, error) {
	if off := invalidUTF8Offset(data); off >= 0 {
		return "", decodeError(FormatTXT, fmt.Errorf("invalid UTF-8 sequence at byte %d", off))
	}
	return string(data), nil
}

// invalidUTF8Offset returns the offset of the first invalid byte, or -1.
func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
