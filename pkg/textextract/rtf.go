package textextract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	errNoRTFHeader   = errors.New(`missing {\rtf header`)
	errUnbalancedRTF = errors.New("unbalanced braces")
	errTruncatedRTF  = errors.New("unexpected end of input after backslash")
	errBadHexEscape  = errors.New(`malformed \'hh escape`)

	errUnsupportedCodePage = errors.New("unsupported code page")
)

// Single-byte code pages a document may declare with \ansicpgN. Escapes
// under any other code page are rejected rather than guessed.
var rtfCodePages = map[int]*charmap.Charmap{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	855:   charmap.CodePage855,
	858:   charmap.CodePage858,
	860:   charmap.CodePage860,
	862:   charmap.CodePage862,
	863:   charmap.CodePage863,
	865:   charmap.CodePage865,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
	20866: charmap.KOI8R,
	21866: charmap.KOI8U,
	28591: charmap.ISO8859_1,
	28592: charmap.ISO8859_2,
	28595: charmap.ISO8859_5,
	28597: charmap.ISO8859_7,
	28605: charmap.ISO8859_15,
}

// Groups whose content is metadata, not document text.
var rtfDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "object": true, "header": true, "headerl": true,
	"headerr": true, "headerf": true, "footer": true, "footerl": true,
	"footerr": true, "footerf": true, "footnote": true, "fldinst": true,
	"listtable": true, "listoverridetable": true, "rsidtbl": true,
	"generator": true, "themedata": true, "colorschememapping": true,
	"latentstyles": true, "datastore": true, "xmlnstbl": true,
	"filetbl": true, "revtbl": true, "pgdsctbl": true, "mmathPr": true,
}

var rtfSymbols = map[string]string{
	"par": "\n", "line": "\n", "sect": "\n", "page": "\n", "row": "\n",
	"tab": "\t", "cell": "\t",
	"emdash": "—", "endash": "–", "bullet": "•",
	"lquote": "‘", "rquote": "’",
	"ldblquote": "“", "rdblquote": "”",
	"emspace": " ", "enspace": " ", "qmspace": " ",
}

type rtfGroup struct {
	skip bool
	uc   int // fallback characters to drop after \uN
}

type rtfParser struct {
	src     string
	pos     int
	out     strings.Builder
	stack   []rtfGroup
	cur     rtfGroup
	pending int // fallback characters still to drop

	codePage   *charmap.Charmap // decodes \'hh; nil when the declared page is unsupported
	codePageID int
}

// parseRTF strips control words and metadata groups, keeping the body text.
func parseRTF(data []byte) (string, error) {
	if off := invalidUTF8Offset(data); off >= 0 {
		return "", decodeError(FormatRTF, fmt.Errorf("invalid byte at offset %d", off))
	}

	src := strings.TrimLeft(string(data), " \t\r\n\ufeff")
	if !strings.HasPrefix(src, `{\rtf`) {
		return "", parseError(FormatRTF, errNoRTFHeader)
	}

	p := &rtfParser{src: src, cur: rtfGroup{uc: 1}, codePage: charmap.Windows1252, codePageID: 1252}
	if err := p.run(); err != nil {
		if errors.Is(err, errUnsupportedCodePage) {
			return "", decodeError(FormatRTF, err)
		}
		return "", parseError(FormatRTF, err)
	}
	return p.out.String(), nil
}

func (p *rtfParser) run() error {
	started := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '{':
			p.stack = append(p.stack, p.cur)
			p.pos++
			started = true
		case '}':
			if len(p.stack) == 0 {
				return errUnbalancedRTF
			}
			p.cur = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pending = 0
			p.pos++
			if len(p.stack) == 0 && started {
				return nil
			}
		case '\\':
			if err := p.control(); err != nil {
				return err
			}
		case '\r', '\n':
			p.pos++
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			p.pos += size
			p.emit(string(r))
		}
	}
	if len(p.stack) != 0 {
		return errUnbalancedRTF
	}
	return nil
}

func (p *rtfParser) control() error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return errTruncatedRTF
	}

	c := p.src[p.pos]
	if !isASCIILetter(c) {
		p.pos++
		switch c {
		case '\\', '{', '}':
			p.emit(string(c))
		case '~':
			p.emit(" ")
		case '_':
			p.emit("-")
		case '*':
			p.cur.skip = true
		case '\'':
			return p.hexEscape()
		case '\n', '\r':
			p.emit("\n")
		}
		return nil
	}

	start := p.pos
	for p.pos < len(p.src) && isASCIILetter(p.src[p.pos]) {
		p.pos++
	}
	word := p.src[start:p.pos]

	paramStart := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	param, hasParam := 0, false
	if p.pos > paramStart {
		n, err := strconv.Atoi(p.src[paramStart:p.pos])
		if err == nil {
			param, hasParam = n, true
		}
	}
	if p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}

	switch {
	case rtfDestinations[word]:
		p.cur.skip = true
	case word == "ansicpg" && hasParam:
		p.setCodePage(param)
	case word == "mac":
		p.setCodePage(10000)
	case word == "pc":
		p.setCodePage(437)
	case word == "pca":
		p.setCodePage(850)
	case word == "uc" && hasParam:
		p.cur.uc = param
	case word == "u" && hasParam:
		if param < 0 {
			param += 65536
		}
		p.emit(string(rune(param)))
		p.pending = p.cur.uc
	default:
		if s, ok := rtfSymbols[word]; ok {
			p.emit(s)
		}
	}
	return nil
}

func (p *rtfParser) hexEscape() error {
	if p.pos+2 > len(p.src) {
		return errBadHexEscape
	}
	b, err := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 8)
	if err != nil {
		return errBadHexEscape
	}
	p.pos += 2
	if p.codePage == nil {
		if p.cur.skip || p.pending > 0 {
			p.emit("")
			return nil
		}
		return fmt.Errorf("%w %d", errUnsupportedCodePage, p.codePageID)
	}
	p.emit(string(p.codePage.DecodeByte(byte(b))))
	return nil
}

func (p *rtfParser) setCodePage(id int) {
	p.codePageID = id
	p.codePage = rtfCodePages[id]
}

// emit writes s unless the group is skipped or \uN fallback is being dropped.
func (p *rtfParser) emit(s string) {
	if p.pending > 0 {
		p.pending--
		return
	}
	if p.cur.skip {
		return
	}
	p.out.WriteString(s)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
