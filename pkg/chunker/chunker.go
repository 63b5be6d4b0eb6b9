// Package chunker splits long text into pieces small enough for a single
// speech synthesis call, preferring paragraph and sentence boundaries so
// the joined audio does not cut words in half.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// StrategyRecursive splits on paragraphs, then lines, sentences and words.
	StrategyRecursive = "recursive"
	// StrategySentence packs whole sentences greedily.
	StrategySentence = "sentence"
)

type Options struct {
	MaxChars int    // hard limit per chunk, in runes
	Strategy string // StrategyRecursive (default) or StrategySentence
}

type TextChunk struct {
	Content string
	Index   int
}

// Split breaks text into chunks of at most maxChars runes using the
// recursive strategy. Blank chunks are dropped.
func Split(text string, maxChars int) []string {
	chunks := Chunk(text, Options{MaxChars: maxChars})
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

func Chunk(text string, opts Options) []TextChunk {
	if opts.MaxChars <= 0 {
		opts.MaxChars = 4096
	}

	var parts []string
	switch opts.Strategy {
	case StrategySentence:
		parts = packSentences(text, opts.MaxChars)
	default:
		parts = splitRecursive(text, []string{"\n\n", "\n", ". ", " "}, opts.MaxChars)
	}

	var chunks []TextChunk
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, TextChunk{Content: p, Index: len(chunks)})
	}
	return chunks
}

func splitRecursive(text string, separators []string, maxChars int) []string {
	if utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	if len(separators) == 0 {
		return splitRunes(text, maxChars)
	}

	// Separators stay attached to the text before them so sentence
	// punctuation survives the split.
	sep := separators[0]
	var result []string
	var current strings.Builder
	n := 0

	for _, part := range strings.SplitAfter(text, sep) {
		pn := utf8.RuneCountInString(part)
		if n > 0 && n+pn > maxChars {
			result = append(result, splitRecursive(current.String(), separators[1:], maxChars)...)
			current.Reset()
			n = 0
		}
		current.WriteString(part)
		n += pn
	}

	if current.Len() > 0 {
		result = append(result, splitRecursive(current.String(), separators[1:], maxChars)...)
	}
	return result
}

func splitRunes(text string, maxChars int) []string {
	var result []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		result = append(result, string(runes[i:end]))
	}
	return result
}

// packSentences greedily fills chunks with whole sentences. A sentence
// longer than maxChars is split on its own.
func packSentences(text string, maxChars int) []string {
	var result []string
	var current strings.Builder
	n := 0

	flush := func() {
		if current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
			n = 0
		}
	}

	for _, s := range splitSentences(text) {
		sn := utf8.RuneCountInString(s)
		if sn > maxChars {
			flush()
			result = append(result, splitRecursive(s, []string{" "}, maxChars)...)
			continue
		}
		if n+sn > maxChars {
			flush()
		}
		current.WriteString(s)
		n += sn
	}
	flush()
	return result
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}
