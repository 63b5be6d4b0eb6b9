package textextract

import (
	"errors"
	"testing"
)

func TestParseRTF(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "plain paragraphs",
			input: `{\rtf1\ansi\deff0 {\fonttbl {\f0 Times New Roman;}}\f0\fs24 Hello world.\par Second line.}`,
			want:  "Hello world.\nSecond line.",
		},
		{
			name:  "formatting words dropped",
			input: `{\rtf1\ansi\pard Hello \b bold\b0  and \i italic\i0.\par}`,
			want:  "Hello bold and italic.\n",
		},
		{
			name:  "hex and unicode escapes",
			input: `{\rtf1\ansi caf\'e9 costs 5\u8364? today}`,
			want:  "café costs 5€ today",
		},
		{
			name:  "declared cyrillic code page",
			input: `{\rtf1\ansi\ansicpg1251 \'cf\'f0\'e8\'e2\'e5\'f2}`,
			want:  "Привет",
		},
		{
			name:  "declared central european code page",
			input: `{\rtf1\ansi\ansicpg1250 \'e8esky}`,
			want:  "česky",
		},
		{
			name:  "declared greek code page",
			input: `{\rtf1\ansi\ansicpg1253 \'e1\'e2}`,
			want:  "αβ",
		},
		{
			name:  "mac charset",
			input: `{\rtf1\mac caf\'8e}`,
			want:  "café",
		},
		{
			name:  "unsupported code page without escapes",
			input: `{\rtf1\ansi\ansicpg932 plain ascii}`,
			want:  "plain ascii",
		},
		{
			name:    "unsupported code page with escapes",
			input:   `{\rtf1\ansi\ansicpg932 \'82\'a0}`,
			wantErr: ErrDecode,
		},
		{
			name:  "ignorable destinations",
			input: `{\rtf1{\*\generator Riched20;}{\colortbl;\red0\green0\blue0;}{\info{\title Secret}}Body\tab text}`,
			want:  "Body\ttext",
		},
		{
			name:  "escaped braces and backslash",
			input: `{\rtf1 a \{ b \} c \\ d}`,
			want:  `a { b } c \ d`,
		},
		{
			name:  "raw newlines ignored",
			input: "{\\rtf1 one\ntwo\r\nthree}",
			want:  "onetwothree",
		},
		{
			name:    "missing header",
			input:   `hello {\b world}`,
			wantErr: ErrParse,
		},
		{
			name:    "unbalanced group",
			input:   `{\rtf1 {\b unterminated`,
			wantErr: ErrParse,
		},
		{
			name:    "stray closing brace",
			input:   `}{\rtf1 x}`,
			wantErr: ErrParse,
		},
		{
			name:    "bad hex escape",
			input:   `{\rtf1 caf\'zz}`,
			wantErr: ErrParse,
		},
		{
			name:    "invalid encoding",
			input:   "{\\rtf1 caf\xe9}",
			wantErr: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRTF([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseRTF() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRTF() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseRTF() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_RTFEmptyBody(t *testing.T) {
	_, err := New().Extract([]byte(`{\rtf1\ansi{\fonttbl\f0 Arial;}\par\par}`), FormatRTF)
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("Extract() error = %v, want ErrEmptyContent", err)
	}
}
