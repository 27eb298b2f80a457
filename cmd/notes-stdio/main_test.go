package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short unchanged", "a note", 120, "a note"},
		{"newlines flattened", "line one\nline two", 120, "line one line two"},
		{"ascii truncated", strings.Repeat("x", 130), 120, strings.Repeat("x", 120)},
		{"exact length kept", strings.Repeat("x", 120), 120, strings.Repeat("x", 120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previewText(tt.in, tt.max); got != tt.want {
				t.Errorf("previewText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreviewText_RuneBoundary(t *testing.T) {
	// 130 three-byte runes: a byte-indexed cut at 120 would land inside
	// a character.
	in := strings.Repeat("日", 130)

	got := previewText(in, 120)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 120 {
		t.Errorf("rune count = %d, want 120", n)
	}
}
