package storage

import (
	"strings"
	"testing"
)

func TestTruncatePreview(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		maxLen  int
		want    string
	}{
		{"short payload unchanged", "hello", 500, "hello"},
		{"exact length unchanged", strings.Repeat("a", 10), 10, strings.Repeat("a", 10)},
		{"long payload truncated", strings.Repeat("a", 600), 500, strings.Repeat("a", 500)},
		{"multibyte runes not split", strings.Repeat("é", 10), 5, strings.Repeat("é", 5)},
		{"empty payload", "", 500, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePreview(tt.payload, tt.maxLen)
			if got != tt.want {
				t.Errorf("TruncatePreview(%q, %d) = %q, want %q", tt.payload, tt.maxLen, got, tt.want)
			}
		})
	}
}
