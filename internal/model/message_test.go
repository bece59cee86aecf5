package model

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(""); got != "" {
		t.Errorf("empty input = %q", got)
	}

	// Numeric strings are unix seconds.
	want := time.Unix(1704189600, 0).Format("2006-01-02 15:04")
	if got := FormatTimestamp("1704189600"); got != want {
		t.Errorf("unix input = %q, want %q", got, want)
	}

	// RFC 3339 is rendered in local time.
	in, _ := time.Parse(time.RFC3339, "2024-01-02T10:00:00Z")
	want = in.Local().Format("2006-01-02 15:04")
	if got := FormatTimestamp("2024-01-02T10:00:00Z"); got != want {
		t.Errorf("rfc3339 input = %q, want %q", got, want)
	}

	// Anything else passes through untouched.
	if got := FormatTimestamp("yesterday-ish"); got != "yesterday-ish" {
		t.Errorf("opaque input = %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
