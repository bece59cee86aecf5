package model

import (
	"fmt"
	"strconv"
	"time"
)

// Default display values substituted when a provider omits a field.
const (
	NoSubject     = "No Subject"
	UnknownSender = "Unknown"
)

// Message is the unified representation of a mail item from any provider.
// A summary form (as returned by list endpoints) may lack Body and Size;
// FetchedFullContent distinguishes complete records from placeholders.
type Message struct {
	// ID is unique within the owning address's message set and stable
	// across polls. Providers without stable identifiers get one
	// synthesized from list position by their adapter.
	ID string `json:"id"`

	// Subject is the normalized subject line.
	Subject string `json:"subject"`

	// From is the normalized sender display string.
	From string `json:"from"`

	// Date is the provider-supplied timestamp, kept as a string because
	// the services disagree on format (unix seconds, RFC 3339, or none).
	Date string `json:"date"`

	// Body is the message content, HTML when the provider offers it.
	Body string `json:"body"`

	// Size is the content length in bytes, computed from Body when the
	// provider does not report one.
	Size int64 `json:"size"`

	// FetchedFullContent marks records whose full form has been fetched.
	// Once set, list polls must never regress the record to summary-only.
	FetchedFullContent bool `json:"full_content"`
}

// FormatTimestamp renders a provider date string for display. Numeric
// values are treated as unix seconds; anything else passes through.
func FormatTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	if secs, err := strconv.ParseInt(ts, 10, 64); err == nil {
		return time.Unix(secs, 0).Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Local().Format("2006-01-02 15:04")
	}
	return ts
}

// FormatSize renders a byte count in human-readable form.
func FormatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
