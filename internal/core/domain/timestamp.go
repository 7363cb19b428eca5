package domain

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a stored or imported timestamp. Values without a zone
// are read as UTC. Anything it cannot parse yields the zero time, which the
// report aggregates treat as missing rather than as an error.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ParseOptionalTimestamp is ParseTimestamp for nullable columns.
func ParseOptionalTimestamp(raw string) *time.Time {
	t := ParseTimestamp(raw)
	if t.IsZero() {
		return nil
	}
	return &t
}

// FormatTimestamp is the inverse used when writing TEXT columns and CSV rows.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
