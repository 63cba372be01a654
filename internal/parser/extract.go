// Package parser loads EIF trace logs and classifies their lines.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/eif-viewer/backend/internal/models"
)

// TimestampLayout is the fixed-width timestamp prefix of an EIF log line.
const TimestampLayout = "2006-01-02 15:04:05"

const timestampWidth = len(TimestampLayout)

// Extract derives every optional field from a raw log line.
func Extract(raw string) models.ExtractedFields {
	var fields models.ExtractedFields

	if ts, ok := ExtractTimestamp(raw); ok {
		fields.Timestamp = &ts
	}
	if sub, ok := ExtractSubsystem(raw); ok {
		fields.Subsystem = &sub
	}
	if item, signal, ok := ExtractItemSignal(raw); ok {
		fields.Item = &item
		fields.Signal = &signal
	}
	fields.Value = ExtractValue(raw)

	return fields
}

// ExtractTimestamp parses the first 19 bytes of raw as "YYYY-MM-DD HH:MM:SS".
// The result is in UTC.
func ExtractTimestamp(raw string) (time.Time, bool) {
	if len(raw) < timestampWidth {
		return time.Time{}, false
	}
	ts := raw[:timestampWidth]

	if ts[4] != '-' || ts[7] != '-' || ts[10] != ' ' || ts[13] != ':' || ts[16] != ':' {
		return time.Time{}, false
	}

	// Parse components directly (avoid time.Parse allocations)
	year := parseInt4(ts[0:4])
	month := parseInt2(ts[5:7])
	day := parseInt2(ts[8:10])
	hour := parseInt2(ts[11:13])
	minute := parseInt2(ts[14:16])
	sec := parseInt2(ts[17:19])

	if year < 1 || month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec > 59 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC), true
}

// ParseTime parses a user-supplied time bound in the log's own timestamp
// format or RFC3339. The result is in UTC.
func ParseTime(s string) (time.Time, error) {
	if len(s) == timestampWidth {
		if ts, ok := ExtractTimestamp(s); ok {
			return ts, nil
		}
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected %q or RFC3339", s, TimestampLayout)
	}
	return ts.UTC(), nil
}

// ExtractSubsystem returns the last dot-segment of the first bracketed
// dotted path, e.g. "[EIF.Conveyor.A]" -> "A".
func ExtractSubsystem(raw string) (string, bool) {
	fragments := strings.Split(raw, "[")
	// fragments[0] precedes any bracket
	for _, frag := range fragments[1:] {
		end := strings.IndexByte(frag, ']')
		if end < 0 || !strings.Contains(frag, ".") {
			continue
		}
		inner := frag[:end]
		if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
			return inner[dot+1:], true
		}
	}
	return "", false
}

// ExtractItemSignal splits the last bracketed segment "item:signal".
// Either part may be empty, e.g. "[:SIG]".
func ExtractItemSignal(raw string) (item, signal string, ok bool) {
	open := strings.LastIndexByte(raw, '[')
	if open < 0 {
		return "", "", false
	}

	inner := raw[open+1:]
	if end := strings.IndexByte(inner, ']'); end >= 0 {
		inner = inner[:end]
	}

	parts := strings.Split(inner, ":")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ExtractValue reports the ON/OFF tag of a line. ": ON" wins over ": OFF".
func ExtractValue(raw string) models.ValueTag {
	switch {
	case strings.Contains(raw, ": ON"):
		return models.ValueOn
	case strings.Contains(raw, ": OFF"):
		return models.ValueOff
	default:
		return models.ValueNone
	}
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// parseInt2 parses a 2-digit decimal string. Returns -1 on error.
func parseInt2(s string) int {
	if len(s) != 2 {
		return -1
	}
	d1, d2 := s[0]-'0', s[1]-'0'
	if d1 > 9 || d2 > 9 {
		return -1
	}
	return int(d1)*10 + int(d2)
}

// parseInt4 parses a 4-digit decimal string. Returns -1 on error.
func parseInt4(s string) int {
	if len(s) != 4 {
		return -1
	}
	d1, d2, d3, d4 := s[0]-'0', s[1]-'0', s[2]-'0', s[3]-'0'
	if d1 > 9 || d2 > 9 || d3 > 9 || d4 > 9 {
		return -1
	}
	return int(d1)*1000 + int(d2)*100 + int(d3)*10 + int(d4)
}

// Entries pairs each record with its extracted fields.
func Entries(records []models.LogRecord) []models.Entry {
	entries := make([]models.Entry, len(records))
	for i, rec := range records {
		entries[i] = models.Entry{LogRecord: rec, ExtractedFields: Extract(rec.Raw)}
	}
	return entries
}
