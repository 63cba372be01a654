// Package models contains domain types for the EIF Log Viewer.
package models

import "time"

// ValueTag is the ON/OFF marker found in a log line, or empty when absent.
type ValueTag string

const (
	ValueNone ValueTag = ""
	ValueOn   ValueTag = "ON"
	ValueOff  ValueTag = "OFF"
)

// LogRecord is a single retained line of a loaded log file.
type LogRecord struct {
	Raw      string `json:"raw" msgpack:"raw"`
	Position int    `json:"position" msgpack:"position"` // 0-based among retained lines
	Line     int    `json:"line" msgpack:"line"`         // 1-based physical line in the file
}

// ExtractedFields holds the optional fields derived from a record's raw text.
// A nil pointer (or empty Value) means the field was not present.
type ExtractedFields struct {
	Timestamp *time.Time `json:"timestamp,omitempty" msgpack:"timestamp,omitempty"`
	Subsystem *string    `json:"subsystem,omitempty" msgpack:"subsystem,omitempty"`
	Item      *string    `json:"item,omitempty" msgpack:"item,omitempty"`
	Signal    *string    `json:"signal,omitempty" msgpack:"signal,omitempty"`
	Value     ValueTag   `json:"value,omitempty" msgpack:"value,omitempty"`
}

// Entry is a record served together with its extracted fields.
type Entry struct {
	LogRecord       `msgpack:",inline"`
	ExtractedFields `msgpack:",inline"`
}
