package parser

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eif-viewer/backend/internal/models"
)

// FilterParams selects the records shown in the log list.
type FilterParams struct {
	Keyword    string              // case-insensitive substring; empty matches all
	Range      *models.TimeRange   // inclusive; nil means unbounded
	Subsystems map[string]struct{} // active subsystems; empty selects nothing
}

// NewSubsystemSet builds an active-subsystem set from names.
func NewSubsystemSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// maxTime bounds an open-ended range.
var maxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// ParseRange builds an inclusive range from optional start and end bounds
// given as ParseTime accepts them. Both empty means unbounded (nil).
func ParseRange(start, end string) (*models.TimeRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	tr := models.TimeRange{End: maxTime}
	var err error
	if start != "" {
		if tr.Start, err = ParseTime(start); err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
	}
	if end != "" {
		if tr.End, err = ParseTime(end); err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
	}
	if tr.Start.After(tr.End) {
		return nil, fmt.Errorf("start %s is after end %s",
			tr.Start.Format(TimestampLayout), tr.End.Format(TimestampLayout))
	}
	return &tr, nil
}

// Filter returns the records matching every predicate in params, in their
// original order. Records without a timestamp are never excluded by Range.
func Filter(records []models.LogRecord, params FilterParams) []models.LogRecord {
	result := make([]models.LogRecord, 0)
	if len(params.Subsystems) == 0 {
		return result
	}

	keyword := strings.ToLower(params.Keyword)
	for _, rec := range records {
		if keyword != "" && !strings.Contains(strings.ToLower(rec.Raw), keyword) {
			continue
		}
		if params.Range != nil {
			if ts, ok := ExtractTimestamp(rec.Raw); ok && !params.Range.Contains(ts) {
				continue
			}
		}
		sub, ok := ExtractSubsystem(rec.Raw)
		if !ok {
			continue
		}
		if _, active := params.Subsystems[sub]; !active {
			continue
		}
		result = append(result, rec)
	}
	return result
}

// Subsystems returns the sorted distinct subsystems found in records.
func Subsystems(records []models.LogRecord) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		if sub, ok := ExtractSubsystem(rec.Raw); ok {
			seen[sub] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Items returns the sorted distinct item identifiers found in records.
func Items(records []models.LogRecord) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		if item, _, ok := ExtractItemSignal(rec.Raw); ok {
			seen[item] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// RecordTimeRange returns the earliest and latest timestamps in records,
// or nil when no record carries one.
func RecordTimeRange(records []models.LogRecord) *models.TimeRange {
	var tr *models.TimeRange
	for _, rec := range records {
		ts, ok := ExtractTimestamp(rec.Raw)
		if !ok {
			continue
		}
		if tr == nil {
			tr = &models.TimeRange{Start: ts, End: ts}
			continue
		}
		if ts.Before(tr.Start) {
			tr.Start = ts
		}
		if ts.After(tr.End) {
			tr.End = ts
		}
	}
	return tr
}

// Paginate returns the 1-based page of records and the total count.
func Paginate(records []models.LogRecord, page, pageSize int) ([]models.LogRecord, int) {
	total := len(records)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []models.LogRecord{}, total
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []models.LogRecord{}, total
	}
	end := min(start+pageSize, total)
	return records[start:end], total
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
