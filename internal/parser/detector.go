package parser

import (
	"sort"
	"time"

	"github.com/eif-viewer/backend/internal/models"
)

// Default trigger signal names and window padding.
const (
	DefaultStartSignal = "I_B_TRIGGER_REPORT"
	DefaultCloseSignal = "O_B_TRIGGER_REPORT_CONF"
	DefaultWiggle      = 3
)

// Detector pairs trigger start events with their confirmation per item.
type Detector struct {
	StartSignal string // opens a window on ": ON"
	CloseSignal string // closes a window on ": OFF"
	Wiggle      int    // positions of padding on each side of a window
}

// openInterval is a trigger window awaiting its close event.
type openInterval struct {
	start    time.Time
	position int
}

// NewDetector returns a Detector with the default signals and wiggle.
func NewDetector() *Detector {
	return &Detector{
		StartSignal: DefaultStartSignal,
		CloseSignal: DefaultCloseSignal,
		Wiggle:      DefaultWiggle,
	}
}

// DetectSequences runs the default detector with the given wiggle.
func DetectSequences(records []models.LogRecord, wiggle int) map[string][]models.Sequence {
	d := NewDetector()
	d.Wiggle = wiggle
	return d.Detect(records)
}

// Detect scans records in position order and returns the detected sequences
// keyed by item, each list in detection order.
//
// A second start for an item replaces the open one; a close without an open
// window is ignored; windows still open at the end produce nothing.
func (d *Detector) Detect(records []models.LogRecord) map[string][]models.Sequence {
	result := make(map[string][]models.Sequence)
	if len(records) == 0 {
		return result
	}

	wiggle := max(d.Wiggle, 0)
	lastPosition := records[len(records)-1].Position
	open := make(map[string]openInterval)

	for _, rec := range records {
		ts, ok := ExtractTimestamp(rec.Raw)
		if !ok {
			continue
		}
		item, signal, ok := ExtractItemSignal(rec.Raw)
		if !ok {
			continue
		}
		value := ExtractValue(rec.Raw)
		if value == models.ValueNone {
			continue
		}

		switch {
		case signal == d.StartSignal && value == models.ValueOn:
			open[item] = openInterval{start: ts, position: rec.Position}

		case signal == d.CloseSignal && value == models.ValueOff:
			interval, ok := open[item]
			if !ok {
				continue
			}
			delete(open, item)

			lo := max(0, interval.position-wiggle)
			hi := min(lastPosition, rec.Position+wiggle)
			positions := itemPositions(records, item, lo, hi)
			if len(positions) == 0 {
				continue
			}
			result[item] = append(result[item], models.Sequence{
				Item:      item,
				Start:     interval.start,
				End:       ts,
				Positions: positions,
			})
		}
	}

	return result
}

// itemPositions returns the positions in [lo, hi] whose line names item.
func itemPositions(records []models.LogRecord, item string, lo, hi int) []int {
	first := sort.Search(len(records), func(i int) bool {
		return records[i].Position >= lo
	})

	positions := make([]int, 0, max(hi-lo+1, 0))
	for _, rec := range records[first:] {
		if rec.Position > hi {
			break
		}
		if recItem, _, ok := ExtractItemSignal(rec.Raw); ok && recItem == item {
			positions = append(positions, rec.Position)
		}
	}
	return positions
}

// CountSequences returns the total number of sequences across all items.
func CountSequences(sequences map[string][]models.Sequence) int {
	n := 0
	for _, list := range sequences {
		n += len(list)
	}
	return n
}
