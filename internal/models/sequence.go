package models

import "time"

// Sequence is one detected trigger window for an item.
type Sequence struct {
	Item      string    `json:"item" msgpack:"item"`
	Start     time.Time `json:"start" msgpack:"start"`
	End       time.Time `json:"end" msgpack:"end"`
	Positions []int     `json:"positions" msgpack:"positions"`
}

// TimeRange represents an inclusive time window.
type TimeRange struct {
	Start time.Time `json:"start" msgpack:"start"`
	End   time.Time `json:"end" msgpack:"end"`
}

// Contains reports whether ts lies within the range, bounds included.
func (r TimeRange) Contains(ts time.Time) bool {
	return !ts.Before(r.Start) && !ts.After(r.End)
}
