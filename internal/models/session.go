package models

// SessionStatus represents the status of a view session.
type SessionStatus string

const (
	SessionStatusLoading  SessionStatus = "loading"
	SessionStatusComplete SessionStatus = "complete"
	SessionStatusError    SessionStatus = "error"
)

// ViewSession describes a loaded log file and the catalogs derived from it.
type ViewSession struct {
	ID            string        `json:"id"`
	FileID        string        `json:"fileId,omitempty"`
	FileName      string        `json:"fileName"`
	Status        SessionStatus `json:"status"`
	RecordCount   int           `json:"recordCount"`
	Subsystems    []string      `json:"subsystems"`
	Items         []string      `json:"items"`
	TimeRange     *TimeRange    `json:"timeRange,omitempty"`
	SequenceCount int           `json:"sequenceCount"`
	Wiggle        int           `json:"wiggle"`
	LoadTimeMs    int64         `json:"loadTimeMs,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// NewViewSession creates a ViewSession in loading status.
func NewViewSession(id, fileID, fileName string) *ViewSession {
	return &ViewSession{
		ID:         id,
		FileID:     fileID,
		FileName:   fileName,
		Status:     SessionStatusLoading,
		Subsystems: make([]string, 0),
		Items:      make([]string, 0),
	}
}
