package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"github.com/google/uuid"
)

// MaxSessions limits loaded files kept in memory at once
const MaxSessions = 10

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

// Manager holds loaded log files and their detected sequences.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	detector parser.Detector
}

// SessionState holds the session metadata and the loaded records.
type SessionState struct {
	Session      *models.ViewSession
	Records      []models.LogRecord
	Sequences    map[string][]models.Sequence
	CreatedAt    time.Time
	LastAccessed time.Time // Last time the session was accessed (for keep-alive)
}

// LoadRequest describes a file to load into a new session.
type LoadRequest struct {
	FileID   string
	FileName string
	Path     string
	Wiggle   *int // overrides the detector's wiggle when set
}

// NewManager creates a session manager using the default detector.
func NewManager() *Manager {
	return NewManagerWithDetector(parser.NewDetector())
}

// NewManagerWithDetector creates a session manager with a specific detector.
func NewManagerWithDetector(d *parser.Detector) *Manager {
	return &Manager{
		sessions: make(map[string]*SessionState),
		detector: *d,
	}
}

// Detector returns a copy of the manager's detector settings.
func (m *Manager) Detector() parser.Detector {
	return m.detector
}

// Load reads the file, builds the catalogs and runs sequence detection.
// A failed load is kept as an error session so its status can be shown;
// the returned error wraps parser.ErrFileNotFound or *parser.ReadError.
func (m *Manager) Load(req LoadRequest) (*models.ViewSession, error) {
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()
	sess := models.NewViewSession(sessionID, req.FileID, req.FileName)

	detector := m.detector
	if req.Wiggle != nil {
		detector.Wiggle = max(*req.Wiggle, 0)
	}
	sess.Wiggle = detector.Wiggle

	start := time.Now()
	fmt.Printf("[Load %s] Loading %s\n", sessionID[:8], req.Path)

	records, err := parser.LoadLogFile(req.Path)
	if err != nil {
		fmt.Printf("[Load %s] ERROR: %v\n", sessionID[:8], err)
		sess.Status = models.SessionStatusError
		sess.Error = err.Error()
		m.store(&SessionState{Session: sess, CreatedAt: start, LastAccessed: start})
		return snapshot(sess), err
	}

	sequences := detector.Detect(records)

	sess.Status = models.SessionStatusComplete
	sess.RecordCount = len(records)
	sess.Subsystems = parser.Subsystems(records)
	sess.Items = parser.Items(records)
	sess.TimeRange = parser.RecordTimeRange(records)
	sess.SequenceCount = parser.CountSequences(sequences)
	sess.LoadTimeMs = time.Since(start).Milliseconds()

	fmt.Printf("[Load %s] Loaded %d records, %d subsystems, %d sequences in %dms\n",
		sessionID[:8], sess.RecordCount, len(sess.Subsystems), sess.SequenceCount, sess.LoadTimeMs)

	m.store(&SessionState{
		Session:      sess,
		Records:      records,
		Sequences:    sequences,
		CreatedAt:    start,
		LastAccessed: time.Now(),
	})

	return snapshot(sess), nil
}

func (m *Manager) store(state *SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[state.Session.ID] = state
}

// snapshot copies a session so callers never share the manager's pointer.
func snapshot(sess *models.ViewSession) *models.ViewSession {
	cp := *sess
	return &cp
}

// cleanupOldSessionsIfNeeded removes the least recently used sessions if at capacity
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.sessions[ids[i]].LastAccessed.Before(m.sessions[ids[j]].LastAccessed)
	})

	toFree := len(m.sessions) - MaxSessions + 1
	for _, id := range ids[:toFree] {
		delete(m.sessions, id)
		fmt.Printf("[Manager] Evicted session %s to free memory\n", id[:8])
	}
}

// CleanupOldSessions removes sessions not accessed within maxAge,
// but keeps sessions that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	removed := 0
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			removed++
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed: %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
	return removed
}

// GetSession returns a session by ID.
func (m *Manager) GetSession(id string) (*models.ViewSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return snapshot(state.Session), true
}

// TouchSession updates the LastAccessed timestamp for a session.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// DeleteSession drops a session.
func (m *Manager) DeleteSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// DeleteByFile drops every session loaded from fileID.
func (m *Manager) DeleteByFile(fileID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, state := range m.sessions {
		if state.Session.FileID == fileID {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// loaded returns the state of a successfully loaded session.
// Callers must hold m.mu.
func (m *Manager) loaded(id string) (*SessionState, bool) {
	state, ok := m.sessions[id]
	if !ok || state.Session.Status != models.SessionStatusComplete {
		return nil, false
	}
	return state, true
}

// Records returns every record of a session.
func (m *Manager) Records(id string) ([]models.LogRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.loaded(id)
	if !ok {
		return nil, false
	}
	return state.Records, true
}

// QueryEntries returns filtered and paginated records for a session.
func (m *Manager) QueryEntries(id string, params parser.FilterParams, page, pageSize int) ([]models.LogRecord, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.loaded(id)
	if !ok {
		return nil, 0, false
	}

	filtered := parser.Filter(state.Records, params)
	entries, total := parser.Paginate(filtered, page, pageSize)
	return entries, total, true
}

// GetSequences returns the detected sequences, restricted to item when non-empty.
func (m *Manager) GetSequences(id, item string) (map[string][]models.Sequence, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.loaded(id)
	if !ok {
		return nil, false
	}

	if item == "" {
		return state.Sequences, true
	}

	result := make(map[string][]models.Sequence)
	if seqs, found := state.Sequences[item]; found {
		result[item] = seqs
	}
	return result, true
}

// GetSubsystems returns the subsystems found in a session's records.
func (m *Manager) GetSubsystems(id string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.loaded(id)
	if !ok {
		return nil, false
	}
	return state.Session.Subsystems, true
}

// GetItems returns the item identifiers found in a session's records.
func (m *Manager) GetItems(id string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.loaded(id)
	if !ok {
		return nil, false
	}
	return state.Session.Items, true
}

// Len returns the number of sessions held.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
