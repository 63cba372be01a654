package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `2024-01-01 10:00:00 [EIF.Door] [D1:I_B_TRIGGER_REPORT]: ON
2024-01-01 10:00:01 [EIF.Door] [D1:I_B_STATUS]: ON

2024-01-01 10:00:02 [EIF.Lift] [L1:I_B_STATUS]: OFF
2024-01-01 10:00:05 [EIF.Door] [D1:O_B_TRIGGER_REPORT_CONF]: OFF
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0644))
	return path
}

func TestSessionManager(t *testing.T) {
	m := NewManager()

	sess, err := m.Load(LoadRequest{FileID: "file-1", FileName: "trace.log", Path: writeSample(t)})
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusComplete, sess.Status)
	assert.Equal(t, 4, sess.RecordCount)
	assert.Equal(t, []string{"Door", "Lift"}, sess.Subsystems)
	assert.Equal(t, []string{"D1", "L1"}, sess.Items)
	assert.Equal(t, 1, sess.SequenceCount)
	assert.Equal(t, parser.DefaultWiggle, sess.Wiggle)
	require.NotNil(t, sess.TimeRange)
	assert.True(t, sess.TimeRange.End.Equal(time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)))

	got, ok := m.GetSession(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)

	// Verify entries
	entries, total, ok := m.QueryEntries(sess.ID, parser.FilterParams{
		Subsystems: parser.NewSubsystemSet("Door"),
	}, 1, 10)
	require.True(t, ok)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[2].Position)

	seqs, ok := m.GetSequences(sess.ID, "")
	require.True(t, ok)
	require.Len(t, seqs["D1"], 1)
	assert.Equal(t, []int{0, 1, 3}, seqs["D1"][0].Positions)

	seqs, ok = m.GetSequences(sess.ID, "L1")
	require.True(t, ok)
	assert.Empty(t, seqs)
}

func TestSessionManager_WiggleOverride(t *testing.T) {
	m := NewManager()
	zero := 0

	sess, err := m.Load(LoadRequest{FileName: "trace.log", Path: writeSample(t), Wiggle: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Wiggle)

	seqs, ok := m.GetSequences(sess.ID, "D1")
	require.True(t, ok)
	require.Len(t, seqs["D1"], 1)
	assert.Equal(t, []int{0, 1, 3}, seqs["D1"][0].Positions)
	assert.Equal(t, parser.DefaultWiggle, m.Detector().Wiggle)
}

func TestSessionManager_FileNotFound(t *testing.T) {
	m := NewManager()

	sess, err := m.Load(LoadRequest{FileName: "missing.log", Path: filepath.Join(t.TempDir(), "missing.log")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrFileNotFound))
	require.NotNil(t, sess)
	assert.Equal(t, models.SessionStatusError, sess.Status)
	assert.NotEmpty(t, sess.Error)

	got, ok := m.GetSession(sess.ID)
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusError, got.Status)

	_, _, ok = m.QueryEntries(sess.ID, parser.FilterParams{}, 1, 10)
	assert.False(t, ok, "error sessions have no records")
}

func TestSessionManager_Eviction(t *testing.T) {
	m := NewManager()
	path := writeSample(t)

	var first string
	for i := 0; i < MaxSessions+2; i++ {
		sess, err := m.Load(LoadRequest{FileName: "trace.log", Path: path})
		require.NoError(t, err)
		if i == 0 {
			first = sess.ID
		}
	}

	assert.Equal(t, MaxSessions, m.Len())
	_, ok := m.GetSession(first)
	assert.False(t, ok, "least recently used session is evicted first")
}

func TestSessionManager_Cleanup(t *testing.T) {
	m := NewManager()
	sess, err := m.Load(LoadRequest{FileID: "f", FileName: "trace.log", Path: writeSample(t)})
	require.NoError(t, err)

	assert.Equal(t, 0, m.CleanupOldSessions(time.Minute), "recently used sessions are kept")

	m.mu.Lock()
	m.sessions[sess.ID].LastAccessed = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	assert.Equal(t, 1, m.CleanupOldSessions(30*time.Minute))
	_, ok := m.GetSession(sess.ID)
	assert.False(t, ok)
}

func TestSessionManager_Delete(t *testing.T) {
	m := NewManager()
	path := writeSample(t)

	a, err := m.Load(LoadRequest{FileID: "f1", Path: path})
	require.NoError(t, err)
	_, err = m.Load(LoadRequest{FileID: "f1", Path: path})
	require.NoError(t, err)
	b, err := m.Load(LoadRequest{FileID: "f2", Path: path})
	require.NoError(t, err)

	assert.Equal(t, 2, m.DeleteByFile("f1"))
	_, ok := m.GetSession(a.ID)
	assert.False(t, ok)

	assert.True(t, m.TouchSession(b.ID))
	assert.True(t, m.DeleteSession(b.ID))
	assert.False(t, m.DeleteSession(b.ID))
	assert.False(t, m.TouchSession(b.ID))
}
