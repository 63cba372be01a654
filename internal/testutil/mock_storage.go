// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/storage"
)

// MockStorage implements storage.Store and writes files into a temp directory
// so the session manager can load them from disk.
type MockStorage struct {
	mu      sync.RWMutex
	dir     string
	files   map[string]*models.FileInfo
	counter int
}

// NewMockStorage creates a mock storage rooted at dir.
func NewMockStorage(dir string) *MockStorage {
	return &MockStorage{
		dir:   dir,
		files: make(map[string]*models.FileInfo),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, data)
}

func (m *MockStorage) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	m.mu.Lock()
	m.counter++
	id := fmt.Sprintf("test-id-%d", m.counter)
	m.mu.Unlock()

	return m.AddFile(id, name, data), nil
}

// SaveCompressed stores the input unchanged; compression is covered by LocalStore tests.
func (m *MockStorage) SaveCompressed(name string, r io.Reader) (*models.FileInfo, error) {
	return m.Save(name, r)
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return file, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.FileInfo, 0, len(m.files))
	for _, file := range m.files {
		files = append(files, file)
		if limit > 0 && len(files) >= limit {
			break
		}
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	os.Remove(filepath.Join(m.dir, id))
	delete(m.files, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	file.Name = newName
	return file, nil
}

func (m *MockStorage) SetStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	file.Status = status
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return filepath.Join(m.dir, id), nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile writes the file to disk and registers it under id
func (m *MockStorage) AddFile(id string, name string, data []byte) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.WriteFile(filepath.Join(m.dir, id), data, 0644); err != nil {
		panic(fmt.Sprintf("failed to write test file: %v", err))
	}

	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     models.FileStatusUploaded,
	}
	m.files[id] = file
	return file
}

// RegisterMissing registers a file whose contents are absent from disk
func (m *MockStorage) RegisterMissing(id string, name string) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	file := &models.FileInfo{ID: id, Name: name, UploadedAt: time.Now()}
	m.files[id] = file
	return file
}

// GetFileData returns the file content
func (m *MockStorage) GetFileData(id string) ([]byte, error) {
	return os.ReadFile(filepath.Join(m.dir, id))
}

// GetFileCount returns the number of stored files
func (m *MockStorage) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// SampleLog is a small EIF trace with one complete trigger sequence for D1.
var SampleLog = bytes.Join([][]byte{
	[]byte("2024-01-01 10:00:00 [EIF.Door] [D1:I_B_TRIGGER_REPORT]: ON"),
	[]byte("2024-01-01 10:00:01 [EIF.Door] [D1:I_B_STATUS]: ON"),
	[]byte("2024-01-01 10:00:02 [EIF.Lift] [L1:I_B_STATUS]: OFF"),
	[]byte("2024-01-01 10:00:05 [EIF.Door] [D1:O_B_TRIGGER_REPORT_CONF]: OFF"),
}, []byte("\n"))
