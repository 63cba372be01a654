// manager_test.go - Tests for storage layer
package storage

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eif-viewer/backend/internal/models"
)

const sampleLine = "2024-01-01 10:00:00 [EIF.Door] [D1:I_B_TRIGGER_REPORT]: ON\n"

func createTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates upload directory", func(t *testing.T) {
		uploadDir := filepath.Join(t.TempDir(), "uploads")

		if _, err := NewLocalStore(uploadDir); err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
			t.Error("Expected upload directory to be created")
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	t.Run("saves file from reader", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.Save("trace.log", strings.NewReader(sampleLine))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		if info.ID == "" {
			t.Error("Expected ID to be set")
		}
		if info.Name != "trace.log" {
			t.Errorf("Expected name 'trace.log', got %v", info.Name)
		}
		if info.Size != int64(len(sampleLine)) {
			t.Errorf("Expected size %d, got %d", len(sampleLine), info.Size)
		}
		if info.Status != models.FileStatusUploaded {
			t.Errorf("Expected status 'uploaded', got %v", info.Status)
		}

		data, err := os.ReadFile(filepath.Join(store.uploadDir, info.ID))
		if err != nil {
			t.Fatalf("Failed to read saved file: %v", err)
		}
		if string(data) != sampleLine {
			t.Errorf("Expected content %q, got %q", sampleLine, string(data))
		}
	})

	t.Run("saves empty file", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.SaveBytes("empty.log", nil)
		if err != nil {
			t.Fatalf("Failed to save empty file: %v", err)
		}
		if info.Size != 0 {
			t.Errorf("Expected size 0, got %d", info.Size)
		}
	})
}

func TestLocalStore_SaveCompressed(t *testing.T) {
	t.Run("decompresses gzip input", func(t *testing.T) {
		store := createTestStore(t)

		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte(sampleLine))
		zw.Close()

		info, err := store.SaveCompressed("trace.log.gz", &buf)
		if err != nil {
			t.Fatalf("Failed to save compressed file: %v", err)
		}
		if info.Name != "trace.log" {
			t.Errorf("Expected name 'trace.log', got %v", info.Name)
		}

		data, _ := os.ReadFile(filepath.Join(store.uploadDir, info.ID))
		if string(data) != sampleLine {
			t.Errorf("Expected decompressed content, got %q", string(data))
		}
	})

	t.Run("stores plain input as-is", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.SaveCompressed("trace.log", strings.NewReader(sampleLine))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if info.Size != int64(len(sampleLine)) {
			t.Errorf("Expected size %d, got %d", len(sampleLine), info.Size)
		}
	})

	t.Run("rejects corrupt gzip header", func(t *testing.T) {
		store := createTestStore(t)

		_, err := store.SaveCompressed("bad.gz", bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
		if err == nil {
			t.Error("Expected error for truncated gzip stream")
		}
	})
}

func TestLocalStore_GetAndList(t *testing.T) {
	store := createTestStore(t)

	ids := make([]string, 3)
	for i := range ids {
		info, err := store.Save("trace.log", strings.NewReader(sampleLine))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		ids[i] = info.ID
		time.Sleep(10 * time.Millisecond) // Ensure different timestamps
	}

	got, err := store.Get(ids[0])
	if err != nil {
		t.Fatalf("Failed to get file: %v", err)
	}
	if got.ID != ids[0] {
		t.Errorf("Expected ID %s, got %s", ids[0], got.ID)
	}

	if _, err := store.Get("non-existent-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	files, _ := store.List(2)
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}
	if files[0].ID != ids[2] {
		t.Error("Expected files to be sorted by time descending")
	}

	all, _ := store.List(0)
	if len(all) != 3 {
		t.Errorf("Expected 3 files with no limit, got %d", len(all))
	}
}

func TestLocalStore_Delete(t *testing.T) {
	store := createTestStore(t)

	info, _ := store.Save("trace.log", strings.NewReader(sampleLine))
	filePath := filepath.Join(store.uploadDir, info.ID)

	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("Failed to delete file: %v", err)
	}
	if _, err := store.Get(info.ID); err == nil {
		t.Error("Expected error when getting deleted file")
	}
	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		t.Error("Physical file should be deleted")
	}
	if err := store.Delete(info.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocalStore_RenameAndStatus(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.Save("old.log", strings.NewReader(sampleLine))

	updated, err := store.Rename(info.ID, "new.log")
	if err != nil {
		t.Fatalf("Failed to rename file: %v", err)
	}
	if updated.Name != "new.log" {
		t.Errorf("Expected name 'new.log', got %v", updated.Name)
	}

	if err := store.SetStatus(info.ID, models.FileStatusLoaded); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}
	got, _ := store.Get(info.ID)
	if got.Status != models.FileStatusLoaded {
		t.Errorf("Expected status 'loaded', got %v", got.Status)
	}

	if _, err := store.Rename("missing", "x"); err == nil {
		t.Error("Expected error when renaming non-existent file")
	}
	if err := store.SetStatus("missing", models.FileStatusError); err == nil {
		t.Error("Expected error when updating non-existent file")
	}
}

func TestLocalStore_GetFilePath(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.Save("trace.log", strings.NewReader(sampleLine))

	path, err := store.GetFilePath(info.ID)
	if err != nil {
		t.Fatalf("Failed to get file path: %v", err)
	}
	if expected := filepath.Join(store.uploadDir, info.ID); path != expected {
		t.Errorf("Expected path %s, got %s", expected, path)
	}

	if _, err := store.GetFilePath("non-existent-id"); err == nil {
		t.Error("Expected error when getting path for non-existent file")
	}
}
