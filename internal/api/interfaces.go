// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"github.com/eif-viewer/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// FileHandler handles uploaded log file operations
type FileHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// ViewHandler handles loaded log views: records, catalogs and sequences
type ViewHandler interface {
	HandleCreateView(c echo.Context) error
	HandleViewStatus(c echo.Context) error
	HandleViewKeepAlive(c echo.Context) error
	HandleDeleteView(c echo.Context) error
	HandleViewEntries(c echo.Context) error
	HandleViewEntriesMsgpack(c echo.Context) error
	HandleGetSubsystems(c echo.Context) error
	HandleGetItems(c echo.Context) error
	HandleGetTimeRange(c echo.Context) error
	HandleGetSequences(c echo.Context) error
	HandleGetSequencesMsgpack(c echo.Context) error
	HandleExportView(c echo.Context) error
	HandleDownloadExport(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the interface for view session management
// This allows mocking in tests
type SessionManager interface {
	Load(req session.LoadRequest) (*models.ViewSession, error)
	GetSession(id string) (*models.ViewSession, bool)
	TouchSession(id string) bool
	DeleteSession(id string) bool
	DeleteByFile(fileID string) int
	Records(id string) ([]models.LogRecord, bool)
	QueryEntries(id string, params parser.FilterParams, page, pageSize int) ([]models.LogRecord, int, bool)
	GetSequences(id, item string) (map[string][]models.Sequence, bool)
	GetSubsystems(id string) ([]string, bool)
	GetItems(id string) ([]string, bool)
	Len() int
}

var _ SessionManager = (*session.Manager)(nil)
