// handlers_files.go - Uploaded log file handlers
package api

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/eif-viewer/backend/internal/config"
	"github.com/eif-viewer/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// recentFilesLimit caps the recent files list
const recentFilesLimit = 20

// FileHandlerImpl implements the FileHandler interface
type FileHandlerImpl struct {
	store      storage.Store
	sessionMgr SessionManager
	cfg        *config.AppConfig
}

// NewFileHandler creates a new file handler instance
func NewFileHandler(store storage.Store, sessionMgr SessionManager, cfg *config.AppConfig) FileHandler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &FileHandlerImpl{
		store:      store,
		sessionMgr: sessionMgr,
		cfg:        cfg,
	}
}

// HandleUploadFile accepts a log file as multipart/form-data field "file"
func (h *FileHandlerImpl) HandleUploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	name := filepath.Base(file.Filename)
	if !h.cfg.IsAllowedFileType(name) {
		return NewBadRequestError("file type not allowed: "+name, nil)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	save := h.store.Save
	if h.cfg.Processing.EnableCompression {
		save = h.store.SaveCompressed
	}

	info, err := save(name, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleGetRecentFiles returns a list of recently uploaded log files
func (h *FileHandlerImpl) HandleGetRecentFiles(c echo.Context) error {
	files, err := h.store.List(recentFilesLimit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile deletes a file and drops the views loaded from it
func (h *FileHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if !h.cfg.Security.AllowFileDeletion {
		return NewDeletionDisabledError()
	}

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("file", id)
		}
		return NewInternalError("failed to delete file", err)
	}

	if h.sessionMgr != nil {
		h.sessionMgr.DeleteByFile(id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the display name of a file
func (h *FileHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// Request/Response types

type renameFileRequest struct {
	Name string `json:"name"`
}
