// handlers_view.go - Loaded log view handlers
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eif-viewer/backend/internal/config"
	"github.com/eif-viewer/backend/internal/export"
	"github.com/eif-viewer/backend/internal/models"
	"github.com/eif-viewer/backend/internal/parser"
	"github.com/eif-viewer/backend/internal/session"
	"github.com/eif-viewer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// MIMEApplicationMsgpack is the content type of MessagePack responses
const MIMEApplicationMsgpack = "application/msgpack"

// ViewHandlerImpl implements the ViewHandler interface
type ViewHandlerImpl struct {
	store      storage.Store
	sessionMgr SessionManager
	cfg        *config.AppConfig
}

// NewViewHandler creates a new view handler instance
func NewViewHandler(store storage.Store, sessionMgr SessionManager, cfg *config.AppConfig) ViewHandler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &ViewHandlerImpl{
		store:      store,
		sessionMgr: sessionMgr,
		cfg:        cfg,
	}
}

// HandleCreateView loads an uploaded file and detects its sequences
func (h *ViewHandlerImpl) HandleCreateView(c echo.Context) error {
	var req createViewRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.FileID == "" {
		return NewValidationError("fileId")
	}
	if req.Wiggle != nil && *req.Wiggle < 0 {
		return NewValidationError("wiggle")
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	path, err := h.store.GetFilePath(req.FileID)
	if err != nil {
		return NewInternalError("failed to get file path", err)
	}

	sess, err := h.sessionMgr.Load(session.LoadRequest{
		FileID:   info.ID,
		FileName: info.Name,
		Path:     path,
		Wiggle:   req.Wiggle,
	})
	if err != nil {
		// The failed view's ID is never returned, so drop it here.
		if sess != nil {
			h.sessionMgr.DeleteSession(sess.ID)
		}
		h.store.SetStatus(info.ID, models.FileStatusError)
		return NewLoadError(info.Name, err)
	}

	h.store.SetStatus(info.ID, models.FileStatusLoaded)
	return c.JSON(http.StatusCreated, sess)
}

// HandleViewStatus returns the metadata of a view
func (h *ViewHandlerImpl) HandleViewStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return NewNotFoundError("view", id)
	}

	// Touch session to prevent cleanup while being viewed
	h.sessionMgr.TouchSession(id)

	return c.JSON(http.StatusOK, sess)
}

// HandleViewKeepAlive extends view lifetime for active viewing
func (h *ViewHandlerImpl) HandleViewKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if ok := h.sessionMgr.TouchSession(id); !ok {
		return NewNotFoundError("view", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleDeleteView releases a view
func (h *ViewHandlerImpl) HandleDeleteView(c echo.Context) error {
	id := c.Param("id")
	if ok := h.sessionMgr.DeleteSession(id); !ok {
		return NewNotFoundError("view", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleViewEntries returns filtered, paginated records of a view
func (h *ViewHandlerImpl) HandleViewEntries(c echo.Context) error {
	resp, err := h.queryEntries(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleViewEntriesMsgpack returns entries in MessagePack format
func (h *ViewHandlerImpl) HandleViewEntriesMsgpack(c echo.Context) error {
	resp, err := h.queryEntries(c)
	if err != nil {
		return err
	}
	return respondMsgpack(c, resp)
}

func (h *ViewHandlerImpl) queryEntries(c echo.Context) (*entriesResponse, error) {
	id := c.Param("id")
	sess, err := h.loadedSession(id)
	if err != nil {
		return nil, err
	}

	params, err := buildFilterParams(c, sess.Subsystems)
	if err != nil {
		return nil, err
	}

	// Parse pagination params
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	records, total, ok := h.sessionMgr.QueryEntries(id, params, page, pageSize)
	if !ok {
		return nil, NewNotFoundError("view", id)
	}
	h.sessionMgr.TouchSession(id)

	return &entriesResponse{
		Entries:  parser.Entries(records),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// HandleGetSubsystems returns the sorted subsystems of a view
func (h *ViewHandlerImpl) HandleGetSubsystems(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.loadedSession(id); err != nil {
		return err
	}

	subsystems, ok := h.sessionMgr.GetSubsystems(id)
	if !ok {
		return NewNotFoundError("view", id)
	}

	return c.JSON(http.StatusOK, subsystems)
}

// HandleGetItems returns the sorted item identifiers of a view
func (h *ViewHandlerImpl) HandleGetItems(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.loadedSession(id); err != nil {
		return err
	}

	items, ok := h.sessionMgr.GetItems(id)
	if !ok {
		return NewNotFoundError("view", id)
	}

	return c.JSON(http.StatusOK, items)
}

// HandleGetTimeRange returns the earliest and latest timestamps of a view,
// used as the defaults of the period filter
func (h *ViewHandlerImpl) HandleGetTimeRange(c echo.Context) error {
	sess, err := h.loadedSession(c.Param("id"))
	if err != nil {
		return err
	}

	if sess.TimeRange == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, sess.TimeRange)
}

// HandleGetSequences returns the detected sequences, optionally for one item
func (h *ViewHandlerImpl) HandleGetSequences(c echo.Context) error {
	resp, err := h.sequences(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleGetSequencesMsgpack returns sequences in MessagePack format
func (h *ViewHandlerImpl) HandleGetSequencesMsgpack(c echo.Context) error {
	resp, err := h.sequences(c)
	if err != nil {
		return err
	}
	return respondMsgpack(c, resp)
}

func (h *ViewHandlerImpl) sequences(c echo.Context) (*sequencesResponse, error) {
	id := c.Param("id")
	sess, err := h.loadedSession(id)
	if err != nil {
		return nil, err
	}

	sequences, ok := h.sessionMgr.GetSequences(id, c.QueryParam("item"))
	if !ok {
		return nil, NewNotFoundError("view", id)
	}

	return &sequencesResponse{
		Wiggle:    sess.Wiggle,
		Count:     parser.CountSequences(sequences),
		Sequences: sequences,
	}, nil
}

// HandleExportView writes the view's records and sequences to a DuckDB file
func (h *ViewHandlerImpl) HandleExportView(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.loadedSession(id); err != nil {
		return err
	}

	records, ok := h.sessionMgr.Records(id)
	if !ok {
		return NewNotFoundError("view", id)
	}
	sequences, _ := h.sessionMgr.GetSequences(id, "")

	if err := os.MkdirAll(h.cfg.Storage.ExportsDirectory, 0755); err != nil {
		return NewInternalError("failed to create exports directory", err)
	}

	exporter := &export.Exporter{Threads: h.cfg.Advanced.DuckDBThreads}
	summary, err := exporter.Write(c.Request().Context(), h.exportPath(id), records, sequences)
	if err != nil {
		return NewInternalError("failed to export view", err)
	}

	return c.JSON(http.StatusCreated, summary)
}

// HandleDownloadExport serves a previously written DuckDB export
func (h *ViewHandlerImpl) HandleDownloadExport(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return NewNotFoundError("view", id)
	}

	path := h.exportPath(id)
	if _, err := os.Stat(path); err != nil {
		return NewNotFoundError("export", id)
	}

	name := strings.TrimSuffix(sess.FileName, filepath.Ext(sess.FileName)) + ".duckdb"
	return c.Attachment(path, name)
}

func (h *ViewHandlerImpl) exportPath(id string) string {
	return filepath.Join(h.cfg.Storage.ExportsDirectory, id+".duckdb")
}

// Request/Response types

type createViewRequest struct {
	FileID string `json:"fileId"`
	Wiggle *int   `json:"wiggle,omitempty"`
}

type entriesResponse struct {
	Entries  []models.Entry `json:"entries" msgpack:"entries"`
	Page     int            `json:"page" msgpack:"page"`
	PageSize int            `json:"pageSize" msgpack:"pageSize"`
	Total    int            `json:"total" msgpack:"total"`
}

type sequencesResponse struct {
	Wiggle    int                          `json:"wiggle" msgpack:"wiggle"`
	Count     int                          `json:"count" msgpack:"count"`
	Sequences map[string][]models.Sequence `json:"sequences" msgpack:"sequences"`
}

// Helper methods

// loadedSession returns the view if it loaded successfully.
func (h *ViewHandlerImpl) loadedSession(id string) (*models.ViewSession, error) {
	if id == "" {
		return nil, NewValidationError("id")
	}

	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return nil, NewNotFoundError("view", id)
	}
	if sess.Status != models.SessionStatusComplete {
		return nil, NewViewNotLoadedError(id, sess.Error)
	}
	return sess, nil
}

// buildFilterParams reads keyword, start, end and subsystems from the query.
// An absent subsystems parameter selects every subsystem of the view; a
// present but empty one selects none.
func buildFilterParams(c echo.Context, all []string) (parser.FilterParams, error) {
	params := parser.FilterParams{Keyword: c.QueryParam("keyword")}

	tr, err := parser.ParseRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return params, NewBadRequestError("invalid time range", err)
	}
	params.Range = tr

	values, present := c.QueryParams()["subsystems"]
	if !present {
		params.Subsystems = parser.NewSubsystemSet(all...)
		return params, nil
	}

	var names []string
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	params.Subsystems = parser.NewSubsystemSet(names...)
	return params, nil
}

func respondMsgpack(c echo.Context, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
}
