// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version    string
	startedAt  time.Time
	sessionMgr SessionManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, sessionMgr SessionManager) HealthHandler {
	return &HealthHandlerImpl{
		version:    version,
		startedAt:  time.Now(),
		sessionMgr: sessionMgr,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	}
	if h.sessionMgr != nil {
		resp["views"] = h.sessionMgr.Len()
	}
	return c.JSON(http.StatusOK, resp)
}
