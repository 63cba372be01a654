// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/eif-viewer/backend/internal/config"
	"github.com/eif-viewer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store      storage.Store
	SessionMgr SessionManager
	Config     *config.AppConfig
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Files  FileHandler
	Views  ViewHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.SessionMgr),
		Files:  NewFileHandler(deps.Store, deps.SessionMgr, deps.Config),
		Views:  NewViewHandler(deps.Store, deps.SessionMgr, deps.Config),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// File routes
	fileGroup := apiGroup.Group("/files")
	fileGroup.POST("/upload", handlers.Files.HandleUploadFile)
	fileGroup.GET("/recent", handlers.Files.HandleGetRecentFiles)
	fileGroup.GET("/:id", handlers.Files.HandleGetFile)
	fileGroup.PUT("/:id", handlers.Files.HandleRenameFile)
	fileGroup.DELETE("/:id", handlers.Files.HandleDeleteFile)

	// View routes
	viewGroup := apiGroup.Group("/views")
	viewGroup.POST("", handlers.Views.HandleCreateView)
	viewGroup.GET("/:id", handlers.Views.HandleViewStatus)
	viewGroup.DELETE("/:id", handlers.Views.HandleDeleteView)
	viewGroup.POST("/:id/keepalive", handlers.Views.HandleViewKeepAlive)
	viewGroup.GET("/:id/entries", handlers.Views.HandleViewEntries)
	viewGroup.GET("/:id/entries/msgpack", handlers.Views.HandleViewEntriesMsgpack)
	viewGroup.GET("/:id/subsystems", handlers.Views.HandleGetSubsystems)
	viewGroup.GET("/:id/items", handlers.Views.HandleGetItems)
	viewGroup.GET("/:id/time-range", handlers.Views.HandleGetTimeRange)
	viewGroup.GET("/:id/sequences", handlers.Views.HandleGetSequences)
	viewGroup.GET("/:id/sequences/msgpack", handlers.Views.HandleGetSequencesMsgpack)
	viewGroup.POST("/:id/export", handlers.Views.HandleExportView)
	viewGroup.GET("/:id/export", handlers.Views.HandleDownloadExport)
}

// SetupMiddleware configures common middleware from the server configuration
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/keepalive") || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Server.RequestTimeout > 0 {
		e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return strings.Contains(path, "/upload") || strings.HasSuffix(path, "/export")
			},
			ErrorMessage: "Request timeout - query took too long",
		}))
	}

	// Compression middleware
	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
		}))
	}

	// Body limit middleware
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 1 && origins[0] == "" {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
