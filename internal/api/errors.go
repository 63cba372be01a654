// errors.go - Error responses for the viewer API
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/eif-viewer/backend/internal/parser"
	"github.com/eif-viewer/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Error codes returned in the "code" field
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeLogFileMissing   = "LOG_FILE_MISSING"
	CodeLogReadFailed    = "LOG_READ_FAILED"
	CodeViewNotLoaded    = "VIEW_NOT_LOADED"
	CodeDeletionDisabled = "DELETION_DISABLED"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	ViewID  string `json:"viewId,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newAPIError(status int, code, message string, cause error) *APIError {
	err := &APIError{Status: status, Code: code, Message: message}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewBadRequestError reports a malformed body or query.
func NewBadRequestError(message string, cause error) *APIError {
	return newAPIError(http.StatusBadRequest, CodeBadRequest, message, cause)
}

// NewValidationError reports a missing or out-of-range field.
func NewValidationError(field string) *APIError {
	return newAPIError(http.StatusBadRequest, CodeValidation, "invalid or missing field: "+field, nil)
}

// NewNotFoundError reports an unknown file, view or export.
func NewNotFoundError(resource, id string) *APIError {
	return newAPIError(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found: %s", resource, id), nil)
}

// NewViewNotLoadedError reports a data request against a view whose load failed.
func NewViewNotLoadedError(id, reason string) *APIError {
	err := newAPIError(http.StatusConflict, CodeViewNotLoaded, "view is not loaded", errors.New(reason))
	err.ViewID = id
	return err
}

// NewDeletionDisabledError reports a delete refused by configuration.
func NewDeletionDisabledError() *APIError {
	return newAPIError(http.StatusConflict, CodeDeletionDisabled, "file deletion is disabled", nil)
}

// NewLoadError maps a failed log load to a response. A missing log file is
// a 404; any other read failure is a 500.
func NewLoadError(fileName string, err error) *APIError {
	if errors.Is(err, parser.ErrFileNotFound) {
		return newAPIError(http.StatusNotFound, CodeLogFileMissing, "log file not found: "+fileName, nil)
	}
	return newAPIError(http.StatusInternalServerError, CodeLogReadFailed, "failed to read log file: "+fileName, err)
}

// NewInternalError reports an unexpected server-side failure.
func NewInternalError(message string, cause error) *APIError {
	return newAPIError(http.StatusInternalServerError, CodeInternal, message, cause)
}

// ErrorHandler renders errors as APIError JSON.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = newAPIError(httpErr.Code, "HTTP_ERROR", fmt.Sprintf("%v", httpErr.Message), nil)
	case errors.Is(err, storage.ErrNotFound):
		apiErr = newAPIError(http.StatusNotFound, CodeNotFound, "file not found", nil)
	default:
		apiErr = newAPIError(http.StatusInternalServerError, "UNKNOWN_ERROR", "An unexpected error occurred", nil)
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	c.JSON(apiErr.Status, apiErr)
}

// ShowErrorDetails controls whether unexpected errors expose their message.
// The server disables it unless the log level is debug.
var ShowErrorDetails = true
