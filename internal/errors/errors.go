// Package errors defines the error taxonomy for the analyze pipeline and
// the structured API error responses used by the JSON surface.
//
// Only SchemaError and unreadable/empty-file conditions abort a render.
// Everything else degrades: rows with bad dates are dropped and counted,
// missing engagement values default to zero, and collaborator failures are
// replaced with fallback insight text.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/render"
)

// Sentinel errors for the pipeline.
var (
	// ErrEmptyDataset indicates the upload carried a valid header but
	// zero data rows. No charts are rendered.
	ErrEmptyDataset = errors.New("dataset contains no data rows")

	// ErrEmptyFile indicates the upload contained no parseable rows at all.
	ErrEmptyFile = errors.New("uploaded file is empty")
)

// SchemaError reports required columns missing after header normalization.
// Fatal to the request; surfaced verbatim naming the missing column(s).
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	missing := append([]string(nil), e.Missing...)
	sort.Strings(missing)
	return fmt.Sprintf("missing required column(s): %s", strings.Join(missing, ", "))
}

// NewSchemaError creates a SchemaError for the given missing canonical keys.
func NewSchemaError(missing []string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// InvalidDatesError reports unparseable dates under the strict cleaning
// policy, where any bad date aborts the request.
type InvalidDatesError struct {
	Rows int
}

func (e *InvalidDatesError) Error() string {
	return fmt.Sprintf("%d row(s) contain unparseable dates", e.Rows)
}

// CollaboratorError wraps a failure of the external text-generation service.
// Never fatal; callers replace the insight with fallback text.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("generative collaborator %s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// APIError represents a structured API error response
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest     = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrMissingFile        = New(http.StatusBadRequest, "MISSING_FILE", "No file part in the request")
	ErrInternalServer     = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
)

// FromPipeline maps a pipeline error to an APIError for the JSON surface.
func FromPipeline(err error) *APIError {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return NewWithDetails(http.StatusUnprocessableEntity, "SCHEMA_ERROR", schemaErr.Error(), map[string]any{
			"missing_columns": schemaErr.Missing,
		})
	}

	var dateErr *InvalidDatesError
	if errors.As(err, &dateErr) {
		return NewWithDetails(http.StatusUnprocessableEntity, "INVALID_DATES", dateErr.Error(), map[string]any{
			"rows": dateErr.Rows,
		})
	}

	if errors.Is(err, ErrEmptyDataset) || errors.Is(err, ErrEmptyFile) {
		return New(http.StatusUnprocessableEntity, "EMPTY_DATASET", err.Error())
	}

	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
