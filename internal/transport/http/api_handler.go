package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apperrors "mediapulse/internal/errors"
	"mediapulse/internal/services"
)

// APIHandler exposes the analysis pipeline as JSON for programmatic
// clients. Unlike the HTML surface, failures map to real status codes.
type APIHandler struct {
	service        *services.DashboardService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewAPIHandler creates the JSON API handler.
func NewAPIHandler(service *services.DashboardService, maxUploadBytes int64, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("handler", "api")),
	}
}

// analyzeResponse wraps a successful analysis for JSON clients.
type analyzeResponse struct {
	Success bool                      `json:"success"`
	Data    *services.DashboardResult `json:"data"`
}

// Analyze handles POST /api/analyze with a multipart upload.
func (h *APIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.renderError(w, r, apperrors.ErrMissingFile)
		return
	}
	defer file.Close()

	result, err := h.service.Analyze(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.WarnContext(r.Context(), "analysis failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		h.renderError(w, r, apperrors.FromPipeline(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, analyzeResponse{Success: true, Data: result})
}

func (h *APIHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apperrors.APIError) {
	if err := render.Render(w, r, apperrors.NewErrorResponse(apiErr)); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render error response",
			slog.String("error", err.Error()))
	}
}
