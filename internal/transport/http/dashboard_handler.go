package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"mediapulse/internal/dataprocessing"
	apperrors "mediapulse/internal/errors"
	"mediapulse/internal/services"
)

// uploadField is the multipart form field carrying the dataset.
const uploadField = "csvFile"

// DashboardHandler serves the HTML dashboard: the upload form and the
// rendered chart page. All upload failures render in-page with a 200 so
// the browser stays on the dashboard.
type DashboardHandler struct {
	service        *services.DashboardService
	tmpl           *template.Template
	maxUploadBytes int64
	geminiEnabled  bool
	logger         *slog.Logger
}

// NewDashboardHandler parses the dashboard template from the given
// filesystem and returns the handler.
func NewDashboardHandler(service *services.DashboardService, templates fs.FS, maxUploadBytes int64, geminiEnabled bool, logger *slog.Logger) (*DashboardHandler, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}

	return &DashboardHandler{
		service:        service,
		tmpl:           tmpl,
		maxUploadBytes: maxUploadBytes,
		geminiEnabled:  geminiEnabled,
		logger:         logger.With(slog.String("handler", "dashboard")),
	}, nil
}

// pageData carries everything the dashboard template renders.
type pageData struct {
	HasResult     bool
	Error         string
	Warning       string
	Report        *dataprocessing.CleanReport
	ViewsJSON     template.JS
	Insights      map[string]services.ViewInsights
	GeminiEnabled bool
}

// Index handles GET / and renders the upload form.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageData{GeminiEnabled: h.geminiEnabled})
}

// Analyze handles POST /analyze. It reads the uploaded file, runs the
// analysis pipeline and renders the chart page, or the form again with
// an in-page error message.
func (h *DashboardHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	data := pageData{GeminiEnabled: h.geminiEnabled}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		data.Error = h.uploadErrorMessage(err)
		h.render(w, r, data)
		return
	}
	defer file.Close()

	result, err := h.service.Analyze(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.WarnContext(r.Context(), "analysis failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		data.Error = pipelineErrorMessage(err)
		h.render(w, r, data)
		return
	}

	if result.Empty {
		data.Warning = "No usable rows remained after cleaning. Check that the Date column contains valid dates."
		h.render(w, r, data)
		return
	}

	viewsJSON, err := json.Marshal(result.Views)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to serialize views",
			slog.String("error", err.Error()))
		data.Error = "Something went wrong rendering the charts. Please try again."
		h.render(w, r, data)
		return
	}

	data.HasResult = true
	data.Report = result.Report
	data.ViewsJSON = template.JS(viewsJSON)
	data.Insights = result.Insights
	if result.Report.RowsDroppedBadDate > 0 {
		data.Warning = fmt.Sprintf("%d row(s) had unparseable dates and were dropped.", result.Report.RowsDroppedBadDate)
	}

	h.render(w, r, data)
}

func (h *DashboardHandler) uploadErrorMessage(err error) string {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Sprintf("The uploaded file is too large. The limit is %d bytes.", h.maxUploadBytes)
	}
	return "No file selected. Choose a CSV file and try again."
}

func pipelineErrorMessage(err error) string {
	var schemaErr *apperrors.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Error()
	}

	var dateErr *apperrors.InvalidDatesError
	if errors.As(err, &dateErr) {
		return dateErr.Error()
	}

	if errors.Is(err, apperrors.ErrEmptyFile) || errors.Is(err, apperrors.ErrEmptyDataset) {
		return "The uploaded file contains no data rows."
	}

	return "The file could not be processed. Make sure it is a valid CSV or XLSX file."
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed",
			slog.String("error", err.Error()))
	}
}
