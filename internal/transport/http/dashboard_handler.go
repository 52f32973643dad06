package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"shoplens/internal/analytics"
	apierrors "shoplens/internal/errors"
	"shoplens/internal/exporter"
	"shoplens/internal/services"
)

const dateLayout = "2006-01-02"

// Exporter renders a snapshot as a downloadable workbook.
type Exporter interface {
	Write(w io.Writer, snap *services.Snapshot) error
}

// dashboardQuery carries the bound query parameters of a dashboard request.
type dashboardQuery struct {
	Start       string `validate:"omitempty,datetime=2006-01-02"`
	End         string `validate:"omitempty,datetime=2006-01-02"`
	Granularity string `validate:"omitempty,oneof=month quarter year"`
}

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	service      *services.DashboardService
	exporter     Exporter
	csvWriter    *exporter.CSVWriter
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.DashboardService, xlsx Exporter, csvWriter *exporter.CSVWriter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		exporter:     xlsx,
		csvWriter:    csvWriter,
		validate:     validator.New(),
		logger:       logger.With(slog.String("handler", "dashboard")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetDashboard)
	r.Get("/export", h.ExportDashboard)
	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	start, end, granularity, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snap, err := h.service.Snapshot(r.Context(), start, end, granularity)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, snap)
}

// ExportDashboard handles GET /api/dashboard/export
func (h *DashboardHandler) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	start, end, granularity, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snap, err := h.service.Snapshot(r.Context(), start, end, granularity)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	filename := fmt.Sprintf("dashboard_%s_%s.xlsx",
		snap.Range.Start.Format(dateLayout), snap.Range.End.Format(dateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := h.exporter.Write(w, snap); err != nil {
		// Headers are already written; log instead of re-rendering.
		h.logger.ErrorContext(r.Context(), "dashboard export failed",
			slog.String("error", err.Error()))
	}
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Info(r.Context()))
}

// DownloadDataset handles GET /api/dataset/export
func (h *DashboardHandler) DownloadDataset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)

	if err := h.csvWriter.WriteOrders(w, h.service.Orders(), exporter.CSVOptions{BOMPrefix: true}); err != nil {
		h.logger.ErrorContext(r.Context(), "dataset export failed",
			slog.String("error", err.Error()))
	}
}

// parseQuery binds and validates the shared dashboard query parameters.
func (h *DashboardHandler) parseQuery(r *http.Request) (time.Time, time.Time, analytics.Granularity, error) {
	q := dashboardQuery{
		Start:       r.URL.Query().Get("start"),
		End:         r.URL.Query().Get("end"),
		Granularity: r.URL.Query().Get("granularity"),
	}

	if err := h.validate.Struct(q); err != nil {
		var fields []apierrors.ValidationError
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			for _, fe := range errs {
				fields = append(fields, apierrors.ValidationError{
					Field:   fe.Field(),
					Message: validationMessage(fe),
				})
			}
		}
		return time.Time{}, time.Time{}, "", apierrors.NewValidationErrors(fields)
	}

	var start, end time.Time
	if q.Start != "" {
		start, _ = time.Parse(dateLayout, q.Start)
	}
	if q.End != "" {
		end, _ = time.Parse(dateLayout, q.End)
		// An end date covers its whole day.
		end = end.Add(24*time.Hour - time.Second)
	}

	granularity, err := analytics.ParseGranularity(q.Granularity)
	if err != nil {
		return time.Time{}, time.Time{}, "", apierrors.ErrInvalidGranularity
	}

	return start, end, granularity, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return "must be a YYYY-MM-DD date"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// mapServiceError translates service errors into API errors.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrInvalidRange):
		return apierrors.ErrInvalidDateRange
	case errors.Is(err, services.ErrInvalidGranularity):
		return apierrors.ErrInvalidGranularity
	case errors.Is(err, services.ErrEmptyDataset):
		return apierrors.NotFoundError("dataset")
	case errors.Is(err, services.ErrExportFailed):
		return apierrors.ErrExportFailed
	default:
		return err
	}
}
