package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/ticket-metrics/internal/adapters/primary/csvexport"
	"github.com/lorrc/ticket-metrics/internal/adapters/primary/validation"
	"github.com/lorrc/ticket-metrics/internal/adapters/secondary/spreadsheet"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
	"github.com/lorrc/ticket-metrics/internal/infrastructure/logging"
)

// UploadField is the multipart field carrying an uploaded spreadsheet.
const UploadField = "file"

const maxRecordsPageSize = 500

// Query keys that are not filter fields.
var reservedQueryKeys = []string{"thresholdHours", "meanScope", "records", "limit", "offset"}

// SLAHandler handles HTTP requests for the SLA dashboard.
type SLAHandler struct {
	slaService     ports.SLAService
	schema         domain.TicketSchema
	exporter       *csvexport.Exporter
	maxUploadBytes int64
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewSLAHandler creates a new SLAHandler.
func NewSLAHandler(
	slaService ports.SLAService,
	schema domain.TicketSchema,
	maxUploadBytes int64,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *SLAHandler {
	return &SLAHandler{
		slaService:     slaService,
		schema:         schema,
		exporter:       csvexport.New(schema),
		maxUploadBytes: maxUploadBytes,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "sla"),
	}
}

// RegisterRoutes registers the SLA endpoints relative to /api/v1/sla.
// uploadLimit wraps the upload route; pass nil for no extra limit.
func (h *SLAHandler) RegisterRoutes(r chi.Router, uploadLimit func(http.Handler) http.Handler) {
	r.Get("/overview", h.HandleOverview)
	r.Group(func(r chi.Router) {
		if uploadLimit != nil {
			r.Use(uploadLimit)
		}
		r.Post("/overview", h.HandleUploadOverview)
	})
	r.Get("/records", h.HandleRecords)
	r.Get("/export.csv", h.HandleExport)
	r.Post("/reload", h.HandleReload)
}

// HandleOverview computes the dashboard numbers over the default dataset.
func (h *SLAHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := parseOverviewParams(query)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	overview, err := h.slaService.Overview(r.Context(), params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteSuccess(w, toOverviewDTO(overview, wantsRecords(query)))
}

// HandleUploadOverview computes the dashboard numbers over an uploaded
// spreadsheet. The upload lives only for this request.
func (h *SLAHandler) HandleUploadOverview(w http.ResponseWriter, r *http.Request) {
	source, err := h.readUpload(w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	params, err := parseOverviewParams(r.Form)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	params.Source = source

	ctx := logging.WithDataset(r.Context(), source.Dataset())
	overview, err := h.slaService.Overview(ctx, params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(ctx, "computed overview for upload", "records", overview.DatasetTotal)
	WriteSuccess(w, toOverviewDTO(overview, wantsRecords(r.Form)))
}

// HandleRecords returns the filtered records, newest first, one page at a time.
func (h *SLAHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	params, err := parseOverviewParams(r.URL.Query())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	page := validation.ParsePagination(r, maxRecordsPageSize)

	records, err := h.slaService.FilteredRecords(r.Context(), params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	start := min(page.Offset, len(records))
	end := min(start+page.Limit, len(records))
	WritePaginated(w, toTicketRecordDTOs(records[start:end]), page.Limit, page.Offset, int64(len(records)))
}

// HandleExport streams the filtered records as CSV.
func (h *SLAHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	params, err := parseOverviewParams(r.URL.Query())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	records, err := h.slaService.FilteredRecords(r.Context(), params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvexport.Filename))
	w.WriteHeader(http.StatusOK)

	if err := h.exporter.Write(w, records); err != nil {
		// Headers are gone; all we can do is log
		h.logger.ErrorContext(r.Context(), "failed to write csv export", "error", err, "records", len(records))
	}
}

// HandleReload re-reads the default dataset and notifies connected clients.
func (h *SLAHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	overview, err := h.slaService.Reload(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, SuccessResponse{
		Data:    toOverviewDTO(overview, false),
		Message: "Dataset reloaded",
	})
}

// readUpload parses the multipart body and wraps the spreadsheet in a
// per-request ticket source.
func (h *SLAHandler) readUpload(w http.ResponseWriter, r *http.Request) (ports.TicketSource, error) {
	// Leave room for the multipart envelope around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewPayloadTooLargeError(tooLargeMessage(h.maxUploadBytes))
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, fmt.Errorf("%w: expected multipart/form-data", apperrors.ErrUploadRequired)
		}
		return nil, apperrors.NewBadRequestError(err, "Invalid multipart body")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %q field", apperrors.ErrUploadRequired, UploadField)
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxUploadBytes {
		return nil, apperrors.NewPayloadTooLargeError(tooLargeMessage(h.maxUploadBytes))
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return nil, apperrors.NewBadRequestError(err, "Could not read uploaded file")
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, apperrors.NewPayloadTooLargeError(tooLargeMessage(h.maxUploadBytes))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", apperrors.ErrUploadRequired)
	}

	return spreadsheet.NewUploadTicketSource(filepath.Base(header.Filename), data, h.schema), nil
}

// parseOverviewParams reads filters, threshold and mean scope from query or
// form values.
func parseOverviewParams(values url.Values) (ports.OverviewParams, error) {
	v := validation.NewValidator()

	threshold, err := validation.ParseFloatParam(values, "thresholdHours")
	v.Custom("thresholdHours", err == nil, "Must be a number")
	if threshold != nil {
		v.Custom("thresholdHours", *threshold >= 0, "Must not be negative")
	}

	scope := values.Get("meanScope")
	v.OneOf("meanScope", scope, []string{string(domain.MeanScopeFiltered), string(domain.MeanScopeDataset)})

	if v.HasErrors() {
		return ports.OverviewParams{}, v.Errors()
	}

	filter, err := validation.ParseFilter(values, reservedQueryKeys...)
	if err != nil {
		return ports.OverviewParams{}, err
	}

	return ports.OverviewParams{
		Filter:         filter,
		ThresholdHours: threshold,
		MeanScope:      domain.MeanScope(scope),
	}, nil
}

func wantsRecords(values url.Values) bool {
	include, err := strconv.ParseBool(values.Get("records"))
	return err == nil && include
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("Uploaded file exceeds the %d byte limit", limit)
}
