package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// IndicatorHandler handles HTTP requests for the indicator sheets.
type IndicatorHandler struct {
	indicatorService ports.IndicatorService
	errorHandler     *ErrorHandler
	logger           *slog.Logger
}

// NewIndicatorHandler creates a new IndicatorHandler.
func NewIndicatorHandler(
	indicatorService ports.IndicatorService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *IndicatorHandler {
	return &IndicatorHandler{
		indicatorService: indicatorService,
		errorHandler:     errorHandler,
		logger:           logger.With("handler", "indicator"),
	}
}

// RegisterRoutes registers the indicator endpoints relative to /api/v1/indicators.
func (h *IndicatorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/{name}", h.HandleGet)
}

// HandleList returns every indicator sheet.
func (h *IndicatorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	reports, err := h.indicatorService.List(r.Context())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteList(w, lo.Map(reports, func(report *domain.IndicatorReport, _ int) IndicatorDTO {
		return toIndicatorDTO(report)
	}))
}

// HandleGet returns one indicator sheet by name.
func (h *IndicatorHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	report, err := h.indicatorService.Get(r.Context(), chi.URLParam(r, "name"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteSuccess(w, toIndicatorDTO(report))
}
