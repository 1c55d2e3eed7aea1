package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// IndicatorService prepares the pre-aggregated indicator sheets for charting
type IndicatorService struct {
	source      ports.IndicatorSource
	totalLabels []string
	shareColumn string
	logger      *slog.Logger
}

var _ ports.IndicatorService = (*IndicatorService)(nil)

// NewIndicatorService creates a new indicator service
func NewIndicatorService(source ports.IndicatorSource, schema domain.IndicatorSchema, logger *slog.Logger) ports.IndicatorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndicatorService{
		source:      source,
		totalLabels: schema.TotalLabels,
		shareColumn: schema.ShareColumn,
		logger:      logger,
	}
}

// List returns every indicator sheet, cleaned, in schema order
func (s *IndicatorService) List(ctx context.Context) ([]*domain.IndicatorReport, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]*domain.IndicatorReport, 0, len(tables))
	for _, table := range tables {
		reports = append(reports, s.prepare(ctx, table))
	}
	return reports, nil
}

// Get returns one indicator sheet by name
func (s *IndicatorService) Get(ctx context.Context, name string) (*domain.IndicatorReport, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, table := range tables {
		if table.Name == name {
			return s.prepare(ctx, table), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", apperrors.ErrIndicatorNotFound, name)
}

func (s *IndicatorService) load(ctx context.Context) ([]domain.IndicatorTable, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no indicator source configured", apperrors.ErrDatasetUnavailable)
	}
	tables, err := s.source.LoadIndicators(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: indicators: %w", apperrors.ErrDatasetUnavailable, err)
	}
	return tables, nil
}

func (s *IndicatorService) prepare(ctx context.Context, table domain.IndicatorTable) *domain.IndicatorReport {
	cleaned := domain.OrderIndicatorMonths(domain.DropTotalRows(table, s.totalLabels))

	report := &domain.IndicatorReport{
		Table:         cleaned,
		UnknownMonths: domain.UnknownMonths(cleaned),
	}
	if len(report.UnknownMonths) > 0 {
		s.logger.WarnContext(ctx, "unrecognized month names sorted last",
			"indicator", table.Name,
			"labels", report.UnknownMonths,
		)
	}

	if shares, ok := domain.IndicatorShares(cleaned, s.shareColumn); ok {
		report.ShareColumn = s.shareColumn
		report.Shares = shares
	}
	return report
}
