package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// SLAConfig holds the thresholds the SLA service applies by default.
type SLAConfig struct {
	ThresholdHours  float64
	TargetPercent   float64
	MeanScope       domain.MeanScope
	AlertRecipients []string
}

// snapshot is one normalized load of a ticket source. It is never modified
// after creation; Reload swaps in a new one.
type snapshot struct {
	records []domain.TicketRecord
	report  domain.NormalizationReport
}

// SLAService implements ticket SLA analytics over the default dataset or a
// per-request source.
type SLAService struct {
	source      ports.TicketSource
	notifier    ports.Notifier
	broadcaster ports.EventBroadcaster
	cfg         SLAConfig
	logger      *slog.Logger

	mu      sync.RWMutex
	current *snapshot

	wg sync.WaitGroup
}

var _ ports.SLAService = (*SLAService)(nil)

// NewSLAService creates a new SLA service
func NewSLAService(
	source ports.TicketSource,
	notifier ports.Notifier,
	broadcaster ports.EventBroadcaster,
	cfg SLAConfig,
	logger *slog.Logger,
) ports.SLAService {
	if !cfg.MeanScope.IsValid() {
		cfg.MeanScope = domain.MeanScopeFiltered
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SLAService{
		source:      source,
		notifier:    notifier,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger,
	}
}

// Overview computes the dashboard numbers for one filter selection
func (s *SLAService) Overview(ctx context.Context, params ports.OverviewParams) (*domain.SLAOverview, error) {
	threshold, scope, err := s.resolve(params)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshotFor(ctx, params.Source)
	if err != nil {
		return nil, err
	}

	return s.compute(snap, params.Filter, threshold, scope), nil
}

// FilteredRecords returns the filtered records, newest request first
func (s *SLAService) FilteredRecords(ctx context.Context, params ports.OverviewParams) ([]domain.TicketRecord, error) {
	snap, err := s.snapshotFor(ctx, params.Source)
	if err != nil {
		return nil, err
	}
	return domain.SortByRequestedDesc(domain.ApplyFilter(snap.records, params.Filter)), nil
}

// Reload re-reads the default dataset and tells connected clients about it
func (s *SLAService) Reload(ctx context.Context) (*domain.SLAOverview, error) {
	snap, err := s.load(ctx, s.source, false)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	overview := s.compute(snap, domain.Filter{}, s.cfg.ThresholdHours, s.cfg.MeanScope)

	s.logger.InfoContext(ctx, "dataset reloaded",
		"dataset", s.source.Dataset(),
		"records", overview.Total,
		"within_sla_percent", overview.WithinSLA,
	)

	// Broadcast real-time event
	s.broadcastReload(overview)

	if overview.HasData && overview.WithinSLA < s.cfg.TargetPercent {
		s.raiseBreach(overview)
	}

	return overview, nil
}

// Shutdown waits for pending notifications
func (s *SLAService) Shutdown() {
	s.wg.Wait()
}

func (s *SLAService) resolve(params ports.OverviewParams) (float64, domain.MeanScope, error) {
	threshold := s.cfg.ThresholdHours
	if params.ThresholdHours != nil {
		threshold = *params.ThresholdHours
	}
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return 0, "", apperrors.ErrInvalidThreshold
	}

	scope := s.cfg.MeanScope
	if params.MeanScope != "" {
		if !params.MeanScope.IsValid() {
			return 0, "", apperrors.ErrInvalidMeanScope
		}
		scope = params.MeanScope
	}
	return threshold, scope, nil
}

// snapshotFor returns the cached default snapshot, loading it on first use, or
// a fresh uncached snapshot of a per-request source.
func (s *SLAService) snapshotFor(ctx context.Context, source ports.TicketSource) (*snapshot, error) {
	if source != nil {
		return s.load(ctx, source, true)
	}

	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	snap, err := s.load(ctx, s.source, false)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current == nil {
		s.current = snap
	} else {
		snap = s.current
	}
	s.mu.Unlock()
	return snap, nil
}

// load reads and normalizes source. Only an uploaded source keeps the cause
// in the error chain; a configured dataset that fails to parse is reported as
// unavailable rather than as a bad request.
func (s *SLAService) load(ctx context.Context, source ports.TicketSource, uploaded bool) (*snapshot, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: no ticket source configured", apperrors.ErrDatasetUnavailable)
	}

	raw, err := source.LoadTickets(ctx)
	if err != nil {
		if uploaded {
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrDatasetUnavailable, source.Dataset(), err)
		}
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrDatasetUnavailable, source.Dataset(), err)
	}

	records, report := domain.NormalizeTickets(raw)
	if report.Degraded() > 0 {
		s.logger.WarnContext(ctx, "elapsed values could not be read and count as 0 hours",
			"dataset", source.Dataset(),
			"missing", report.Missing,
			"invalid", report.Invalid,
			"total", report.Total,
		)
	}
	return &snapshot{records: records, report: report}, nil
}

func (s *SLAService) compute(snap *snapshot, filter domain.Filter, threshold float64, scope domain.MeanScope) *domain.SLAOverview {
	filtered := domain.ApplyFilter(snap.records, filter)

	mean, hasData := domain.MeanHours(filtered)
	within, _ := domain.WithinThresholdRatio(filtered, threshold)
	p90, _ := domain.PercentileHours(filtered, 90)

	reference := mean
	if scope == domain.MeanScopeDataset {
		reference, _ = domain.OverallMean(snap.records)
	}

	options := make(map[domain.FilterField][]string, len(domain.FilterFields))
	for _, field := range domain.FilterFields {
		options[field] = domain.DistinctValues(snap.records, field)
	}

	monthly := domain.MonthlyRollupOf(filtered)
	if monthly.Skipped > 0 {
		s.logger.Debug("records without request timestamp left out of monthly rollup", "skipped", monthly.Skipped)
	}

	return &domain.SLAOverview{
		Total:                domain.Count(filtered),
		MeanHours:            mean,
		HasData:              hasData,
		WithinSLA:            within,
		ThresholdHours:       threshold,
		P90Hours:             p90,
		ReferenceMean:        reference,
		ReferenceScope:       scope,
		CategoryMeans:        domain.GroupBreakdown(filtered, domain.ByField(domain.FieldCategory)),
		PriorityDistribution: domain.CountBy(filtered, domain.ByField(domain.FieldPriority)),
		Monthly:              monthly,
		DatasetTotal:         len(snap.records),
		Normalization:        snap.report,
		Filter:               filter.Selections(),
		Options:              options,
		Records:              domain.SortByRequestedDesc(filtered),
	}
}

// broadcastReload sends the headline numbers of the new dataset
func (s *SLAService) broadcastReload(overview *domain.SLAOverview) {
	if s.broadcaster == nil {
		return
	}
	event := domain.Event{
		Type:    domain.EventDatasetReloaded,
		Dataset: s.source.Dataset(),
		Payload: domain.DatasetReloadedPayload{
			Total:          overview.Total,
			MeanHours:      overview.MeanHours,
			WithinSLA:      overview.WithinSLA,
			ThresholdHours: overview.ThresholdHours,
			Normalization:  overview.Normalization,
		},
	}
	if err := s.broadcaster.Broadcast(event); err != nil {
		s.logger.Warn("failed to broadcast reload", "error", err)
	}
}

// raiseBreach broadcasts the breach and mails the alert recipients
func (s *SLAService) raiseBreach(overview *domain.SLAOverview) {
	dataset := s.source.Dataset()
	payload := domain.SLABreachPayload{
		WithinSLA:      overview.WithinSLA,
		TargetPercent:  s.cfg.TargetPercent,
		ThresholdHours: overview.ThresholdHours,
		Total:          overview.Total,
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(domain.Event{Type: domain.EventSLABreach, Dataset: dataset, Payload: payload}); err != nil {
			s.logger.Warn("failed to broadcast SLA breach", "error", err)
		}
	}

	if s.notifier == nil || len(s.cfg.AlertRecipients) == 0 {
		return
	}

	params := ports.NotificationParams{
		Recipients: s.cfg.AlertRecipients,
		Subject:    fmt.Sprintf("SLA abaixo da meta em %s", dataset),
		Message: fmt.Sprintf("%.1f%% dos %d chamados foram atendidos em até %.0fh (meta: %.1f%%).",
			payload.WithinSLA, payload.Total, payload.ThresholdHours, payload.TargetPercent),
		Dataset: dataset,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Use background context since the HTTP request may be done
		s.notifier.Notify(context.Background(), params)
	}()
}
