package ports

import (
	"context"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.Viewer, error)
}

// OverviewParams selects what an SLA computation runs over.
type OverviewParams struct {
	Filter domain.Filter
	// ThresholdHours overrides the configured SLA threshold when set.
	ThresholdHours *float64
	// MeanScope overrides the configured reference mean scope when set.
	MeanScope domain.MeanScope
	// Source replaces the default dataset for this call only. Its records are
	// never cached.
	Source TicketSource
}

// SLAService defines the port for ticket SLA analytics.
type SLAService interface {
	Overview(ctx context.Context, params OverviewParams) (*domain.SLAOverview, error)
	FilteredRecords(ctx context.Context, params OverviewParams) ([]domain.TicketRecord, error)
	Reload(ctx context.Context) (*domain.SLAOverview, error)
	Shutdown()
}

// IndicatorService defines the port for the pre-aggregated indicator sheets.
type IndicatorService interface {
	List(ctx context.Context) ([]*domain.IndicatorReport, error)
	Get(ctx context.Context, name string) (*domain.IndicatorReport, error)
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	Recipients []string
	Subject    string
	Message    string
	Dataset    string
}

// Notifier defines the port for sending asynchronous notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}
