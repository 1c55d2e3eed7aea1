package ports

import (
	"context"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

// TicketSource loads a snapshot of ticket records. Records come back with
// ElapsedRaw set; normalization is the caller's job.
type TicketSource interface {
	Dataset() string
	LoadTickets(ctx context.Context) ([]domain.TicketRecord, error)
}

// IndicatorSource loads the pre-aggregated indicator sheets.
type IndicatorSource interface {
	LoadIndicators(ctx context.Context) ([]domain.IndicatorTable, error)
}

// EventBroadcaster defines the port for pushing real-time events.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
