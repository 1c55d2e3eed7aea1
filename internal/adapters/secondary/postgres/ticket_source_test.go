package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketSource_ImportLoad(t *testing.T) {
	ctx := context.Background()
	source := NewTicketSource(testPool, "import-load")

	requestedAt := time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)
	records := []domain.TicketRecord{
		{ID: 1, Requester: "Ana", RequestedAt: &requestedAt, Category: "Rede", Priority: "Alta", Status: "Fechado", ElapsedRaw: "2:30:00", ElapsedText: "2h30"},
		{ID: 2, Requester: "Bruno", Category: "Acesso", Priority: "Baixa", Status: "Aberto", ElapsedRaw: 26 * time.Hour},
		{ID: 3, Requester: "Caio", Category: "Rede", Priority: "Baixa", Status: "Fechado", ElapsedRaw: domain.TimeOfDay{Hour: 1, Minute: 15}},
		{ID: 4, Requester: "Dora", Category: "Rede", Priority: "Alta", Status: "Aberto"},
	}

	n, err := source.ImportTickets(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	loaded, err := source.LoadTickets(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 4)

	assert.Equal(t, "Ana", loaded[0].Requester)
	require.NotNil(t, loaded[0].RequestedAt)
	assert.True(t, loaded[0].RequestedAt.Equal(requestedAt))
	assert.Equal(t, "2:30:00", loaded[0].ElapsedRaw)
	assert.Equal(t, "2h30", loaded[0].ElapsedText)
	assert.Nil(t, loaded[1].RequestedAt)
	assert.Equal(t, 26*time.Hour, loaded[1].ElapsedRaw)
	assert.Equal(t, domain.TimeOfDay{Hour: 1, Minute: 15}, loaded[2].ElapsedRaw)
	assert.Nil(t, loaded[3].ElapsedRaw)

	normalized, report := domain.NormalizeTickets(loaded)
	assert.Equal(t, 2.5, normalized[0].ElapsedHours)
	assert.Equal(t, 26.0, normalized[1].ElapsedHours)
	assert.Equal(t, 1.25, normalized[2].ElapsedHours)
	assert.Equal(t, 1, report.Missing)
}

func TestTicketSource_ImportReplacesDataset(t *testing.T) {
	ctx := context.Background()
	source := NewTicketSource(testPool, "replace")
	other := NewTicketSource(testPool, "other")

	_, err := other.ImportTickets(ctx, []domain.TicketRecord{{ID: 1, ElapsedRaw: "1:00:00"}})
	require.NoError(t, err)

	_, err = source.ImportTickets(ctx, []domain.TicketRecord{{ID: 1}, {ID: 2}})
	require.NoError(t, err)
	_, err = source.ImportTickets(ctx, []domain.TicketRecord{{ID: 3}})
	require.NoError(t, err)

	loaded, err := source.LoadTickets(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(3), loaded[0].ID)

	fromOther, err := other.LoadTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, fromOther, 1)
}

func TestTicketSource_Ping(t *testing.T) {
	assert.NoError(t, NewTicketSource(testPool, "sla").Ping(context.Background()))
}

func TestElapsedFromColumns(t *testing.T) {
	tests := []struct {
		name     string
		text     pgtype.Text
		interval pgtype.Interval
		clock    pgtype.Time
		want     any
	}{
		{"none", pgtype.Text{}, pgtype.Interval{}, pgtype.Time{}, nil},
		{"text", pgtype.Text{String: "1:00:00", Valid: true}, pgtype.Interval{}, pgtype.Time{}, "1:00:00"},
		{
			"interval with days",
			pgtype.Text{},
			pgtype.Interval{Days: 1, Microseconds: int64(2 * time.Hour / time.Microsecond), Valid: true},
			pgtype.Time{},
			26 * time.Hour,
		},
		{
			"clock",
			pgtype.Text{}, pgtype.Interval{},
			pgtype.Time{Microseconds: int64((90*time.Minute + 30*time.Second + 500*time.Millisecond) / time.Microsecond), Valid: true},
			domain.TimeOfDay{Hour: 1, Minute: 30, Second: 30, Nanosecond: 500_000_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, elapsedFromColumns(tt.text, tt.interval, tt.clock))
		})
	}
}
