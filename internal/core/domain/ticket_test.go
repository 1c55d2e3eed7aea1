package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTickets(t *testing.T) {
	input := []domain.TicketRecord{
		{ID: 1, ElapsedRaw: "2:30:00"},
		{ID: 2, ElapsedRaw: nil},
		{ID: 3, ElapsedRaw: "n/a"},
		{ID: 4, ElapsedRaw: 45 * time.Minute},
	}

	got, report := domain.NormalizeTickets(input)

	require.Len(t, got, 4)
	assert.Equal(t, 2.5, got[0].ElapsedHours)
	assert.Equal(t, domain.DurationOK, got[0].ElapsedStatus)
	assert.Equal(t, 0.0, got[1].ElapsedHours)
	assert.Equal(t, domain.DurationMissing, got[1].ElapsedStatus)
	assert.Equal(t, 0.0, got[2].ElapsedHours)
	assert.Equal(t, domain.DurationInvalid, got[2].ElapsedStatus)
	assert.Equal(t, 0.75, got[3].ElapsedHours)

	assert.Equal(t, domain.NormalizationReport{Total: 4, Missing: 1, Invalid: 1}, report)
	assert.Equal(t, 2, report.Degraded())

	for _, rec := range input {
		assert.False(t, rec.Normalized(), "input must not be modified")
	}
}

func TestNormalizeTickets_SetsHoursOnce(t *testing.T) {
	input := []domain.TicketRecord{{ID: 1, ElapsedRaw: "1:00:00"}}

	first, _ := domain.NormalizeTickets(input)
	first[0].ElapsedRaw = "9:00:00"
	second, report := domain.NormalizeTickets(first)

	assert.Equal(t, 1.0, second[0].ElapsedHours)
	assert.Equal(t, 0, report.Degraded())
}

func TestSortByRequestedDesc(t *testing.T) {
	records := []domain.TicketRecord{
		{ID: 1, RequestedAt: at(2024, time.January, 1)},
		{ID: 2},
		{ID: 3, RequestedAt: at(2024, time.March, 1)},
		{ID: 4},
		{ID: 5, RequestedAt: at(2024, time.February, 1)},
	}

	got := domain.SortByRequestedDesc(records)

	assert.Equal(t, []int64{3, 5, 1, 2, 4}, ids(got))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(records))
}
