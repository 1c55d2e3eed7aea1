package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

func TestExporter_Write(t *testing.T) {
	at := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	records := []domain.TicketRecord{
		{
			ID:            101,
			Requester:     "João, Silva",
			RequestedAt:   &at,
			Category:      "Rede",
			Priority:      "Alta",
			Status:        "Fechado",
			ElapsedText:   "26:15:00",
			Average:       "12.5",
			ElapsedHours:  26.25,
			ElapsedStatus: domain.DurationOK,
		},
		{
			ID:            102,
			Requester:     "Ana",
			Category:      "Acesso",
			Priority:      "Baixa",
			Status:        "Aberto",
			ElapsedStatus: domain.DurationMissing,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, New(domain.DefaultTicketSchema()).Write(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, domain.DefaultTicketSchema().ExportColumns(), rows[0])
	assert.Equal(t, []string{"101", "João, Silva", "2024-03-05 14:30:00", "Rede", "Alta", "Fechado", "26:15:00", "26.25", "12.5"}, rows[1])
	assert.Equal(t, []string{"102", "Ana", "", "Acesso", "Baixa", "Aberto", "", "0.00", ""}, rows[2])
}

func TestExporter_OptionalColumnsFollowSchema(t *testing.T) {
	schema := domain.DefaultTicketSchema()
	schema.Columns.ElapsedText = ""
	schema.Columns.Average = ""

	exporter := New(schema)
	assert.Equal(t, schema.ExportColumns(), exporter.Headers())

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, []domain.TicketRecord{{ID: 7}}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "", "", "", "", "", ""}, rows[1])
}

func TestExporter_EmptyWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(domain.DefaultTicketSchema()).Write(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
