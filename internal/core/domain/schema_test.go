package domain_test

import (
	"testing"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTicketSchema(t *testing.T) {
	s := domain.DefaultTicketSchema()

	assert.NoError(t, s.Validate())
	assert.Equal(t, []string{
		"ID", "Solicitante", "Solicitado em", "Categoria", "Prioridade", "Status",
		"Tempo decorrido", "Tempo decorrido números", "MÉDIA",
	}, s.ExportColumns())
}

func TestTicketSchema_Validate(t *testing.T) {
	s := domain.DefaultTicketSchema()
	s.HeaderRow = 0
	s.Columns.Category = " "

	err := s.Validate()

	assert.ErrorContains(t, err, "header_row")
	assert.ErrorContains(t, err, `"category"`)
}

func TestTicketSchema_ExportColumnsWithoutOptional(t *testing.T) {
	s := domain.DefaultTicketSchema()
	s.Columns.ElapsedText = ""
	s.Columns.Average = ""

	assert.Equal(t, []string{
		"ID", "Solicitante", "Solicitado em", "Categoria", "Prioridade", "Status", "Tempo decorrido números",
	}, s.ExportColumns())
}

func TestIndicatorSchema_Validate(t *testing.T) {
	assert.NoError(t, domain.DefaultIndicatorSchema().Validate())

	s := domain.IndicatorSchema{Sheets: []domain.IndicatorSheet{
		{Name: "a", Sheet: "S1", Kind: domain.IndicatorByMonth, HeaderRow: 1},
		{Name: "a", Sheet: "", Kind: "weekly", HeaderRow: 1},
	}}
	err := s.Validate()
	assert.ErrorContains(t, err, "duplicate name")
	assert.ErrorContains(t, err, "sheet is required")
	assert.ErrorContains(t, err, "unknown kind")

	sheet, ok := domain.DefaultIndicatorSchema().Sheet("by-status")
	assert.True(t, ok)
	assert.Equal(t, "Planilha2", sheet.Sheet)
}

func TestParseMeanScope(t *testing.T) {
	s, err := domain.ParseMeanScope("")
	assert.NoError(t, err)
	assert.Equal(t, domain.MeanScopeFiltered, s)

	s, err = domain.ParseMeanScope("Dataset")
	assert.NoError(t, err)
	assert.Equal(t, domain.MeanScopeDataset, s)

	_, err = domain.ParseMeanScope("global")
	assert.Error(t, err)
}
