package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/mocks"
	"github.com/lorrc/ticket-metrics/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indicatorTables() []domain.IndicatorTable {
	return []domain.IndicatorTable{
		{
			Name:    "by-category",
			Kind:    domain.IndicatorByCategory,
			Columns: []string{"Total"},
			Rows: []domain.IndicatorRow{
				{Label: "Rede", Values: []float64{30}},
				{Label: "Acesso", Values: []float64{10}},
				{Label: "Todas as categorias", Values: []float64{40}},
			},
		},
		{
			Name:    "by-month-2024",
			Kind:    domain.IndicatorByMonth,
			Columns: []string{"Total"},
			Rows: []domain.IndicatorRow{
				{Label: "Todos os meses", Values: []float64{6}},
				{Label: "Fevereiro", Values: []float64{2}},
				{Label: "Janeiro", Values: []float64{4}},
			},
		},
	}
}

func TestIndicatorService_List(t *testing.T) {
	ctx := context.Background()
	source := mocks.NewMockIndicatorSource()
	source.On("LoadIndicators", ctx).Return(indicatorTables(), nil)

	svc := services.NewIndicatorService(source, domain.DefaultIndicatorSchema(), nil)

	reports, err := svc.List(ctx)

	require.NoError(t, err)
	require.Len(t, reports, 2)

	byCategory := reports[0]
	require.Len(t, byCategory.Table.Rows, 2)
	assert.Equal(t, "Total", byCategory.ShareColumn)
	assert.InDelta(t, 75.0, byCategory.Shares[0].Share, 1e-9)

	byMonth := reports[1]
	require.Len(t, byMonth.Table.Rows, 2)
	assert.Equal(t, "Janeiro", byMonth.Table.Rows[0].Label)
	assert.Equal(t, "Fevereiro", byMonth.Table.Rows[1].Label)
	assert.Empty(t, byMonth.UnknownMonths)
}

func TestIndicatorService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		source := mocks.NewMockIndicatorSource()
		source.On("LoadIndicators", ctx).Return(indicatorTables(), nil)
		svc := services.NewIndicatorService(source, domain.DefaultIndicatorSchema(), nil)

		report, err := svc.Get(ctx, "by-month-2024")

		require.NoError(t, err)
		assert.Equal(t, "by-month-2024", report.Table.Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		source := mocks.NewMockIndicatorSource()
		source.On("LoadIndicators", ctx).Return(indicatorTables(), nil)
		svc := services.NewIndicatorService(source, domain.DefaultIndicatorSchema(), nil)

		report, err := svc.Get(ctx, "by-week")

		assert.Nil(t, report)
		assert.ErrorIs(t, err, apperrors.ErrIndicatorNotFound)
	})

	t.Run("load failure", func(t *testing.T) {
		source := mocks.NewMockIndicatorSource()
		source.On("LoadIndicators", ctx).Return(nil, errors.New("sheet Planilha3 not found"))
		svc := services.NewIndicatorService(source, domain.DefaultIndicatorSchema(), nil)

		_, err := svc.Get(ctx, "by-category")

		assert.ErrorIs(t, err, apperrors.ErrDatasetUnavailable)
	})
}
