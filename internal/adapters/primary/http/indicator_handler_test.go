package http

import (
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/core/mocks"
)

func newIndicatorRouter(svc *mocks.MockIndicatorService) chi.Router {
	handler := NewIndicatorHandler(svc, NewErrorHandler(testLogger()), testLogger())
	r := chi.NewRouter()
	r.Route("/api/v1/indicators", handler.RegisterRoutes)
	return r
}

func categoryReport() *domain.IndicatorReport {
	return &domain.IndicatorReport{
		Table: domain.IndicatorTable{
			Name:        "by-category",
			Title:       "Chamados por categoria",
			Kind:        domain.IndicatorByCategory,
			LabelColumn: "Categoria",
			Columns:     []string{"Total"},
			Rows: []domain.IndicatorRow{
				{Label: "Rede", Values: []float64{30}},
				{Label: "Acesso", Values: []float64{10}},
			},
		},
		ShareColumn: "Total",
		Shares: []domain.IndicatorShare{
			{Label: "Rede", Value: 30, Share: 75},
			{Label: "Acesso", Value: 10, Share: 25},
		},
	}
}

func TestIndicatorHandler_HandleList(t *testing.T) {
	svc := mocks.NewMockIndicatorService()
	svc.On("List", mock.Anything).Return([]*domain.IndicatorReport{categoryReport()}, nil)

	rr := serve(newIndicatorRouter(svc), httptest.NewRequest(stdhttp.MethodGet, "/api/v1/indicators/", nil))

	require.Equal(t, stdhttp.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.EqualValues(t, 1, body["count"])

	report := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "by-category", report["name"])
	assert.Equal(t, "category", report["kind"])
	shares := report["shares"].([]any)
	require.Len(t, shares, 2)
	assert.EqualValues(t, 75, shares[0].(map[string]any)["sharePercent"])
}

func TestIndicatorHandler_HandleGet(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(svc *mocks.MockIndicatorService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "found",
			setup: func(svc *mocks.MockIndicatorService) {
				svc.On("Get", mock.Anything, "by-category").Return(categoryReport(), nil)
			},
			wantStatus: stdhttp.StatusOK,
		},
		{
			name: "unknown name",
			setup: func(svc *mocks.MockIndicatorService) {
				svc.On("Get", mock.Anything, "by-category").
					Return(nil, fmt.Errorf("%w: %q", apperrors.ErrIndicatorNotFound, "by-category"))
			},
			wantStatus: stdhttp.StatusNotFound,
			wantCode:   "INDICATOR_NOT_FOUND",
		},
		{
			name: "workbook unreadable",
			setup: func(svc *mocks.MockIndicatorService) {
				svc.On("Get", mock.Anything, "by-category").Return(nil, apperrors.ErrDatasetUnavailable)
			},
			wantStatus: stdhttp.StatusServiceUnavailable,
			wantCode:   "DATASET_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockIndicatorService()
			tt.setup(svc)

			rr := serve(newIndicatorRouter(svc), httptest.NewRequest(stdhttp.MethodGet, "/api/v1/indicators/by-category", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeBody(t, rr)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
			} else {
				assert.Equal(t, "Chamados por categoria", body["data"].(map[string]any)["title"])
			}
			svc.AssertExpectations(t)
		})
	}
}
