package validation

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
)

func TestValidator(t *testing.T) {
	v := NewValidator().
		Required("username", " ").
		MaxLength("password", strings.Repeat("x", 80), 72).
		OneOf("meanScope", "global", []string{"filtered", "dataset"}).
		OneOf("other", "", []string{"a"}).
		Custom("thresholdHours", false, "Must not be negative")

	require.True(t, v.HasErrors())
	errs := v.Errors().Errors
	assert.Len(t, errs, 4)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
	assert.Equal(t, []string{"Must be one of: filtered, dataset"}, errs["meanScope"])
	assert.NotContains(t, errs, "other")
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{name: "defaults", query: "", want: PaginationParams{Limit: 25, Offset: 0}},
		{name: "explicit", query: "limit=10&offset=30", want: PaginationParams{Limit: 10, Offset: 30}},
		{name: "capped", query: "limit=5000", want: PaginationParams{Limit: 100, Offset: 0}},
		{name: "garbage falls back", query: "limit=abc&offset=-3", want: PaginationParams{Limit: 25, Offset: 0}},
		{name: "zero limit falls back", query: "limit=0", want: PaginationParams{Limit: 25, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(r, 100))
		})
	}
}

func TestParseFloatParam(t *testing.T) {
	tests := []struct {
		query   string
		want    *float64
		wantErr bool
	}{
		{query: "", want: nil},
		{query: "thresholdHours=48", want: ptr(48)},
		{query: "thresholdHours=12,5", want: ptr(12.5)},
		{query: "thresholdHours=abc", wantErr: true},
		{query: "thresholdHours=NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseFloatParam(values, "thresholdHours")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	t.Run("repeated values and reserved keys", func(t *testing.T) {
		query, err := url.ParseQuery("category=Rede&category=Acesso&category=&Status=Fechado&thresholdHours=24&_=1700000000")
		require.NoError(t, err)

		f, err := ParseFilter(query, "thresholdHours", "meanScope")
		require.NoError(t, err)

		assert.Equal(t, map[domain.FilterField][]string{
			domain.FieldCategory: {"Acesso", "Rede"},
			domain.FieldStatus:   {"Fechado"},
		}, f.Selections())
	})

	t.Run("empty query accepts everything", func(t *testing.T) {
		f, err := ParseFilter(url.Values{})
		require.NoError(t, err)
		assert.True(t, f.IsEmpty())
	})

	t.Run("unknown field", func(t *testing.T) {
		query := url.Values{"requester": {"Ana"}}
		_, err := ParseFilter(query)
		assert.ErrorIs(t, err, apperrors.ErrUnknownFilterField)
	})
}

func ptr(v float64) *float64 { return &v }
