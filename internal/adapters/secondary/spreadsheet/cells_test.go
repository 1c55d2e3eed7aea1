package spreadsheet

import (
	"testing"
	"time"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{"42.0", 42, true},
		{"42.5", 0, false},
		{"", 0, false},
		{"#42", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Run("excel serial", func(t *testing.T) {
		got, ok := parseTimestamp("45296.5")
		assert.True(t, ok)
		assert.Equal(t, time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC), got)
	})

	t.Run("brazilian date", func(t *testing.T) {
		got, ok := parseTimestamp("20/12/2024 08:15")
		assert.True(t, ok)
		assert.Equal(t, time.Date(2024, time.December, 20, 8, 15, 0, 0, time.UTC), got)
	})

	t.Run("unreadable", func(t *testing.T) {
		_, ok := parseTimestamp("ontem")
		assert.False(t, ok)
		_, ok = parseTimestamp("")
		assert.False(t, ok)
		_, ok = parseTimestamp("-3")
		assert.False(t, ok)
	})
}

func TestElapsedValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		display string
		unit    domain.ElapsedUnit
		want    any
	}{
		{name: "blank", raw: "", display: "", unit: domain.UnitHours, want: nil},
		{name: "clock text", raw: "2:30:00", display: "2:30:00", unit: domain.UnitHours, want: "2:30:00"},
		{name: "hours", raw: "1.5", display: "1.5", unit: domain.UnitHours, want: 90 * time.Minute},
		{name: "decimal comma", raw: "1,5", display: "1,5", unit: domain.UnitHours, want: 90 * time.Minute},
		{name: "days", raw: "1.5", display: "1.5", unit: domain.UnitDays, want: 36 * time.Hour},
		{name: "rounded display keeps stored hours", raw: "24.4", display: "24", unit: domain.UnitHours, want: time.Duration(24.4 * float64(time.Hour))},
		{name: "time format past a day", raw: "1.5", display: "12:00:00", unit: domain.UnitHours, want: 36 * time.Hour},
		{name: "clock format", raw: "0.5", display: "12:00 PM", unit: domain.UnitHours, want: 12 * time.Hour},
		{name: "text", raw: "n/a", display: "n/a", unit: domain.UnitHours, want: "n/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, elapsedValue(tt.raw, tt.display, tt.unit))
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 12.0, parseNumber("12"))
	assert.Equal(t, 0.0, parseNumber(""))
	assert.Equal(t, 0.0, parseNumber("-"))
}
