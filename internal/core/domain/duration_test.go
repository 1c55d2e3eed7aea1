package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDuration(t *testing.T) {
	clock := domain.TimeOfDay{Hour: 1, Minute: 15}
	span := 90 * time.Minute
	text := "3:00:00"
	var nilText *string

	tests := []struct {
		name       string
		raw        any
		wantHours  float64
		wantStatus domain.DurationStatus
	}{
		// Text
		{"H:M:S text", "2:30:00", 2.5, domain.DurationOK},
		{"hours past a day", "26:00:00", 26, domain.DurationOK},
		{"fractional seconds", "0:00:36.0", 0.01, domain.DurationOK},
		{"fractional hours", "1.5:0:0", 1.5, domain.DurationOK},
		{"surrounding space", "  1:00:00 ", 1, domain.DurationOK},
		{"days prefix", "1 day, 2:00:00", 26, domain.DurationOK},
		{"plural days prefix", "2 days 0:30:00", 48.5, domain.DurationOK},
		{"unbounded minutes", "30:90:00", 31.5, domain.DurationOK},
		{"bytes", []byte("0:30:00"), 0.5, domain.DurationOK},
		{"text pointer", &text, 3, domain.DurationOK},

		// Spans and clocks
		{"time.Duration", span, 1.5, domain.DurationOK},
		{"duration pointer", &span, 1.5, domain.DurationOK},
		{"zero duration", time.Duration(0), 0, domain.DurationOK},
		{"time of day", clock, 1.25, domain.DurationOK},
		{"time of day pointer", &clock, 1.25, domain.DurationOK},
		{"time.Time clock part", time.Date(1899, 12, 30, 4, 30, 0, 0, time.UTC), 4.5, domain.DurationOK},

		// Missing
		{"nil", nil, 0, domain.DurationMissing},
		{"empty string", "", 0, domain.DurationMissing},
		{"blank string", "   ", 0, domain.DurationMissing},
		{"nil text pointer", nilText, 0, domain.DurationMissing},
		{"zero time", time.Time{}, 0, domain.DurationMissing},

		// Invalid
		{"garbage", "garbage", 0, domain.DurationInvalid},
		{"two parts", "2:30", 0, domain.DurationInvalid},
		{"negative text", "-1:00:00", 0, domain.DurationInvalid},
		{"negative span", -time.Hour, 0, domain.DurationInvalid},
		{"clock out of range", domain.TimeOfDay{Hour: 25}, 0, domain.DurationInvalid},
		{"float", 2.5, 0, domain.DurationInvalid},
		{"int", 3, 0, domain.DurationInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NormalizeDuration(tt.raw)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.InDelta(t, tt.wantHours, got.Hours, 1e-9)
			assert.GreaterOrEqual(t, got.Hours, 0.0)
			assert.Equal(t, tt.wantStatus == domain.DurationOK, got.OK())
		})
	}
}

func TestDurationHours(t *testing.T) {
	assert.Equal(t, 2.5, domain.DurationHours("2:30:00"))
	assert.Equal(t, 0.0, domain.DurationHours(nil))
	assert.Equal(t, 0.0, domain.DurationHours("garbage"))
}

func TestParseClockDuration(t *testing.T) {
	hours, ok := domain.ParseClockDuration("10:06:00")
	assert.True(t, ok)
	assert.InDelta(t, 10.1, hours, 1e-9)

	_, ok = domain.ParseClockDuration("10h06")
	assert.False(t, ok)
}
