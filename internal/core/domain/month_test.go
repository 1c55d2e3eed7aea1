package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestMonthRank(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRank int
		wantOK   bool
	}{
		{"first month", "Janeiro", 0, true},
		{"last month", "Dezembro", 11, true},
		{"accented", "Março", 2, true},
		{"accent dropped", "Marco", 2, true},
		{"lowercase", "outubro", 9, true},
		{"padded", "  Maio ", 4, true},
		{"total row", "Todos os meses", 0, false},
		{"english", "January", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rank, ok := domain.MonthRank(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantRank, rank)
			}
		})
	}
}

func TestOrderKey_UnknownSortsLast(t *testing.T) {
	assert.Equal(t, domain.UnknownMonthRank, domain.OrderKey("Smarch"))
	assert.Greater(t, domain.OrderKey("Smarch"), domain.OrderKey("Dezembro"))
}

func TestSortMonthNames(t *testing.T) {
	t.Run("calendar order", func(t *testing.T) {
		input := []string{"Março", "Janeiro", "Dezembro"}

		got := domain.SortMonthNames(input)

		assert.Equal(t, []string{"Janeiro", "Março", "Dezembro"}, got)
		assert.Equal(t, []string{"Março", "Janeiro", "Dezembro"}, input, "input must not be reordered")
	})

	t.Run("unknown names go last in input order", func(t *testing.T) {
		got := domain.SortMonthNames([]string{"Zeta", "Abril", "Alfa", "Fevereiro"})
		assert.Equal(t, []string{"Fevereiro", "Abril", "Zeta", "Alfa"}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, domain.SortMonthNames(nil))
	})
}

func TestSortByMonth_Stable(t *testing.T) {
	type row struct {
		month string
		id    int
	}
	rows := []row{{"Maio", 1}, {"Janeiro", 2}, {"maio", 3}, {"Janeiro", 4}}

	got := domain.SortByMonth(rows, func(r row) string { return r.month })

	assert.Equal(t, []row{{"Janeiro", 2}, {"Janeiro", 4}, {"Maio", 1}, {"maio", 3}}, got)
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Janeiro", domain.MonthName(time.January))
	assert.Equal(t, "Dezembro", domain.MonthName(time.December))
	assert.Equal(t, "", domain.MonthName(time.Month(13)))
}
