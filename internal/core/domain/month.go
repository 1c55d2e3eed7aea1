package domain

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownMonthRank is the rank given to month names outside the calendar
// table. Unknown names sort after Dezembro, keeping their input order.
const UnknownMonthRank = 12

// monthNames is the fixed calendar order used by the indicator sheets.
var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var monthRanks = func() map[string]int {
	ranks := make(map[string]int, len(monthNames))
	for i, name := range monthNames {
		ranks[foldMonthName(name)] = i
	}
	return ranks
}()

// MonthRank returns the calendar rank (Janeiro=0 … Dezembro=11) of a month
// name. Matching ignores case, surrounding space and accents.
func MonthRank(name string) (int, bool) {
	rank, ok := monthRanks[foldMonthName(name)]
	return rank, ok
}

// OrderKey returns the sort rank of a month name, UnknownMonthRank when the
// name is not in the calendar table.
func OrderKey(name string) int {
	if rank, ok := MonthRank(name); ok {
		return rank
	}
	return UnknownMonthRank
}

// MonthName returns the Portuguese calendar name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// SortByMonth returns a copy of items ordered by the month name extracted with
// nameFn. The sort is stable, so equal ranks (including every unknown name)
// keep their relative input order.
func SortByMonth[T any](items []T, nameFn func(T) string) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return OrderKey(nameFn(a)) - OrderKey(nameFn(b))
	})
	return sorted
}

// SortMonthNames orders month names chronologically.
func SortMonthNames(names []string) []string {
	return SortByMonth(names, func(s string) string { return s })
}

func foldMonthName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToLower(folded)
}
