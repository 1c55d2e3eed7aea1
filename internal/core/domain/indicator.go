package domain

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// IndicatorKind tells what the label column of an indicator sheet holds.
type IndicatorKind string

const (
	IndicatorByCategory IndicatorKind = "category"
	IndicatorByStatus   IndicatorKind = "status"
	IndicatorByMonth    IndicatorKind = "month"
)

// IsValid checks if the kind is one of the known kinds.
func (k IndicatorKind) IsValid() bool {
	switch k {
	case IndicatorByCategory, IndicatorByStatus, IndicatorByMonth:
		return true
	default:
		return false
	}
}

// IndicatorTable is a pre-aggregated breakdown sheet: one label column and one
// or more numeric columns (Total, per-status counts, ...).
type IndicatorTable struct {
	Name        string
	Title       string
	Kind        IndicatorKind
	LabelColumn string
	Columns     []string
	Rows        []IndicatorRow
}

// IndicatorRow is one labelled line; Values is aligned with the table Columns.
type IndicatorRow struct {
	Label  string
	Values []float64
}

// IndicatorShare is one row's value in a column and its share of the column
// total, in percent.
type IndicatorShare struct {
	Label string
	Value float64
	Share float64
}

// ColumnIndex returns the position of column, matched case-insensitively.
func (t IndicatorTable) ColumnIndex(column string) (int, bool) {
	idx := slices.IndexFunc(t.Columns, func(c string) bool {
		return strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(column))
	})
	return idx, idx >= 0
}

// DropTotalRows returns a copy of t without the rows whose label is one of
// totalLabels (e.g. "Todas as categorias"). Comparison ignores case and space.
func DropTotalRows(t IndicatorTable, totalLabels []string) IndicatorTable {
	drop := lo.SliceToMap(totalLabels, func(s string) (string, struct{}) {
		return strings.ToLower(strings.TrimSpace(s)), struct{}{}
	})
	out := t
	out.Rows = lo.Reject(t.Rows, func(row IndicatorRow, _ int) bool {
		_, isTotal := drop[strings.ToLower(strings.TrimSpace(row.Label))]
		return isTotal
	})
	return out
}

// OrderIndicatorMonths returns a copy of t with rows in calendar order when the
// table is a monthly breakdown. Other kinds are returned unchanged.
func OrderIndicatorMonths(t IndicatorTable) IndicatorTable {
	if t.Kind != IndicatorByMonth {
		return t
	}
	out := t
	out.Rows = SortByMonth(t.Rows, func(row IndicatorRow) string { return row.Label })
	return out
}

// UnknownMonths lists the labels of a monthly table that are not calendar
// month names; they are sorted last and should be reported to the user.
func UnknownMonths(t IndicatorTable) []string {
	if t.Kind != IndicatorByMonth {
		return nil
	}
	return lo.FilterMap(t.Rows, func(row IndicatorRow, _ int) (string, bool) {
		_, ok := MonthRank(row.Label)
		return row.Label, !ok
	})
}

// IndicatorShares returns every row's value in column and its share of the
// column total. ok is false when the column does not exist.
func IndicatorShares(t IndicatorTable, column string) ([]IndicatorShare, bool) {
	idx, ok := t.ColumnIndex(column)
	if !ok {
		return nil, false
	}

	value := func(row IndicatorRow) float64 {
		if idx < len(row.Values) {
			return row.Values[idx]
		}
		return 0
	}
	total := lo.SumBy(t.Rows, value)

	shares := make([]IndicatorShare, 0, len(t.Rows))
	for _, row := range t.Rows {
		v := value(row)
		share := 0.0
		if total != 0 {
			share = v / total * 100
		}
		shares = append(shares, IndicatorShare{Label: row.Label, Value: v, Share: share})
	}
	return shares, true
}

// IndicatorReport is a cleaned indicator table ready for charting.
type IndicatorReport struct {
	Table         IndicatorTable
	ShareColumn   string
	Shares        []IndicatorShare
	UnknownMonths []string
}
