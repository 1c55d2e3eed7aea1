package spreadsheet

import (
	"fmt"
	"io"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
)

// ReadIndicators parses every sheet listed in schema, in schema order.
func ReadIndicators(r io.Reader, filename string, schema domain.IndicatorSchema) ([]domain.IndicatorTable, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSchemaMismatch, err)
	}

	wb, err := openWorkbook(r, filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()

	tables := make([]domain.IndicatorTable, 0, len(schema.Sheets))
	for _, sheet := range schema.Sheets {
		g, err := wb.Sheet(sheet.Sheet)
		if err != nil {
			return nil, err
		}
		table, err := readIndicatorTable(g, sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet.Sheet, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func readIndicatorTable(g grid, sheet domain.IndicatorSheet) (domain.IndicatorTable, error) {
	headerRow := sheet.HeaderRow - 1
	if headerRow >= g.Len() {
		return domain.IndicatorTable{}, fmt.Errorf("%w: no header on row %d", apperrors.ErrSchemaMismatch, sheet.HeaderRow)
	}
	h := readHeader(g, headerRow)

	labelCol := 0
	labelName := g.Display(headerRow, 0)
	if sheet.LabelColumn != "" {
		labelCol = h.Index(sheet.LabelColumn)
		if labelCol < 0 {
			return domain.IndicatorTable{}, fmt.Errorf("%w: missing label column %q", apperrors.ErrSchemaMismatch, sheet.LabelColumn)
		}
		labelName = sheet.LabelColumn
	}

	names, positions, err := valueColumns(g, headerRow, h, labelCol, sheet.ValueColumns)
	if err != nil {
		return domain.IndicatorTable{}, err
	}

	table := domain.IndicatorTable{
		Name:        sheet.Name,
		Title:       sheet.Title,
		Kind:        sheet.Kind,
		LabelColumn: labelName,
		Columns:     names,
	}
	for row := headerRow + 1; row < g.Len(); row++ {
		label := g.Display(row, labelCol)
		if label == "" {
			continue
		}
		values := make([]float64, len(positions))
		for i, col := range positions {
			values[i] = parseNumber(g.Raw(row, col))
		}
		table.Rows = append(table.Rows, domain.IndicatorRow{Label: label, Values: values})
	}
	return table, nil
}

// valueColumns resolves the numeric columns of a sheet: the requested ones,
// or every named column except the label.
func valueColumns(g grid, headerRow int, h header, labelCol int, requested []string) ([]string, []int, error) {
	if len(requested) > 0 {
		positions := make([]int, len(requested))
		for i, name := range requested {
			col := h.Index(name)
			if col < 0 {
				return nil, nil, fmt.Errorf("%w: missing column %q", apperrors.ErrSchemaMismatch, name)
			}
			positions[i] = col
		}
		return requested, positions, nil
	}

	var names []string
	var positions []int
	for col := range g.display[headerRow] {
		name := g.Display(headerRow, col)
		if col == labelCol || name == "" {
			continue
		}
		names = append(names, name)
		positions = append(positions, col)
	}
	return names, positions, nil
}
