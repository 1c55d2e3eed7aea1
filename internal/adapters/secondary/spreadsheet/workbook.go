package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
)

// grid is one sheet's cells. display holds the values as the spreadsheet
// shows them, raw the stored values (serial numbers for dates and times).
type grid struct {
	display [][]string
	raw     [][]string
}

func (g grid) cell(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return ""
	}
	return strings.TrimSpace(rows[row][col])
}

// Display returns the formatted text of a cell, "" when out of range.
func (g grid) Display(row, col int) string { return g.cell(g.display, row, col) }

// Raw returns the stored value of a cell, "" when out of range.
func (g grid) Raw(row, col int) string { return g.cell(g.raw, row, col) }

// Len is the number of rows in the sheet.
func (g grid) Len() int { return len(g.display) }

// workbook is the subset of a spreadsheet file the loaders need.
type workbook interface {
	// Sheet returns the named sheet, or the first sheet when name is empty.
	Sheet(name string) (grid, error)
	Close() error
}

// openWorkbook picks a reader by file extension.
func openWorkbook(r io.Reader, filename string) (workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xls":
		wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrUnsupportedFormat, filename, err)
		}
		return &xlsWorkbook{wb: wb}, nil
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrUnsupportedFormat, filename, err)
		}
		return &xlsxWorkbook{f: f}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, ext)
	}
}

type xlsxWorkbook struct {
	f *excelize.File
}

func (w *xlsxWorkbook) Sheet(name string) (grid, error) {
	if name == "" {
		name = w.f.GetSheetName(0)
		if name == "" {
			return grid{}, fmt.Errorf("%w: no worksheet found", apperrors.ErrSchemaMismatch)
		}
	}
	if idx, err := w.f.GetSheetIndex(name); err != nil || idx < 0 {
		return grid{}, fmt.Errorf("%w: sheet %q not found", apperrors.ErrSchemaMismatch, name)
	}

	display, err := w.f.GetRows(name)
	if err != nil {
		return grid{}, err
	}
	raw, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return grid{}, err
	}
	return grid{display: display, raw: raw}, nil
}

func (w *xlsxWorkbook) Close() error {
	return w.f.Close()
}

// xlsWorkbook reads legacy BIFF files. The format keeps no separate display
// text, so display and raw are the same cells.
type xlsWorkbook struct {
	wb *xls.WorkBook
}

func (w *xlsWorkbook) Sheet(name string) (grid, error) {
	for i := 0; i < w.wb.NumSheets(); i++ {
		sheet := w.wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		if name == "" || sheet.Name == name {
			rows := xlsRows(sheet)
			return grid{display: rows, raw: rows}, nil
		}
	}
	if name == "" {
		return grid{}, fmt.Errorf("%w: no worksheet found", apperrors.ErrSchemaMismatch)
	}
	return grid{}, fmt.Errorf("%w: sheet %q not found", apperrors.ErrSchemaMismatch, name)
}

func (w *xlsWorkbook) Close() error { return nil }

func xlsRows(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows
}
