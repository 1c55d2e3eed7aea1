package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TicketColumns maps each ticket field to its header in the source sheet.
// ElapsedText and Average are optional display columns.
type TicketColumns struct {
	ID          string `yaml:"id" toml:"id"`
	Requester   string `yaml:"requester" toml:"requester"`
	RequestedAt string `yaml:"requested_at" toml:"requested_at"`
	Category    string `yaml:"category" toml:"category"`
	Priority    string `yaml:"priority" toml:"priority"`
	Status      string `yaml:"status" toml:"status"`
	Elapsed     string `yaml:"elapsed" toml:"elapsed"`
	ElapsedText string `yaml:"elapsed_text" toml:"elapsed_text"`
	Average     string `yaml:"average" toml:"average"`
}

// ElapsedUnit is the unit of a plain numeric elapsed cell.
type ElapsedUnit string

const (
	UnitHours ElapsedUnit = "hours"
	// UnitDays reads numbers as spreadsheet day fractions (0.5 = 12h).
	UnitDays ElapsedUnit = "days"
)

// Span converts a numeric elapsed value into a time span.
func (u ElapsedUnit) Span(v float64) time.Duration {
	if u == UnitDays {
		v *= 24
	}
	return time.Duration(v * float64(time.Hour))
}

// TicketSchema tells a loader where the ticket table lives and what its
// columns are called. HeaderRow is 1-based.
type TicketSchema struct {
	Sheet       string        `yaml:"sheet" toml:"sheet"`
	HeaderRow   int           `yaml:"header_row" toml:"header_row"`
	ElapsedUnit ElapsedUnit   `yaml:"elapsed_unit" toml:"elapsed_unit"`
	Columns     TicketColumns `yaml:"columns" toml:"columns"`
}

// DefaultTicketSchema returns the layout of the SLA export: first sheet,
// header on the first row, Portuguese column names.
func DefaultTicketSchema() TicketSchema {
	return TicketSchema{
		HeaderRow:   1,
		ElapsedUnit: UnitHours,
		Columns: TicketColumns{
			ID:          "ID",
			Requester:   "Solicitante",
			RequestedAt: "Solicitado em",
			Category:    "Categoria",
			Priority:    "Prioridade",
			Status:      "Status",
			Elapsed:     "Tempo decorrido números",
			ElapsedText: "Tempo decorrido",
			Average:     "MÉDIA",
		},
	}
}

// Required lists the columns a sheet must contain, in display order.
func (s TicketSchema) Required() []string {
	c := s.Columns
	return []string{c.ID, c.Requester, c.RequestedAt, c.Category, c.Priority, c.Status, c.Elapsed}
}

// ExportColumns is the displayed column set, in order. Optional columns are
// included only when the schema names them.
func (s TicketSchema) ExportColumns() []string {
	c := s.Columns
	cols := []string{c.ID, c.Requester, c.RequestedAt, c.Category, c.Priority, c.Status}
	if c.ElapsedText != "" {
		cols = append(cols, c.ElapsedText)
	}
	cols = append(cols, c.Elapsed)
	if c.Average != "" {
		cols = append(cols, c.Average)
	}
	return cols
}

// Validate checks the schema is usable by a loader.
func (s TicketSchema) Validate() error {
	var errs []error
	if s.HeaderRow < 1 {
		errs = append(errs, fmt.Errorf("header_row must be at least 1, got %d", s.HeaderRow))
	}
	if s.ElapsedUnit != UnitHours && s.ElapsedUnit != UnitDays {
		errs = append(errs, fmt.Errorf("elapsed_unit must be %q or %q, got %q", UnitHours, UnitDays, s.ElapsedUnit))
	}
	c := s.Columns
	named := map[string]string{
		"id": c.ID, "requester": c.Requester, "requested_at": c.RequestedAt,
		"category": c.Category, "priority": c.Priority, "status": c.Status, "elapsed": c.Elapsed,
	}
	for _, key := range []string{"id", "requester", "requested_at", "category", "priority", "status", "elapsed"} {
		if strings.TrimSpace(named[key]) == "" {
			errs = append(errs, fmt.Errorf("column %q is required", key))
		}
	}
	return errors.Join(errs...)
}

// IndicatorSheet describes one pre-aggregated breakdown sheet.
// An empty LabelColumn means the first column; empty ValueColumns means every
// other column.
type IndicatorSheet struct {
	Name         string        `yaml:"name" toml:"name"`
	Sheet        string        `yaml:"sheet" toml:"sheet"`
	Title        string        `yaml:"title" toml:"title"`
	Kind         IndicatorKind `yaml:"kind" toml:"kind"`
	HeaderRow    int           `yaml:"header_row" toml:"header_row"`
	LabelColumn  string        `yaml:"label_column" toml:"label_column"`
	ValueColumns []string      `yaml:"value_columns" toml:"value_columns"`
}

// IndicatorSchema lists the indicator sheets and the labels of their total
// rows, which are dropped before charting.
type IndicatorSchema struct {
	Sheets      []IndicatorSheet `yaml:"sheets" toml:"sheets"`
	TotalLabels []string         `yaml:"total_labels" toml:"total_labels"`
	ShareColumn string           `yaml:"share_column" toml:"share_column"`
}

// DefaultIndicatorSchema returns the layout of the indicator workbook: four
// sheets whose header sits on the second row.
func DefaultIndicatorSchema() IndicatorSchema {
	return IndicatorSchema{
		Sheets: []IndicatorSheet{
			{Name: "by-category", Sheet: "Planilha1", Title: "Chamados por Categoria", Kind: IndicatorByCategory, HeaderRow: 2, LabelColumn: "Categoria"},
			{Name: "by-status", Sheet: "Planilha2", Title: "Chamados por Status", Kind: IndicatorByStatus, HeaderRow: 2, LabelColumn: "Status"},
			{Name: "by-month-2023", Sheet: "Planilha3", Title: "Chamados por Mês (2023)", Kind: IndicatorByMonth, HeaderRow: 2, LabelColumn: "Mês"},
			{Name: "by-month-2024", Sheet: "Planilha4", Title: "Chamados por Mês (2024)", Kind: IndicatorByMonth, HeaderRow: 2, LabelColumn: "Mês"},
		},
		TotalLabels: []string{"Todas as categorias", "Todos os status", "Total", "Todos os meses"},
		ShareColumn: "Total",
	}
}

// Sheet returns the sheet registered under name.
func (s IndicatorSchema) Sheet(name string) (IndicatorSheet, bool) {
	for _, sh := range s.Sheets {
		if sh.Name == name {
			return sh, true
		}
	}
	return IndicatorSheet{}, false
}

// Validate checks every sheet has a unique name, a sheet reference and a
// known kind.
func (s IndicatorSchema) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(s.Sheets))
	for i, sh := range s.Sheets {
		if sh.Name == "" {
			errs = append(errs, fmt.Errorf("sheets[%d]: name is required", i))
		} else if _, dup := seen[sh.Name]; dup {
			errs = append(errs, fmt.Errorf("sheets[%d]: duplicate name %q", i, sh.Name))
		}
		seen[sh.Name] = struct{}{}
		if sh.Sheet == "" {
			errs = append(errs, fmt.Errorf("sheets[%d]: sheet is required", i))
		}
		if !sh.Kind.IsValid() {
			errs = append(errs, fmt.Errorf("sheets[%d]: unknown kind %q", i, sh.Kind))
		}
		if sh.HeaderRow < 1 {
			errs = append(errs, fmt.Errorf("sheets[%d]: header_row must be at least 1", i))
		}
	}
	return errors.Join(errs...)
}
