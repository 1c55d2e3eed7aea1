// Package csvexport writes ticket records as comma separated UTF-8 text using
// the displayed column set of a ticket schema.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

// Filename is the name offered for downloads of the filtered records.
const Filename = "dados_sla.csv"

// TimestampLayout formats the request timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

type column struct {
	header string
	value  func(domain.TicketRecord) string
}

// Exporter writes records with the headers named by a schema.
type Exporter struct {
	columns []column
}

// New builds an exporter for schema's displayed columns, in the same order as
// schema.ExportColumns.
func New(schema domain.TicketSchema) *Exporter {
	c := schema.Columns
	cols := []column{
		{c.ID, func(r domain.TicketRecord) string { return strconv.FormatInt(r.ID, 10) }},
		{c.Requester, func(r domain.TicketRecord) string { return r.Requester }},
		{c.RequestedAt, formatRequestedAt},
		{c.Category, func(r domain.TicketRecord) string { return r.Category }},
		{c.Priority, func(r domain.TicketRecord) string { return r.Priority }},
		{c.Status, func(r domain.TicketRecord) string { return r.Status }},
	}
	if c.ElapsedText != "" {
		cols = append(cols, column{c.ElapsedText, func(r domain.TicketRecord) string { return r.ElapsedText }})
	}
	cols = append(cols, column{c.Elapsed, formatHours})
	if c.Average != "" {
		cols = append(cols, column{c.Average, func(r domain.TicketRecord) string { return r.Average }})
	}
	return &Exporter{columns: cols}
}

// Headers returns the header row.
func (e *Exporter) Headers() []string {
	headers := make([]string, len(e.columns))
	for i, col := range e.columns {
		headers[i] = col.header
	}
	return headers
}

// Write emits the header row followed by one row per record, in input order.
func (e *Exporter) Write(w io.Writer, records []domain.TicketRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(e.Headers()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(e.columns))
	for i, rec := range records {
		for j, col := range e.columns {
			row[j] = col.value(rec)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatRequestedAt(r domain.TicketRecord) string {
	if !r.HasRequestedAt() {
		return ""
	}
	return r.RequestedAt.Format(TimestampLayout)
}

// formatHours prints normalized hours with two decimals; records that were
// never normalized have no hours to show.
func formatHours(r domain.TicketRecord) string {
	if !r.Normalized() {
		return ""
	}
	return strconv.FormatFloat(r.ElapsedHours, 'f', 2, 64)
}
