package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
)

// header maps column names to their index in the header row.
type header map[string]int

func readHeader(g grid, row int) header {
	h := make(header)
	if row < 0 || row >= len(g.display) {
		return h
	}
	for col := range g.display[row] {
		name := normalizeHeader(g.Display(row, col))
		if name == "" {
			continue
		}
		if _, dup := h[name]; !dup {
			h[name] = col
		}
	}
	return h
}

// Index returns the column position of name. Lookups ignore case and
// surrounding space; optional columns with an empty name resolve to -1.
func (h header) Index(name string) int {
	if name == "" {
		return -1
	}
	if col, ok := h[normalizeHeader(name)]; ok {
		return col
	}
	return -1
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ticketColumns is the resolved position of every schema column.
type ticketColumns struct {
	id, requester, requestedAt, category, priority, status, elapsed int
	elapsedText, average                                            int
}

func resolveTicketColumns(h header, schema domain.TicketSchema) (ticketColumns, error) {
	var missing []string
	need := func(name string) int {
		col := h.Index(name)
		if col < 0 {
			missing = append(missing, name)
		}
		return col
	}

	c := schema.Columns
	cols := ticketColumns{
		id:          need(c.ID),
		requester:   need(c.Requester),
		requestedAt: need(c.RequestedAt),
		category:    need(c.Category),
		priority:    need(c.Priority),
		status:      need(c.Status),
		elapsed:     need(c.Elapsed),
		elapsedText: h.Index(c.ElapsedText),
		average:     h.Index(c.Average),
	}
	if len(missing) > 0 {
		return ticketColumns{}, fmt.Errorf("%w: missing columns %s", apperrors.ErrSchemaMismatch, strings.Join(quoteAll(missing), ", "))
	}
	return cols, nil
}

// ReadTickets parses the ticket table of a spreadsheet. The format is chosen
// by the file extension of filename (.xlsx, .xlsm or .xls). Blank rows are
// skipped; a row whose ID cannot be read fails the whole load.
func ReadTickets(r io.Reader, filename string, schema domain.TicketSchema) ([]domain.TicketRecord, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSchemaMismatch, err)
	}

	wb, err := openWorkbook(r, filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()

	g, err := wb.Sheet(schema.Sheet)
	if err != nil {
		return nil, err
	}

	headerRow := schema.HeaderRow - 1
	if headerRow >= g.Len() {
		return nil, fmt.Errorf("%w: worksheet has no header on row %d", apperrors.ErrSchemaMismatch, schema.HeaderRow)
	}
	cols, err := resolveTicketColumns(readHeader(g, headerRow), schema)
	if err != nil {
		return nil, err
	}

	records := make([]domain.TicketRecord, 0, g.Len()-headerRow-1)
	for row := headerRow + 1; row < g.Len(); row++ {
		if blankRow(g, row) {
			continue
		}
		rec, err := readTicket(g, row, cols, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func readTicket(g grid, row int, cols ticketColumns, schema domain.TicketSchema) (domain.TicketRecord, error) {
	idText := g.Raw(row, cols.id)
	id, ok := parseID(idText)
	if !ok {
		return domain.TicketRecord{}, fmt.Errorf("%w: row %d: invalid %s %q", apperrors.ErrMalformedRow, row+1, schema.Columns.ID, idText)
	}

	rec := domain.TicketRecord{
		ID:          id,
		Requester:   g.Display(row, cols.requester),
		Category:    g.Display(row, cols.category),
		Priority:    g.Display(row, cols.priority),
		Status:      g.Display(row, cols.status),
		ElapsedText: g.Display(row, cols.elapsedText),
		Average:     g.Display(row, cols.average),
		ElapsedRaw:  elapsedValue(g.Raw(row, cols.elapsed), g.Display(row, cols.elapsed), schema.ElapsedUnit),
	}
	if ts, ok := parseTimestamp(g.Raw(row, cols.requestedAt)); ok {
		rec.RequestedAt = &ts
	}
	return rec, nil
}

func blankRow(g grid, row int) bool {
	for col := range g.display[row] {
		if g.Display(row, col) != "" {
			return false
		}
	}
	return true
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
