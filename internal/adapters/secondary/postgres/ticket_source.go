package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
)

// TicketSource is the secondary adapter reading one dataset of the tickets
// table. Each elapsed shape lives in its own column.
type TicketSource struct {
	pool    *pgxpool.Pool
	tm      *TransactionManager
	dataset string
}

// Ensure TicketSource implements the ports.TicketSource interface.
var _ ports.TicketSource = (*TicketSource)(nil)

// NewTicketSource creates a new ticket source for dataset.
func NewTicketSource(pool *pgxpool.Pool, dataset string) *TicketSource {
	return &TicketSource{
		pool:    pool,
		tm:      NewTransactionManager(pool),
		dataset: dataset,
	}
}

func (s *TicketSource) Dataset() string { return s.dataset }

// Ping checks the database connection.
func (s *TicketSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const loadTicketsQuery = `
SELECT id, requester, requested_at, category, priority, status,
       elapsed_text, elapsed_interval, elapsed_clock, elapsed_display, average
FROM tickets
WHERE dataset = $1
ORDER BY id
`

// LoadTickets reads every ticket of the dataset.
func (s *TicketSource) LoadTickets(ctx context.Context) ([]domain.TicketRecord, error) {
	var records []domain.TicketRecord

	err := s.tm.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, loadTicketsQuery, s.dataset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				rec         domain.TicketRecord
				requestedAt pgtype.Timestamptz
				text        pgtype.Text
				interval    pgtype.Interval
				clock       pgtype.Time
			)
			if err := rows.Scan(
				&rec.ID, &rec.Requester, &requestedAt, &rec.Category, &rec.Priority, &rec.Status,
				&text, &interval, &clock, &rec.ElapsedText, &rec.Average,
			); err != nil {
				return err
			}

			if requestedAt.Valid {
				at := requestedAt.Time
				rec.RequestedAt = &at
			}
			rec.ElapsedRaw = elapsedFromColumns(text, interval, clock)
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load tickets for %q: %w", s.dataset, err)
	}
	return records, nil
}

// ImportTickets replaces the dataset with records in one transaction and
// returns the number of rows written.
func (s *TicketSource) ImportTickets(ctx context.Context, records []domain.TicketRecord) (int64, error) {
	var copied int64

	err := s.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tickets WHERE dataset = $1`, s.dataset); err != nil {
			return err
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"tickets"},
			[]string{
				"dataset", "id", "requester", "requested_at", "category", "priority", "status",
				"elapsed_text", "elapsed_interval", "elapsed_clock", "elapsed_display", "average",
			},
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				rec := records[i]
				text, interval, clock := elapsedToColumns(rec.ElapsedRaw)
				return []any{
					s.dataset, rec.ID, rec.Requester, timestamptz(rec.RequestedAt), rec.Category, rec.Priority, rec.Status,
					text, interval, clock, rec.ElapsedText, rec.Average,
				}, nil
			}),
		)
		copied = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("import tickets into %q: %w", s.dataset, err)
	}
	return copied, nil
}

// elapsedFromColumns picks the populated elapsed column. Months in an
// interval count as 30 days.
func elapsedFromColumns(text pgtype.Text, interval pgtype.Interval, clock pgtype.Time) any {
	switch {
	case interval.Valid:
		return time.Duration(interval.Microseconds)*time.Microsecond +
			time.Duration(interval.Days)*24*time.Hour +
			time.Duration(interval.Months)*30*24*time.Hour
	case clock.Valid:
		us := clock.Microseconds
		return domain.TimeOfDay{
			Hour:       int(us / 3_600_000_000),
			Minute:     int(us / 60_000_000 % 60),
			Second:     int(us / 1_000_000 % 60),
			Nanosecond: int(us%1_000_000) * 1000,
		}
	case text.Valid:
		return text.String
	default:
		return nil
	}
}

// elapsedToColumns is the inverse of elapsedFromColumns for the raw shapes a
// loader produces. Unknown shapes are stored as NULL.
func elapsedToColumns(raw any) (pgtype.Text, pgtype.Interval, pgtype.Time) {
	var (
		text     pgtype.Text
		interval pgtype.Interval
		clock    pgtype.Time
	)
	switch v := raw.(type) {
	case string:
		text = pgtype.Text{String: v, Valid: true}
	case time.Duration:
		interval = pgtype.Interval{Microseconds: v.Microseconds(), Valid: true}
	case domain.TimeOfDay:
		if v.Valid() {
			us := int64(v.Hour)*3_600_000_000 + int64(v.Minute)*60_000_000 + int64(v.Second)*1_000_000 + int64(v.Nanosecond/1000)
			clock = pgtype.Time{Microseconds: us, Valid: true}
		}
	}
	return text, interval, clock
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil || t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
