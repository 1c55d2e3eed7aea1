package domain

import (
	"slices"
	"time"
)

// TicketRecord is one support ticket as read from a dataset.
//
// ElapsedRaw holds the elapsed value in whatever shape the source produced.
// ElapsedHours and ElapsedStatus are empty until NormalizeTickets fills them.
type TicketRecord struct {
	ID          int64
	Requester   string
	RequestedAt *time.Time
	Category    string
	Priority    string
	Status      string

	// ElapsedText and Average are display columns carried through to exports.
	ElapsedText string
	Average     string

	ElapsedRaw    any
	ElapsedHours  float64
	ElapsedStatus DurationStatus
}

// Normalized reports whether ElapsedHours has been derived.
func (t TicketRecord) Normalized() bool {
	return t.ElapsedStatus != ""
}

// HasRequestedAt reports whether the record can join time based rollups.
func (t TicketRecord) HasRequestedAt() bool {
	return t.RequestedAt != nil && !t.RequestedAt.IsZero()
}

// NormalizationReport counts the records whose elapsed value degraded to 0.
type NormalizationReport struct {
	Total   int `json:"total"`
	Missing int `json:"missing"`
	Invalid int `json:"invalid"`
}

// Degraded is the number of records that contribute 0 hours because their raw
// value was missing or malformed. Callers should treat them as an undercount.
func (r NormalizationReport) Degraded() int {
	return r.Missing + r.Invalid
}

// NormalizeTickets derives ElapsedHours for every record. The input slice is
// not modified; records that were already normalized are passed through.
func NormalizeTickets(records []TicketRecord) ([]TicketRecord, NormalizationReport) {
	out := make([]TicketRecord, len(records))
	report := NormalizationReport{Total: len(records)}

	for i, rec := range records {
		if !rec.Normalized() {
			result := NormalizeDuration(rec.ElapsedRaw)
			rec.ElapsedHours = result.Hours
			rec.ElapsedStatus = result.Status
		}

		switch rec.ElapsedStatus {
		case DurationMissing:
			report.Missing++
		case DurationInvalid:
			report.Invalid++
		}
		out[i] = rec
	}

	return out, report
}

// SortByRequestedDesc returns a copy ordered newest first. Records without a
// request timestamp go last, keeping their input order.
func SortByRequestedDesc(records []TicketRecord) []TicketRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b TicketRecord) int {
		switch {
		case !a.HasRequestedAt() && !b.HasRequestedAt():
			return 0
		case !a.HasRequestedAt():
			return 1
		case !b.HasRequestedAt():
			return -1
		}
		return b.RequestedAt.Compare(*a.RequestedAt)
	})
	return sorted
}
