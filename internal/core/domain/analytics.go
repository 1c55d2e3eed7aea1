package domain

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/samber/lo"
)

// PeriodLayout formats the year-month label of a monthly bucket.
const PeriodLayout = "2006-01"

// MonthlySummary is one calendar month's rollup.
type MonthlySummary struct {
	Period    string
	Month     time.Time
	Name      string
	MeanHours float64
	Count     int
}

// MonthlyRollup is the ordered list of monthly summaries plus the number of
// records left out because they had no request timestamp.
type MonthlyRollup struct {
	Summaries []MonthlySummary
	Skipped   int
}

// CategoryBreakdown is one group's mean duration.
type CategoryBreakdown struct {
	Key       string
	MeanHours float64
	Count     int
}

// GroupCount is one group's record count and its share of the whole, in percent.
type GroupCount struct {
	Key   string
	Count int
	Share float64
}

// KeyFunc extracts the grouping key of a record.
type KeyFunc func(TicketRecord) string

// ByField returns a KeyFunc reading one of the filterable fields.
func ByField(field FilterField) KeyFunc {
	return func(rec TicketRecord) string {
		return FieldValue(rec, field)
	}
}

// Count returns the number of records.
func Count(records []TicketRecord) int {
	return len(records)
}

// MeanHours returns the arithmetic mean of ElapsedHours. ok is false when
// there are no records.
func MeanHours(records []TicketRecord) (mean float64, ok bool) {
	if len(records) == 0 {
		return 0, false
	}
	total := lo.SumBy(records, func(rec TicketRecord) float64 { return rec.ElapsedHours })
	return total / float64(len(records)), true
}

// OverallMean is the mean used as a reference line next to per-group values.
func OverallMean(records []TicketRecord) (float64, bool) {
	return MeanHours(records)
}

// WithinThresholdRatio returns the percentage (0–100) of records whose
// ElapsedHours is at most thresholdHours. ok is false when there are no records.
func WithinThresholdRatio(records []TicketRecord, thresholdHours float64) (ratio float64, ok bool) {
	if len(records) == 0 {
		return 0, false
	}
	within := lo.CountBy(records, func(rec TicketRecord) bool {
		return rec.ElapsedHours <= thresholdHours
	})
	return float64(within) / float64(len(records)) * 100, true
}

// PercentileHours returns the nearest-rank p-th percentile (0 < p <= 100) of
// ElapsedHours. ok is false for empty input or p out of range.
func PercentileHours(records []TicketRecord, p float64) (float64, bool) {
	if len(records) == 0 || p <= 0 || p > 100 || math.IsNaN(p) {
		return 0, false
	}
	hours := lo.Map(records, func(rec TicketRecord, _ int) float64 { return rec.ElapsedHours })
	slices.Sort(hours)

	rank := int(math.Ceil(p / 100 * float64(len(hours))))
	if rank < 1 {
		rank = 1
	}
	return hours[rank-1], true
}

// GroupMean returns the mean hours per key. Keys with no records never appear.
func GroupMean(records []TicketRecord, keyFn KeyFunc) map[string]float64 {
	groups := lo.GroupBy(records, func(rec TicketRecord) string { return keyFn(rec) })
	means := make(map[string]float64, len(groups))
	for key, members := range groups {
		if mean, ok := MeanHours(members); ok {
			means[key] = mean
		}
	}
	return means
}

// GroupBreakdown is GroupMean as a slice sorted by key, with member counts.
func GroupBreakdown(records []TicketRecord, keyFn KeyFunc) []CategoryBreakdown {
	means := GroupMean(records, keyFn)
	counts := lo.CountValuesBy(records, func(rec TicketRecord) string { return keyFn(rec) })
	out := make([]CategoryBreakdown, 0, len(means))
	for key, mean := range means {
		out = append(out, CategoryBreakdown{Key: key, MeanHours: mean, Count: counts[key]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CountBy returns the record count per key, largest first, with each key's
// share of the total.
func CountBy(records []TicketRecord, keyFn KeyFunc) []GroupCount {
	counts := lo.CountValuesBy(records, func(rec TicketRecord) string { return keyFn(rec) })
	out := make([]GroupCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, GroupCount{
			Key:   key,
			Count: n,
			Share: float64(n) / float64(len(records)) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// MonthlyRollupOf buckets records by the year-month of RequestedAt (in the
// timestamp's own location) and returns one summary per month, oldest first.
func MonthlyRollupOf(records []TicketRecord) MonthlyRollup {
	type bucket struct {
		month   time.Time
		members []TicketRecord
	}

	buckets := make(map[string]*bucket)
	skipped := 0
	for _, rec := range records {
		if !rec.HasRequestedAt() {
			skipped++
			continue
		}
		at := *rec.RequestedAt
		key := at.Format(PeriodLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{month: time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())}
			buckets[key] = b
		}
		b.members = append(b.members, rec)
	}

	periods := lo.Keys(buckets)
	sort.Strings(periods)

	summaries := make([]MonthlySummary, 0, len(periods))
	for _, period := range periods {
		b := buckets[period]
		mean, _ := MeanHours(b.members)
		summaries = append(summaries, MonthlySummary{
			Period:    period,
			Month:     b.month,
			Name:      MonthName(b.month.Month()),
			MeanHours: mean,
			Count:     len(b.members),
		})
	}

	return MonthlyRollup{Summaries: summaries, Skipped: skipped}
}
