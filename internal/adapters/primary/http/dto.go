package http

import (
	"time"

	"github.com/samber/lo"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

// --- Response DTOs ---

// TicketRecordDTO defines the JSON response for a ticket row.
type TicketRecordDTO struct {
	ID            int64      `json:"id"`
	Requester     string     `json:"requester"`
	RequestedAt   *time.Time `json:"requestedAt"`
	Category      string     `json:"category"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	ElapsedText   string     `json:"elapsedText,omitempty"`
	ElapsedHours  float64    `json:"elapsedHours"`
	ElapsedStatus string     `json:"elapsedStatus"`
	Average       string     `json:"average,omitempty"`
}

// ReferenceMeanDTO is the overall mean drawn next to the per-category bars.
type ReferenceMeanDTO struct {
	MeanHours float64 `json:"meanHours"`
	Scope     string  `json:"scope"`
}

// CategoryMeanDTO is one bar of the mean-by-category chart.
type CategoryMeanDTO struct {
	Category  string  `json:"category"`
	MeanHours float64 `json:"meanHours"`
	Count     int     `json:"count"`
}

// PriorityShareDTO is one slice of the priority pie.
type PriorityShareDTO struct {
	Priority     string  `json:"priority"`
	Count        int     `json:"count"`
	SharePercent float64 `json:"sharePercent"`
}

// MonthlySummaryDTO is one point of the monthly trend line.
type MonthlySummaryDTO struct {
	Period    string  `json:"period"`
	MonthName string  `json:"monthName"`
	MeanHours float64 `json:"meanHours"`
	Count     int     `json:"count"`
}

// MonthlyDTO is the monthly trend plus the records it left out.
type MonthlyDTO struct {
	Summaries []MonthlySummaryDTO `json:"summaries"`
	Skipped   int                 `json:"skipped"`
}

// OverviewDTO defines the JSON response of the SLA dashboard.
type OverviewDTO struct {
	Total                int                        `json:"total"`
	HasData              bool                       `json:"hasData"`
	MeanHours            float64                    `json:"meanHours"`
	WithinSLAPercent     float64                    `json:"withinSlaPercent"`
	ThresholdHours       float64                    `json:"thresholdHours"`
	P90Hours             float64                    `json:"p90Hours"`
	Reference            ReferenceMeanDTO           `json:"reference"`
	CategoryMeans        []CategoryMeanDTO          `json:"categoryMeans"`
	PriorityDistribution []PriorityShareDTO         `json:"priorityDistribution"`
	Monthly              MonthlyDTO                 `json:"monthly"`
	DatasetTotal         int                        `json:"datasetTotal"`
	Normalization        domain.NormalizationReport `json:"normalization"`
	Filter               map[string][]string        `json:"filter"`
	Options              map[string][]string        `json:"options"`
	Records              []TicketRecordDTO          `json:"records,omitempty"`
}

// IndicatorRowDTO is one labelled row of an indicator table.
type IndicatorRowDTO struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// IndicatorShareDTO is one slice of an indicator pie.
type IndicatorShareDTO struct {
	Label        string  `json:"label"`
	Value        float64 `json:"value"`
	SharePercent float64 `json:"sharePercent"`
}

// IndicatorDTO defines the JSON response for an indicator sheet.
type IndicatorDTO struct {
	Name          string              `json:"name"`
	Title         string              `json:"title"`
	Kind          string              `json:"kind"`
	LabelColumn   string              `json:"labelColumn"`
	Columns       []string            `json:"columns"`
	Rows          []IndicatorRowDTO   `json:"rows"`
	ShareColumn   string              `json:"shareColumn,omitempty"`
	Shares        []IndicatorShareDTO `json:"shares"`
	UnknownMonths []string            `json:"unknownMonths,omitempty"`
}

// --- Mappers ---

func toTicketRecordDTO(rec domain.TicketRecord) TicketRecordDTO {
	var requestedAt *time.Time
	if rec.HasRequestedAt() {
		at := *rec.RequestedAt
		requestedAt = &at
	}
	return TicketRecordDTO{
		ID:            rec.ID,
		Requester:     rec.Requester,
		RequestedAt:   requestedAt,
		Category:      rec.Category,
		Priority:      rec.Priority,
		Status:        rec.Status,
		ElapsedText:   rec.ElapsedText,
		ElapsedHours:  rec.ElapsedHours,
		ElapsedStatus: string(rec.ElapsedStatus),
		Average:       rec.Average,
	}
}

func toTicketRecordDTOs(records []domain.TicketRecord) []TicketRecordDTO {
	return lo.Map(records, func(rec domain.TicketRecord, _ int) TicketRecordDTO {
		return toTicketRecordDTO(rec)
	})
}

func toSelectionsDTO(selections map[domain.FilterField][]string) map[string][]string {
	return lo.MapKeys(selections, func(_ []string, field domain.FilterField) string {
		return field.String()
	})
}

func toOverviewDTO(o *domain.SLAOverview, includeRecords bool) OverviewDTO {
	dto := OverviewDTO{
		Total:            o.Total,
		HasData:          o.HasData,
		MeanHours:        o.MeanHours,
		WithinSLAPercent: o.WithinSLA,
		ThresholdHours:   o.ThresholdHours,
		P90Hours:         o.P90Hours,
		Reference: ReferenceMeanDTO{
			MeanHours: o.ReferenceMean,
			Scope:     string(o.ReferenceScope),
		},
		CategoryMeans: lo.Map(o.CategoryMeans, func(c domain.CategoryBreakdown, _ int) CategoryMeanDTO {
			return CategoryMeanDTO{Category: c.Key, MeanHours: c.MeanHours, Count: c.Count}
		}),
		PriorityDistribution: lo.Map(o.PriorityDistribution, func(g domain.GroupCount, _ int) PriorityShareDTO {
			return PriorityShareDTO{Priority: g.Key, Count: g.Count, SharePercent: g.Share}
		}),
		Monthly: MonthlyDTO{
			Summaries: lo.Map(o.Monthly.Summaries, func(m domain.MonthlySummary, _ int) MonthlySummaryDTO {
				return MonthlySummaryDTO{Period: m.Period, MonthName: m.Name, MeanHours: m.MeanHours, Count: m.Count}
			}),
			Skipped: o.Monthly.Skipped,
		},
		DatasetTotal:  o.DatasetTotal,
		Normalization: o.Normalization,
		Filter:        toSelectionsDTO(o.Filter),
		Options:       toSelectionsDTO(o.Options),
	}
	if includeRecords {
		dto.Records = toTicketRecordDTOs(o.Records)
	}
	return dto
}

func toIndicatorDTO(report *domain.IndicatorReport) IndicatorDTO {
	t := report.Table
	return IndicatorDTO{
		Name:        t.Name,
		Title:       t.Title,
		Kind:        string(t.Kind),
		LabelColumn: t.LabelColumn,
		Columns:     t.Columns,
		Rows: lo.Map(t.Rows, func(row domain.IndicatorRow, _ int) IndicatorRowDTO {
			return IndicatorRowDTO{Label: row.Label, Values: row.Values}
		}),
		ShareColumn: report.ShareColumn,
		Shares: lo.Map(report.Shares, func(s domain.IndicatorShare, _ int) IndicatorShareDTO {
			return IndicatorShareDTO{Label: s.Label, Value: s.Value, SharePercent: s.Share}
		}),
		UnknownMonths: report.UnknownMonths,
	}
}
