package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
)

// MeanScope selects the population of the reference mean shown next to the
// per-category means.
type MeanScope string

const (
	// MeanScopeFiltered computes the reference mean over the filtered view.
	MeanScopeFiltered MeanScope = "filtered"
	// MeanScopeDataset computes it over the whole loaded dataset.
	MeanScopeDataset MeanScope = "dataset"
)

func (s MeanScope) IsValid() bool {
	return s == MeanScopeFiltered || s == MeanScopeDataset
}

// ParseMeanScope parses a scope name. An empty name yields MeanScopeFiltered.
func ParseMeanScope(name string) (MeanScope, error) {
	if strings.TrimSpace(name) == "" {
		return MeanScopeFiltered, nil
	}
	s := MeanScope(strings.ToLower(strings.TrimSpace(name)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidMeanScope, name)
	}
	return s, nil
}

// SLAOverview is everything the SLA dashboard shows for one filter selection.
type SLAOverview struct {
	Total          int
	MeanHours      float64
	HasData        bool
	WithinSLA      float64
	ThresholdHours float64
	P90Hours       float64

	ReferenceMean  float64
	ReferenceScope MeanScope

	CategoryMeans        []CategoryBreakdown
	PriorityDistribution []GroupCount
	Monthly              MonthlyRollup

	DatasetTotal  int
	Normalization NormalizationReport

	Filter  map[FilterField][]string
	Options map[FilterField][]string
	Records []TicketRecord
}
