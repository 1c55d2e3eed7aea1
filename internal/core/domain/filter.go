package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"

	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
)

// FilterField names a categorical ticket field that can be filtered on.
type FilterField string

const (
	FieldCategory FilterField = "category"
	FieldPriority FilterField = "priority"
	FieldStatus   FilterField = "status"
)

// FilterFields lists the filterable fields in display order.
var FilterFields = []FilterField{FieldCategory, FieldPriority, FieldStatus}

func (f FilterField) String() string {
	return string(f)
}

// IsValid checks if the field is one of the filterable fields.
func (f FilterField) IsValid() bool {
	return slices.Contains(FilterFields, f)
}

// ParseFilterField maps a field name to a FilterField, case-insensitively.
func ParseFilterField(name string) (FilterField, error) {
	f := FilterField(strings.ToLower(strings.TrimSpace(name)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownFilterField, name)
	}
	return f, nil
}

// FieldValue returns the value of field on rec.
func FieldValue(rec TicketRecord, field FilterField) string {
	switch field {
	case FieldCategory:
		return rec.Category
	case FieldPriority:
		return rec.Priority
	case FieldStatus:
		return rec.Status
	default:
		return ""
	}
}

// Filter is a validated set of selections: for each field, the accepted values.
// Fields without selections do not filter. The zero value accepts everything.
type Filter struct {
	selections map[FilterField]map[string]struct{}
}

// NewFilter builds a Filter from raw field names to accepted values.
// Empty value lists are dropped; unknown field names are rejected.
func NewFilter(raw map[string][]string) (Filter, error) {
	f := Filter{selections: make(map[FilterField]map[string]struct{})}
	for name, values := range raw {
		field, err := ParseFilterField(name)
		if err != nil {
			return Filter{}, err
		}
		f = f.With(field, values...)
	}
	return f, nil
}

// With returns a copy of f that also accepts values for field.
func (f Filter) With(field FilterField, values ...string) Filter {
	next := Filter{selections: make(map[FilterField]map[string]struct{}, len(f.selections)+1)}
	for k, set := range f.selections {
		next.selections[k] = set
	}
	if len(values) == 0 {
		return next
	}

	set := make(map[string]struct{}, len(values)+len(next.selections[field]))
	for v := range next.selections[field] {
		set[v] = struct{}{}
	}
	for _, v := range values {
		set[v] = struct{}{}
	}
	next.selections[field] = set
	return next
}

// IsEmpty reports whether the filter accepts every record.
func (f Filter) IsEmpty() bool {
	return len(f.selections) == 0
}

// Selections returns the accepted values per field, each list sorted.
func (f Filter) Selections() map[FilterField][]string {
	out := make(map[FilterField][]string, len(f.selections))
	for field, set := range f.selections {
		values := lo.Keys(set)
		sort.Strings(values)
		out[field] = values
	}
	return out
}

// Matches reports whether rec satisfies every field's selection.
func (f Filter) Matches(rec TicketRecord) bool {
	for field, accepted := range f.selections {
		if _, ok := accepted[FieldValue(rec, field)]; !ok {
			return false
		}
	}
	return true
}

// ApplyFilter returns the records accepted by f in their input order.
// The input slice is never modified.
func ApplyFilter(records []TicketRecord, f Filter) []TicketRecord {
	if f.IsEmpty() {
		return slices.Clone(records)
	}
	return lo.Filter(records, func(rec TicketRecord, _ int) bool {
		return f.Matches(rec)
	})
}

// DistinctValues returns the sorted distinct non-empty values of field,
// used as the options of a multi-select filter.
func DistinctValues(records []TicketRecord, field FilterField) []string {
	values := lo.Uniq(lo.FilterMap(records, func(rec TicketRecord, _ int) (string, bool) {
		v := FieldValue(rec, field)
		return v, v != ""
	}))
	sort.Strings(values)
	return values
}
