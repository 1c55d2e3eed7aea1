package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
)

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// OneOf validates value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v // Empty is handled by Required
	}

	if lo.Contains(allowed, value) {
		return v
	}

	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom adds a custom validation
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeAndValidate decodes JSON request body and runs basic validation
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}

	return &req, nil
}

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// DefaultPagination returns default pagination values
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Limit:  25,
		Offset: 0,
	}
}

// ParsePagination extracts and validates pagination from query parameters
func ParsePagination(r *http.Request, maxLimit int) PaginationParams {
	params := DefaultPagination()

	params.Limit = ParseIntQueryParam(r, "limit", params.Limit)
	if params.Limit == 0 {
		params.Limit = DefaultPagination().Limit
	}
	params.Offset = ParseIntQueryParam(r, "offset", params.Offset)

	// Enforce maximum limit
	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	return params
}

// ParseIntQueryParam safely parses an integer query parameter
func ParseIntQueryParam(r *http.Request, key string, defaultValue int) int {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}

	return value
}

// ParseFloatParam parses an optional float from query or form values.
// Malformed input is an error, not a fallback. A decimal comma is accepted.
func ParseFloatParam(values url.Values, key string) (*float64, error) {
	valueStr := strings.TrimSpace(values.Get(key))
	if valueStr == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(strings.Replace(valueStr, ",", ".", 1), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &value, nil
}

// ParseFilter builds a domain filter from repeated query parameters, e.g.
// ?category=Rede&category=Acesso&status=Fechado. Keys listed in reserved, and
// keys starting with "_", are not filters. Any other key must name a
// filterable field.
func ParseFilter(query url.Values, reserved ...string) (domain.Filter, error) {
	raw := make(map[string][]string)
	for key, values := range query {
		if strings.HasPrefix(key, "_") || lo.Contains(reserved, key) {
			continue
		}
		selected := lo.Uniq(lo.FilterMap(values, func(v string, _ int) (string, bool) {
			v = strings.TrimSpace(v)
			return v, v != ""
		}))
		raw[key] = append(raw[key], selected...)
	}
	return domain.NewFilter(raw)
}
