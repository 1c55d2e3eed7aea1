package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationStatus tells how a raw elapsed value was interpreted.
type DurationStatus string

const (
	// DurationOK means the raw value was parsed into hours.
	DurationOK DurationStatus = "OK"
	// DurationMissing means there was no value to parse (nil or blank).
	DurationMissing DurationStatus = "MISSING"
	// DurationInvalid means a value was present but could not be understood.
	DurationInvalid DurationStatus = "INVALID"
)

func (s DurationStatus) String() string {
	return string(s)
}

// DurationResult is the outcome of normalizing one raw elapsed value.
// Hours is always >= 0 and is 0 unless Status is DurationOK.
type DurationResult struct {
	Hours  float64
	Status DurationStatus
}

// OK reports whether the raw value was understood.
func (r DurationResult) OK() bool {
	return r.Status == DurationOK
}

// TimeOfDay is a wall-clock reading used by some sources to store elapsed time
// (a TIME column, or a spreadsheet cell formatted as a clock).
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// Valid reports whether every field is inside its clock range.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 &&
		t.Minute >= 0 && t.Minute < 60 &&
		t.Second >= 0 && t.Second < 60 &&
		t.Nanosecond >= 0 && t.Nanosecond < int(time.Second)
}

// Hours returns the clock reading as decimal hours.
func (t TimeOfDay) Hours() float64 {
	seconds := float64(t.Hour*3600+t.Minute*60+t.Second) + float64(t.Nanosecond)/float64(time.Second)
	return seconds / 3600
}

// clockPattern accepts "H:M:S" with non-negative integer or fractional parts,
// optionally preceded by a "N days" prefix as written by spreadsheet exports.
var clockPattern = regexp.MustCompile(`^(?:(\d+)\s+days?,?\s+)?(\d+(?:\.\d+)?|\.\d+):(\d+(?:\.\d+)?|\.\d+):(\d+(?:\.\d+)?|\.\d+)$`)

// ParseClockDuration parses colon-delimited elapsed text into decimal hours.
// Components are not range checked: "30:90:00" is 31.5 hours.
func ParseClockDuration(text string) (float64, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}

	var days float64
	if m[1] != "" {
		d, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		days = d
	}

	parts := make([]float64, 3)
	for i, raw := range m[2:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		parts[i] = v
	}

	hours := days*24 + parts[0] + parts[1]/60 + parts[2]/3600
	if math.IsInf(hours, 0) || math.IsNaN(hours) {
		return 0, false
	}
	return hours, true
}

// NormalizeDuration converts a raw elapsed value into decimal hours.
//
// Accepted shapes are colon-delimited text, a time.Duration span, and a
// TimeOfDay or time.Time clock reading. nil and blank text are Missing;
// anything else, including negative spans, is Invalid. It never panics.
func NormalizeDuration(raw any) DurationResult {
	switch v := raw.(type) {
	case nil:
		return missingDuration()
	case string:
		return normalizeText(v)
	case []byte:
		return normalizeText(string(v))
	case *string:
		if v == nil {
			return missingDuration()
		}
		return normalizeText(*v)
	case time.Duration:
		return normalizeSpan(v)
	case *time.Duration:
		if v == nil {
			return missingDuration()
		}
		return normalizeSpan(*v)
	case TimeOfDay:
		return normalizeClock(v)
	case *TimeOfDay:
		if v == nil {
			return missingDuration()
		}
		return normalizeClock(*v)
	case time.Time:
		return normalizeTime(v)
	case *time.Time:
		if v == nil {
			return missingDuration()
		}
		return normalizeTime(*v)
	default:
		return invalidDuration()
	}
}

// DurationHours is NormalizeDuration without the status: malformed or missing
// input yields 0.
func DurationHours(raw any) float64 {
	return NormalizeDuration(raw).Hours
}

func normalizeText(text string) DurationResult {
	if strings.TrimSpace(text) == "" {
		return missingDuration()
	}
	hours, ok := ParseClockDuration(text)
	if !ok {
		return invalidDuration()
	}
	return DurationResult{Hours: hours, Status: DurationOK}
}

func normalizeSpan(d time.Duration) DurationResult {
	if d < 0 {
		return invalidDuration()
	}
	return DurationResult{Hours: d.Seconds() / 3600, Status: DurationOK}
}

func normalizeClock(t TimeOfDay) DurationResult {
	if !t.Valid() {
		return invalidDuration()
	}
	return DurationResult{Hours: t.Hours(), Status: DurationOK}
}

func normalizeTime(t time.Time) DurationResult {
	if t.IsZero() {
		return missingDuration()
	}
	return normalizeClock(TimeOfDay{
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
	})
}

func missingDuration() DurationResult {
	return DurationResult{Status: DurationMissing}
}

func invalidDuration() DurationResult {
	return DurationResult{Status: DurationInvalid}
}
