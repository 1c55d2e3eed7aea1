package spreadsheet

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

// timestampLayouts are tried in order on text timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006.01.02 15:04:05",
}

// parseID reads a ticket ID from the stored cell value. Integral floats
// ("12.0") are accepted since numeric cells may come back in float notation.
func parseID(text string) (int64, bool) {
	if id, err := strconv.ParseInt(text, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// parseTimestamp reads a request timestamp from a stored cell value: an Excel
// serial date or one of timestampLayouts. ok is false for blank or unreadable
// values.
func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t.Round(time.Second), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// elapsedValue turns an elapsed cell into a raw value for the duration
// normalizer: nil when blank, a time.Duration for stored numbers, the text
// itself otherwise. A number shown with a time format ("[h]:mm:ss") is a
// day serial whatever the unit; any other number is read in unit.
func elapsedValue(raw, display string, unit domain.ElapsedUnit) any {
	if raw == "" {
		return nil
	}
	if strings.Contains(raw, ":") {
		return raw
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return raw
	}
	if strings.Contains(display, ":") {
		return domain.UnitDays.Span(v)
	}
	return unit.Span(v)
}

// parseNumber reads an indicator count. Blank and unreadable cells are 0.
func parseNumber(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
