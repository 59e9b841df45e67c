package rxapi

import (
	"fmt"
	"time"
)

// DateLayout is the date format the API expects in from/to filters.
const DateLayout = "2006-01-02"

// DateRangePreset selects a reporting window.
type DateRangePreset string

const (
	PresetToday  DateRangePreset = "today"
	PresetWeek   DateRangePreset = "7d"
	PresetMonth  DateRangePreset = "30d"
	PresetCustom DateRangePreset = "custom"
)

// DateRange is an inclusive window from the start of From's day to the end of To's day.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRangePreset validates a preset name.
func ParseDateRangePreset(s string) (DateRangePreset, error) {
	switch p := DateRangePreset(s); p {
	case PresetToday, PresetWeek, PresetMonth, PresetCustom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown date range preset %q", s)
	}
}

// RangeForPreset returns the window a preset covers relative to now. PresetCustom and
// unknown presets cover today only; the caller fills in its own bounds.
func RangeForPreset(preset DateRangePreset, now time.Time) DateRange {
	to := endOfDay(now)
	switch preset {
	case PresetWeek:
		return DateRange{From: startOfDay(now.AddDate(0, 0, -7)), To: to}
	case PresetMonth:
		return DateRange{From: startOfDay(now.AddDate(0, 0, -30)), To: to}
	default:
		return DateRange{From: startOfDay(now), To: to}
	}
}

// Filters formats the range as metrics query filters.
func (r DateRange) Filters() MetricsFilters {
	return MetricsFilters{From: FormatDate(r.From), To: FormatDate(r.To)}
}

// FormatDate renders t as YYYY-MM-DD in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD or RFC 3339 string.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
