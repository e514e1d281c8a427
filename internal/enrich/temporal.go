package enrich

import (
	"fmt"
	"strings"
	"time"

	"vcon-insights/internal/types"
)

// Accepted created_at layouts, most specific first. The RFC3339 layout also
// covers a bare "Z" suffix.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// temporalFeatures buckets the conversation timestamp. A missing or
// unparseable timestamp yields the sentinel defaults (noon, Monday
// 2025-01-01) rather than failing the record; consumers filtering real
// statistics should exclude sentinel dates explicitly.
func temporalFeatures(createdAt string) types.Temporal {
	trimmed := strings.TrimSpace(createdAt)
	if trimmed == "" {
		return defaultTemporal()
	}

	t, ok := parseTimestamp(trimmed)
	if !ok {
		return defaultTemporal()
	}

	weekday := t.Weekday()
	return types.Temporal{
		CallDate:        t.Format("2006-01-02"),
		CallTime:        t.Format("15:04:05"),
		CallHour:        t.Hour(),
		CallDayOfWeek:   weekday.String(),
		CallMonth:       t.Month().String(),
		CallYear:        t.Year(),
		IsWeekend:       weekday == time.Saturday || weekday == time.Sunday,
		IsBusinessHours: t.Hour() >= 9 && t.Hour() <= 17,
		CallQuarter:     fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1),
	}
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// defaultTemporal is the documented sentinel for records without a usable
// timestamp.
func defaultTemporal() types.Temporal {
	return types.Temporal{
		CallDate:        "2025-01-01",
		CallTime:        "12:00:00",
		CallHour:        12,
		CallDayOfWeek:   "Monday",
		CallMonth:       "January",
		CallYear:        2025,
		IsWeekend:       false,
		IsBusinessHours: true,
		CallQuarter:     "Q1",
	}
}
