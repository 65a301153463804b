package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const MonthLayout = "2006-01"

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses the date spellings found in the published spreadsheets.
// Day-first forms win over month-first ones.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
}

// ParseMonth accepts YYYY-MM and MM/YYYY and returns the first day of the month.
func ParseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{MonthLayout, "01/2006", "1/2006"} {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return StartOfMonth(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid month %q (expected YYYY-MM or MM/YYYY)", value)
}

func StartOfMonth(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, value.Location())
}

func MonthKey(value time.Time) string {
	return value.Format(MonthLayout)
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
