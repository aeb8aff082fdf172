package engine

import (
	"time"

	"github.com/sigalit/guide-scheduler-api/pkg/models"
)

// ParseDate parses a YYYY-MM-DD schedule date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(models.DateLayout, date)
}

// FormatDate renders t as a YYYY-MM-DD schedule date.
func FormatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// ShiftDate returns the date days after t (negative for before).
func ShiftDate(t time.Time, days int) string {
	return FormatDate(t.AddDate(0, 0, days))
}

// MonthRange returns the first and last date of the calendar month containing t.
func MonthRange(t time.Time) (string, string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return FormatDate(first), FormatDate(last)
}

// WeekRange returns the Sunday and Saturday bounding the week containing t.
func WeekRange(t time.Time) (string, string) {
	sunday := t.AddDate(0, 0, -int(t.Weekday()))
	saturday := sunday.AddDate(0, 0, 6)
	return FormatDate(sunday), FormatDate(saturday)
}

// isWeekend reports whether t falls on the Friday/Saturday weekend.
func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Friday || t.Weekday() == time.Saturday
}
