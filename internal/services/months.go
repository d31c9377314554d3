package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month keys are the literal "YYYY-MM" format (zero-padded month). The
// format is a storage contract: payment rows, the per-student status map
// and the alert queries all key on it.

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthKey returns the YYYY-MM key for the given time.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthDisplay converts a YYYY-MM key to its display form, e.g.
// "2026-09" -> "September 2026". Unparseable keys are returned as-is.
func MonthDisplay(key string) string {
	year, month, ok := strings.Cut(key, "-")
	if !ok {
		return key
	}
	n, err := strconv.Atoi(month)
	if err != nil || n < 1 || n > 12 {
		return key
	}
	return fmt.Sprintf("%s %s", monthNames[n-1], year)
}

// MonthWindow returns [first day of t's month, first day of next month) in
// t's location.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
