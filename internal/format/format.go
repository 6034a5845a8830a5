// Package format renders numbers, glucose values, durations, and times the
// way printed reports display them.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/printview/internal/types"
)

// Percentage formats a fraction as a whole percentage; NaN or infinite input
// renders as "--%".
func Percentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

// Decimal formats v with a fixed number of decimals.
func Decimal(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

// RemoveTrailingZeroes trims zero decimals: "1.50" becomes "1.5", "2.00"
// becomes "2".
func RemoveTrailingZeroes(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// BgValue formats a glucose value for display. Readings the meter reported
// only as beyond a threshold print as Low or High.
func BgValue(v float64, prefs types.BgPrefs, oor *types.OutOfRange) string {
	if oor != nil {
		switch oor.Direction {
		case "low":
			return "Low"
		case "high":
			return "High"
		}
	}
	return Decimal(v, prefs.Precision())
}

// Duration renders a duration in hours and minutes, using fraction glyphs for
// common quarter and third hours.
func Duration(d time.Duration) string {
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if hours == 0 {
		return fmt.Sprintf("%d min", minutes)
	}

	suffix := "hrs"
	if hours == 1 {
		suffix = "hr"
	}

	fractions := map[int]string{15: "¼", 20: "⅓", 30: "½", 40: "⅔", 45: "¾"}
	switch {
	case minutes == 0:
		return fmt.Sprintf("%d %s", hours, suffix)
	case fractions[minutes] != "":
		return fmt.Sprintf("%d%s %s", hours, fractions[minutes], suffix)
	}
	return fmt.Sprintf("%d %s %d min", hours, suffix, minutes)
}

// HourLabel is the axis label for a tick, e.g. "3a".
func HourLabel(t time.Time) string {
	s := t.Format("3pm")
	return s[:len(s)-1]
}

// SlotLabel is a spaced hour for table headings, e.g. "3 pm".
func SlotLabel(t time.Time) string {
	return t.Format("3 pm")
}

// ClockLabel is the compact time used in the bolus ledger, e.g. "3:05p".
func ClockLabel(t time.Time) string {
	s := t.Format("3:04pm")
	return s[:len(s)-1]
}

// LongDate is the chart heading date, e.g. "Monday, January 2".
func LongDate(t time.Time) string {
	return t.Format("Monday, January 2")
}

// ChartDate is the heading above a daily chart summary, e.g. "Monday 1/2".
func ChartDate(t time.Time) string {
	return t.Format("Monday 1/2")
}

// RowDate labels a BG log row, e.g. "Mon, Jan 2".
func RowDate(t time.Time) string {
	return t.Format("Mon, Jan 2")
}

// PrintDate is the date a document was produced, e.g. "Jan 2, 2006".
func PrintDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// DateRange renders an inclusive date span for page headers.
func DateRange(start, end time.Time) string {
	if start.Year() != end.Year() {
		return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
}
