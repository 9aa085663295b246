package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// TimeWindow is the half-open interval [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Month is a calendar month
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(raw string) (Month, bool) {
	m := monthPattern.FindStringSubmatch(raw)
	if m == nil {
		return Month{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Month{}, false
	}
	return Month{Year: year, Month: time.Month(month)}, true
}

// MonthOf returns the calendar month containing t in loc
func MonthOf(t time.Time, loc *time.Location) Month {
	local := t.In(loc)
	return Month{Year: local.Year(), Month: local.Month()}
}

// ResolveMonth returns the month named by raw, or the month containing now
// when raw is empty or malformed
func ResolveMonth(raw string, now time.Time, loc *time.Location) Month {
	if m, ok := ParseMonth(raw); ok {
		return m
	}
	return MonthOf(now, loc)
}

// String formats the month as YYYY-MM
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Previous returns the month before m
func (m Month) Previous() Month {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Month{Year: first.Year(), Month: first.Month()}
}

// Window returns [first day 00:00, first day of next month 00:00) in loc
func (m Month) Window(loc *time.Location) TimeWindow {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	return TimeWindow{Start: start, End: start.AddDate(0, 1, 0)}
}

// DayWindow returns local midnight to midnight around t
func DayWindow(t time.Time, loc *time.Location) TimeWindow {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// CivilDate strips the clock from t as seen in loc. The result is midnight UTC
// of that calendar date, the representation used for due dates.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, raw, time.UTC)
}

// OverdueDays returns whole days elapsed from due to today, never negative.
// Both arguments are calendar dates; a nil due date is never overdue.
func OverdueDays(today time.Time, due *time.Time) int {
	if due == nil {
		return 0
	}
	days := int(today.Sub(*due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
