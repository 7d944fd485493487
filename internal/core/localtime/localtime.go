// Package localtime converts the portal's submitted calendar dates and
// wall-clock times into UTC instants. Submissions are interpreted in the
// university's timezone (Europe/Stockholm), so a 10:00 event lands on the
// right UTC hour on both sides of a DST switch.
package localtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const zoneName = "Europe/Stockholm"

var campusZone *time.Location

func init() {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		// tzdata missing on minimal images; CET is close enough to fail loud
		// in tests rather than silently shifting events.
		loc = time.FixedZone("CET", 1*60*60)
	}
	campusZone = loc
}

// CombineUTC treats date ("YYYY-MM-DD", or ISO with the time part ignored)
// plus hhmm ("HH:MM", empty means midnight) as local campus time and returns
// the UTC instant. An empty date yields the zero time with no error.
func CombineUTC(date, hhmm string) (time.Time, error) {
	s := strings.TrimSpace(date)
	if s == "" {
		return time.Time{}, nil
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}

	year, month, day, err := splitDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date; expected 'YYYY-MM-DD' or ISO, got %q", date)
	}

	hour, minute := 0, 0
	if t := strings.TrimSpace(hhmm); t != "" {
		hour, minute, err = splitTime(t)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time; expected 'HH:MM', got %q", hhmm)
		}
	}

	local := time.Date(year, time.Month(month), day, hour, minute, 0, 0, campusZone)
	return local.UTC(), nil
}

// DayStartUTC returns midnight UTC of the given "YYYY-MM-DD" date, used for
// half-open calendar range bounds.
func DayStartUTC(date string) (time.Time, error) {
	year, month, day, err := splitDate(strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func splitDate(s string) (year, month, day int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("want 3 date parts, got %d", len(parts))
	}
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month out of range")
	}
	if day, err = strconv.Atoi(parts[2]); err != nil {
		return
	}
	if day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("day out of range")
	}
	return
}

func splitTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	if hour, err = strconv.Atoi(parts[0]); err != nil {
		return
	}
	if minute, err = strconv.Atoi(parts[1]); err != nil {
		return
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range")
	}
	return
}
