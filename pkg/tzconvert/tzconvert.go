// Package tzconvert provides foolproof timezone conversion utilities.
// ALL times in the codebase are stored in UTC.
// These functions handle the conversion to local time for display and
// classification only. Unrecognized zone names fall back to UTC so callers
// can always render something instead of failing a whole view.
package tzconvert

import (
	"fmt"
	"time"
)

// Fields holds the local wall-clock representation of a UTC instant as
// observed in one timezone.
type Fields struct {
	Hour    int // 0-23
	Minute  int // 0-59
	Weekday time.Weekday
	Day     int
	Month   time.Month
}

// Location resolves an IANA timezone name or an offset-style "UTC+8" /
// "UTC-4" string, falling back to UTC for anything else. It never fails.
func Location(timezone string) *time.Location {
	if loc, err := time.LoadLocation(timezone); err == nil {
		return loc
	}
	if len(timezone) > 3 && timezone[:3] == "UTC" {
		offset := ParseTimezoneOffset(timezone)
		if offset >= -12 && offset <= 14 {
			return time.FixedZone(timezone, offset*3600)
		}
	}
	return time.UTC
}

// LocalFields projects a UTC instant into a timezone's local wall-clock
// fields. The platform zone rules supply the offset and any seasonal shift
// in effect at that instant.
func LocalFields(t time.Time, timezone string) Fields {
	local := t.In(Location(timezone))
	return Fields{
		Hour:    local.Hour(),
		Minute:  local.Minute(),
		Weekday: local.Weekday(),
		Day:     local.Day(),
		Month:   local.Month(),
	}
}

// DayOffset reports whether the timezone's local calendar date is one day
// behind (-1), the same as (0), or one day ahead (+1) of the UTC calendar
// date at the given instant. Computed by true calendar-day subtraction, so
// month and year boundaries need no special casing.
func DayOffset(t time.Time, timezone string) int {
	local := t.In(Location(timezone))
	return daysSinceEpoch(local) - daysSinceEpoch(t.UTC())
}

// daysSinceEpoch counts calendar days between a time's local date and
// 1970-01-01. Midnight instants are exact multiples of 86400 seconds, so
// integer division is exact here.
func daysSinceEpoch(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DecimalHour converts wall-clock hour and minute into decimal hours,
// e.g. (9, 30) -> 9.5.
func DecimalHour(hour, minute int) float64 {
	return float64(hour) + float64(minute)/60.0
}

// LocalDecimalHour is LocalFields followed by DecimalHour.
func LocalDecimalHour(t time.Time, timezone string) float64 {
	f := LocalFields(t, timezone)
	return DecimalHour(f.Hour, f.Minute)
}

// Clock formats local hour and minute in 24-hour HH:MM form.
func (f Fields) Clock() string {
	return fmt.Sprintf("%02d:%02d", f.Hour, f.Minute)
}

// DateLabel formats the local calendar fields, e.g. "Mon, Jan 2".
func (f Fields) DateLabel() string {
	return fmt.Sprintf("%s, %s %d", f.Weekday.String()[:3], f.Month.String()[:3], f.Day)
}

// ParseTimezoneOffset extracts the numeric offset from a timezone string.
// For IANA timezones, it uses Go's time package to get the current offset.
// Examples:
//   - "UTC-4" returns -4
//   - "UTC+8" returns 8
//   - "UTC" returns 0
//   - "America/New_York" returns -4 or -5 depending on DST
//   - Invalid input returns 0
func ParseTimezoneOffset(timezone string) int {
	// First try UTC format
	if len(timezone) >= 3 && timezone[:3] == "UTC" {
		offsetStr := timezone[3:]
		if offsetStr == "" {
			return 0
		}

		sign := 1
		switch offsetStr[0] {
		case '-':
			sign = -1
			offsetStr = offsetStr[1:]
		case '+':
			offsetStr = offsetStr[1:]
		default:
			// No sign means positive offset
		}

		offset := 0
		for _, ch := range offsetStr {
			if ch < '0' || ch > '9' {
				break
			}
			offset = offset*10 + int(ch-'0')
		}

		return sign * offset
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return 0 // Invalid timezone
	}

	_, offset := time.Now().In(loc).Zone()
	return offset / 3600 // Convert seconds to hours
}
