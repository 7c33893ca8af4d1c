// Package ical serializes a proposed meeting into a minimal iCalendar
// document: one VEVENT with UTC second-precision timestamps and a
// description listing each participating city's local time.
package ical

import (
	"fmt"
	"strings"
	"time"
)

// icsTimestamp is the compact UTC form iCalendar expects, no fractional
// seconds.
const icsTimestamp = "20060102T150405Z"

// CityLine is one description entry: a city name and its formatted local
// time at the meeting start.
type CityLine struct {
	Name      string
	LocalTime string
}

// Event renders a calendar document for a meeting starting at the given
// instant and running for durationMinutes. The description enumerates each
// city's local wall-clock time in 24-hour form.
func Event(start time.Time, durationMinutes int, cityLines []CityLine) []byte {
	startUTC := start.UTC().Truncate(time.Second)
	endUTC := startUTC.Add(time.Duration(durationMinutes) * time.Minute)

	descriptions := make([]string, 0, len(cityLines))
	for _, line := range cityLines {
		descriptions = append(descriptions, fmt.Sprintf("%s: %s", line.Name, line.LocalTime))
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//chronosync//meeting//EN",
		"BEGIN:VEVENT",
		"DTSTART:" + startUTC.Format(icsTimestamp),
		"DTEND:" + endUTC.Format(icsTimestamp),
		"SUMMARY:Chronosync Meeting",
		"DESCRIPTION:Meeting across timezones (24h format):\\n\\n" + strings.Join(descriptions, "\\n"),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}
