// Package business classifies a meeting window against local working hours.
//
// Every city shares one work window expressed in local decimal hours; the
// classification only needs the local wall-clock start of the meeting and its
// duration. The four statuses partition every possible input: there is no
// gap and no overlap between them.
package business

import (
	"github.com/codeGROOVE-dev/chronosync/pkg/constants"
	"github.com/codeGROOVE-dev/chronosync/pkg/tzconvert"
)

// Status is the business-hours classification of a city at an instant.
type Status int

const (
	// Active means the entire meeting window fits inside working hours.
	Active Status = iota
	// Overtime means the meeting starts inside working hours but runs past closing.
	Overtime
	// Asleep means the local time falls in the night window.
	Asleep
	// Closed means outside working hours but not night.
	Closed
)

// String returns the display label for a status.
func (s Status) String() string {
	switch s {
	case Active:
		return "Active"
	case Overtime:
		return "Overtime"
	case Asleep:
		return "Asleep"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// WorkWindow is the shared local-hour interval defining business hours,
// applied identically in every timezone.
type WorkWindow struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// DefaultWorkWindow is the standard 09:00-18:00 working day.
func DefaultWorkWindow() WorkWindow {
	return WorkWindow{Start: constants.WorkHoursStart, End: constants.WorkHoursEnd}
}

// Valid reports whether the window is a sensible same-day interval.
func (w WorkWindow) Valid() bool {
	return w.Start >= 0 && w.End <= 24 && w.Start < w.End
}

// Contains reports whether a local decimal hour falls inside the window.
// The start is inclusive, the end exclusive.
func (w WorkWindow) Contains(decimalHour float64) bool {
	return decimalHour >= w.Start && decimalHour < w.End
}

// Classify determines the status of a meeting that starts at the given local
// wall-clock time and runs for durationMinutes. The checks apply in order:
//
//  1. start inside the window and end no later than closing -> Active
//  2. start inside the window but end past closing -> Overtime
//  3. local hour at or past 22:00, or before 06:00 -> Asleep
//  4. otherwise -> Closed
//
// Overtime deliberately takes precedence over any grace-extended notion of
// Active: a window that runs past closing is never Active, however little it
// overruns.
func Classify(hour, minute, durationMinutes int, window WorkWindow) Status {
	start := tzconvert.DecimalHour(hour, minute)
	end := start + float64(durationMinutes)/60.0

	startsInHours := window.Contains(start)
	endsInHours := end <= window.End

	switch {
	case startsInHours && endsInHours:
		return Active
	case startsInHours:
		return Overtime
	case hour >= constants.NightStart || hour < constants.NightEnd:
		return Asleep
	default:
		return Closed
	}
}

// Satisfies reports whether a meeting starting at the given local decimal
// hour fits entirely inside the window: the Active-equivalent predicate the
// optimizer counts. Overtime does not satisfy.
func Satisfies(startDecimal float64, durationMinutes int, window WorkWindow) bool {
	end := startDecimal + float64(durationMinutes)/60.0
	return window.Contains(startDecimal) && end <= window.End
}
