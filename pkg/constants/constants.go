// Package constants defines shared constants for the chronosync application.
package constants

import "time"

// WorkHoursStart and WorkHoursEnd bound the default business-hours window in
// local decimal hours. The same window applies in every timezone.
const (
	WorkHoursStart = 9.0
	WorkHoursEnd   = 18.0
)

// NightStart and NightEnd bound the "asleep" classification: local hours at
// or after NightStart, or before NightEnd, count as night.
const (
	NightStart = 22
	NightEnd   = 6
)

// BestStartSlots is the number of candidate start times scanned per day by
// the optimizer (one every 30 minutes).
const BestStartSlots = 48

// HeatmapSlots is the resolution of the overlap density strip (one slot
// every 15 minutes).
const HeatmapSlots = 96

// DefaultMeetingMinutes is the meeting duration assumed when none is given.
const DefaultMeetingMinutes = 60

// LiveTickInterval is how often the reference instant resynchronizes to the
// wall clock while in live mode.
const LiveTickInterval = time.Minute
