// Package meeting searches for the meeting start time that keeps the most
// cities inside their local business hours.
//
// The search space is deliberately tiny: 48 half-hour UTC slots across one
// calendar day for the optimizer, and 96 quarter-hour slots for the visual
// density strip. All candidate instants are built in UTC and projected into
// each city's zone through tzconvert, so invalid zone names degrade to UTC
// instead of failing the search.
package meeting

import (
	"time"

	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
	"github.com/codeGROOVE-dev/chronosync/pkg/constants"
	"github.com/codeGROOVE-dev/chronosync/pkg/tzconvert"
)

// FindBestStart scans every half-hour UTC start time on referenceDate's
// calendar date and returns the one where the most cities fit the whole
// meeting inside their work window. Only fully-fitting windows count;
// overtime does not. Ties break toward the earliest slot, so an empty city
// set yields midnight. The returned instant carries the reference date with
// seconds and finer fields zeroed.
func FindBestStart(cityList []cities.City, durationMinutes int, referenceDate time.Time, window business.WorkWindow) time.Time {
	year, month, day := referenceDate.UTC().Date()

	bestHour, bestMinute := 0, 0
	bestScore := -1

	for slot := 0; slot < constants.BestStartSlots; slot++ {
		hour, minute := slot/2, (slot%2)*30
		candidate := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
		score := 0
		for _, city := range cityList {
			start := tzconvert.LocalDecimalHour(candidate, city.Timezone)
			if business.Satisfies(start, durationMinutes, window) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestHour, bestMinute = hour, minute
		}
	}

	return time.Date(year, month, day, bestHour, bestMinute, 0, 0, time.UTC)
}

// OverlapScores computes the density strip behind the timeline slider: for
// each 15-minute slot of a UTC day, the fraction of cities whose local time
// falls inside business hours. Unlike the optimizer it looks only at the
// slot itself, not a whole meeting window. Slots are projected onto the
// current UTC day, so the strip is a day-independent visual aid rather than
// an exact predicate; day-rollover effects are ignored by construction.
func OverlapScores(cityList []cities.City, window business.WorkWindow) []float64 {
	return overlapScoresOn(time.Now().UTC(), cityList, window)
}

func overlapScoresOn(day time.Time, cityList []cities.City, window business.WorkWindow) []float64 {
	scores := make([]float64, constants.HeatmapSlots)
	if len(cityList) == 0 {
		return scores
	}

	year, month, dayOfMonth := day.UTC().Date()
	for slot := range scores {
		minutesOfDay := slot * 15
		candidate := time.Date(year, month, dayOfMonth, minutesOfDay/60, minutesOfDay%60, 0, 0, time.UTC)

		count := 0
		for _, city := range cityList {
			if window.Contains(tzconvert.LocalDecimalHour(candidate, city.Timezone)) {
				count++
			}
		}
		scores[slot] = float64(count) / float64(len(cityList))
	}
	return scores
}
