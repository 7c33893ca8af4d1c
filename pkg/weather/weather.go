// Package weather synthesizes deterministic local weather for display.
//
// Nothing here talks to a real provider: conditions are a pure function of
// the city and the local calendar date, so the dashboard shows stable,
// plausible values without a network dependency. The core never depends on
// these values; they are decoration on the city cards.
package weather

import (
	"math"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
	"github.com/codeGROOVE-dev/chronosync/pkg/tzconvert"
)

// Report is the simulated weather for one city at one instant.
type Report struct {
	TempC     int    `json:"temp_c"`
	Condition string `json:"condition"`
}

var conditions = []string{"Sunny", "Cloudy", "Rainy", "Windy"}

// Current derives the simulated weather for a city at a UTC instant, using
// the city's local date and hour. The same inputs always produce the same
// report.
func Current(city cities.City, instant time.Time) Report {
	f := tzconvert.LocalFields(instant, city.Timezone)

	daySeed := f.Day + (int(f.Month)-1)*30
	seed := daySeed
	for _, b := range []byte(city.ID) {
		seed += int(b)
	}

	// Rough hemisphere guess from the zone prefix: the simulation only needs
	// winters and summers to land in believable months.
	northern := strings.HasPrefix(city.Timezone, "Europe/") ||
		strings.HasPrefix(city.Timezone, "America/") ||
		strings.HasPrefix(city.Timezone, "Asia/")

	monthIndex := float64(int(f.Month) - 1)
	var seasonOffset float64
	if northern {
		seasonOffset = math.Cos((monthIndex-6)*math.Pi/6) * 10
	} else {
		seasonOffset = math.Cos(monthIndex*math.Pi/6) * 10
	}

	diurnalOffset := math.Sin(float64(f.Hour-10)*math.Pi/12) * 5

	temp := int(math.Round(city.BaseTemp + seasonOffset + diurnalOffset))

	condition := conditions[seed%len(conditions)]
	if night := f.Hour >= 22 || f.Hour < 6; night {
		switch condition {
		case "Sunny":
			condition = "Clear"
		case "Cloudy":
			condition = "Partly Cloudy"
		}
	}

	return Report{TempC: temp, Condition: condition}
}
