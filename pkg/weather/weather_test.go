package weather

import (
	"testing"
	"time"

	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
)

func testCity() cities.City {
	return cities.City{ID: "tokyo", Name: "Tokyo", Timezone: "Asia/Tokyo", BaseTemp: 16}
}

func TestCurrentDeterministic(t *testing.T) {
	instant := time.Date(2024, 8, 15, 3, 0, 0, 0, time.UTC)
	first := Current(testCity(), instant)
	second := Current(testCity(), instant)
	if first != second {
		t.Errorf("Current not deterministic: %+v then %+v", first, second)
	}
}

func TestCurrentKnownCondition(t *testing.T) {
	got := Current(testCity(), time.Date(2024, 8, 15, 3, 0, 0, 0, time.UTC))
	if got.Condition == "" {
		t.Fatal("Current returned empty condition")
	}
	known := map[string]bool{
		"Sunny": true, "Cloudy": true, "Rainy": true, "Windy": true,
		"Clear": true, "Partly Cloudy": true,
	}
	if !known[got.Condition] {
		t.Errorf("Current returned unknown condition %q", got.Condition)
	}
}

func TestCurrentNightRemapsDaytimeConditions(t *testing.T) {
	city := testCity()
	// Scan a whole local day; whenever the local hour is night, the visible
	// condition must never be the daytime Sunny/Cloudy pair.
	for utcHour := 0; utcHour < 24; utcHour++ {
		instant := time.Date(2024, 8, 15, utcHour, 0, 0, 0, time.UTC)
		localHour := (utcHour + 9) % 24 // Tokyo is UTC+9, no DST
		report := Current(city, instant)
		if localHour >= 22 || localHour < 6 {
			if report.Condition == "Sunny" || report.Condition == "Cloudy" {
				t.Errorf("night condition at local %02d:00 = %q", localHour, report.Condition)
			}
		}
	}
}

func TestCurrentTempWithinSimulationBounds(t *testing.T) {
	city := testCity()
	for month := time.January; month <= time.December; month++ {
		instant := time.Date(2024, month, 10, 12, 0, 0, 0, time.UTC)
		report := Current(city, instant)
		// BaseTemp 16 with +/-10 seasonal and +/-5 diurnal swing.
		if report.TempC < 1 || report.TempC > 31 {
			t.Errorf("month %v: temp %d outside simulation bounds", month, report.TempC)
		}
	}
}

func TestCurrentVariesByCity(t *testing.T) {
	instant := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	a := Current(cities.City{ID: "dubai", Timezone: "Asia/Dubai", BaseTemp: 28}, instant)
	b := Current(cities.City{ID: "moscow", Timezone: "Europe/Moscow", BaseTemp: 6}, instant)
	if a.TempC <= b.TempC {
		t.Errorf("expected Dubai (%d) warmer than Moscow (%d)", a.TempC, b.TempC)
	}
}
