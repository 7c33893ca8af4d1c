package tzconvert

import (
	"math"
	"testing"
	"time"
)

func TestLocalFields(t *testing.T) {
	// 2024-08-15 12:00 UTC, a DST-season Thursday.
	instant := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timezone string
		wantHour int
		wantMin  int
		wantDay  int
	}{
		{"UTC identity", "UTC", 12, 0, 15},
		{"Tokyo +9", "Asia/Tokyo", 21, 0, 15},
		{"Baku +4", "Asia/Baku", 16, 0, 15},
		{"New York EDT", "America/New_York", 8, 0, 15},
		{"Kathmandu +5:45", "Asia/Kathmandu", 17, 45, 15},
		{"Auckland next day", "Pacific/Auckland", 0, 0, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocalFields(instant, tt.timezone)
			if got.Hour != tt.wantHour || got.Minute != tt.wantMin || got.Day != tt.wantDay {
				t.Errorf("LocalFields(%q) = %02d:%02d day %d, want %02d:%02d day %d",
					tt.timezone, got.Hour, got.Minute, got.Day, tt.wantHour, tt.wantMin, tt.wantDay)
			}
		})
	}
}

func TestLocalFieldsRanges(t *testing.T) {
	zones := []string{"UTC", "Asia/Tokyo", "America/Los_Angeles", "Pacific/Kiritimati", "Etc/GMT+12", "Asia/Kathmandu"}
	for _, tz := range zones {
		for hour := 0; hour < 24; hour++ {
			instant := time.Date(2024, 3, 10, hour, 30, 0, 0, time.UTC)
			f := LocalFields(instant, tz)
			if f.Hour < 0 || f.Hour > 23 {
				t.Errorf("LocalFields(%v, %q).Hour = %d out of range", instant, tz, f.Hour)
			}
			if f.Minute < 0 || f.Minute > 59 {
				t.Errorf("LocalFields(%v, %q).Minute = %d out of range", instant, tz, f.Minute)
			}
		}
	}
}

func TestLocalFieldsUnknownZoneFallsBackToUTC(t *testing.T) {
	instant := time.Date(2024, 8, 15, 23, 45, 0, 0, time.UTC)
	got := LocalFields(instant, "Mars/Olympus_Mons")
	want := LocalFields(instant, "UTC")
	if got != want {
		t.Errorf("LocalFields with unknown zone = %+v, want UTC result %+v", got, want)
	}
}

func TestDayOffset(t *testing.T) {
	tests := []struct {
		name     string
		instant  time.Time
		timezone string
		want     int
	}{
		{"UTC same day", time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC), "UTC", 0},
		{"Tokyo ahead late UTC", time.Date(2024, 8, 15, 23, 0, 0, 0, time.UTC), "Asia/Tokyo", 1},
		{"LA behind early UTC", time.Date(2024, 8, 15, 2, 0, 0, 0, time.UTC), "America/Los_Angeles", -1},
		{"Kiritimati +14 ahead", time.Date(2024, 8, 15, 11, 0, 0, 0, time.UTC), "Pacific/Kiritimati", 1},
		{"month boundary ahead", time.Date(2024, 8, 31, 23, 0, 0, 0, time.UTC), "Asia/Tokyo", 1},
		{"month boundary behind", time.Date(2024, 9, 1, 2, 0, 0, 0, time.UTC), "America/Los_Angeles", -1},
		{"year boundary ahead", time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), "Asia/Tokyo", 1},
		{"year boundary behind", time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC), "America/Los_Angeles", -1},
		{"unknown zone pins to UTC", time.Date(2024, 8, 15, 23, 59, 0, 0, time.UTC), "Not/AZone", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayOffset(tt.instant, tt.timezone); got != tt.want {
				t.Errorf("DayOffset(%v, %q) = %d, want %d", tt.instant, tt.timezone, got, tt.want)
			}
		})
	}
}

func TestDayOffsetBounded(t *testing.T) {
	zones := []string{"Pacific/Kiritimati", "Etc/GMT+12", "Pacific/Midway", "Asia/Tokyo", "UTC"}
	for _, tz := range zones {
		for hour := 0; hour < 24; hour++ {
			instant := time.Date(2024, 2, 29, hour, 0, 0, 0, time.UTC)
			if off := DayOffset(instant, tz); off < -1 || off > 1 {
				t.Errorf("DayOffset(%v, %q) = %d, want within [-1, 1]", instant, tz, off)
			}
		}
	}
}

func TestDecimalHour(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         float64
	}{
		{9, 0, 9.0},
		{9, 30, 9.5},
		{17, 45, 17.75},
		{0, 0, 0.0},
		{23, 59, 23.983333},
	}
	for _, tt := range tests {
		if got := DecimalHour(tt.hour, tt.minute); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("DecimalHour(%d, %d) = %v, want %v", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestFieldsClock(t *testing.T) {
	f := Fields{Hour: 7, Minute: 5}
	if got := f.Clock(); got != "07:05" {
		t.Errorf("Clock() = %q, want %q", got, "07:05")
	}
}

func TestLocalFieldsOffsetStyleZones(t *testing.T) {
	instant := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timezone string
		wantHour int
		wantDay  int
	}{
		{"UTC+8", 20, 15},
		{"UTC-4", 8, 15},
		{"UTC+14", 2, 16},
		{"UTC-10", 2, 15},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			got := LocalFields(instant, tt.timezone)
			if got.Hour != tt.wantHour || got.Day != tt.wantDay {
				t.Errorf("LocalFields(%q) = %02d:%02d day %d, want %02d:00 day %d",
					tt.timezone, got.Hour, got.Minute, got.Day, tt.wantHour, tt.wantDay)
			}
		})
	}
}

func TestDayOffsetOffsetStyleZone(t *testing.T) {
	instant := time.Date(2024, 8, 15, 23, 0, 0, 0, time.UTC)
	if got := DayOffset(instant, "UTC+8"); got != 1 {
		t.Errorf("DayOffset(23:00 UTC, UTC+8) = %d, want 1", got)
	}
	if got := DayOffset(time.Date(2024, 8, 15, 2, 0, 0, 0, time.UTC), "UTC-4"); got != -1 {
		t.Errorf("DayOffset(02:00 UTC, UTC-4) = %d, want -1", got)
	}
}

func TestParseTimezoneOffset(t *testing.T) {
	tests := []struct {
		timezone string
		want     int
	}{
		{"UTC-4", -4},
		{"UTC+8", 8},
		{"UTC+0", 0},
		{"UTC", 0},
		{"UTC-10", -10},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			got := ParseTimezoneOffset(tt.timezone)
			if got != tt.want {
				t.Errorf("ParseTimezoneOffset(%q) = %v, want %v",
					tt.timezone, got, tt.want)
			}
		})
	}
}
