// Package cities holds the static directory of locations the dashboard can
// track. A City is immutable display metadata around one IANA timezone; the
// ID is the stable handle used for membership, deduplication, and share
// links.
package cities

import (
	"sort"
	"strings"
)

// City describes one tracked location.
type City struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Region       string  `json:"region"`
	Timezone     string  `json:"timezone"`
	CountryCode  string  `json:"country_code"`
	CurrencyCode string  `json:"currency_code"`
	BaseTemp     float64 `json:"base_temp"` // average yearly temperature in Celsius, weather seed
}

// directory is the set of selectable cities, sorted by name.
var directory = []City{
	{ID: "amsterdam", Name: "Amsterdam", Region: "Western Europe", Timezone: "Europe/Amsterdam", CountryCode: "NL", CurrencyCode: "EUR", BaseTemp: 10},
	{ID: "baku", Name: "Baku", Region: "South Caucasus", Timezone: "Asia/Baku", CountryCode: "AZ", CurrencyCode: "AZN", BaseTemp: 15},
	{ID: "bangkok", Name: "Bangkok", Region: "Southeast Asia", Timezone: "Asia/Bangkok", CountryCode: "TH", CurrencyCode: "THB", BaseTemp: 28},
	{ID: "beijing", Name: "Beijing", Region: "East Asia", Timezone: "Asia/Shanghai", CountryCode: "CN", CurrencyCode: "CNY", BaseTemp: 13},
	{ID: "berlin", Name: "Berlin", Region: "Central Europe", Timezone: "Europe/Berlin", CountryCode: "DE", CurrencyCode: "EUR", BaseTemp: 10},
	{ID: "cairo", Name: "Cairo", Region: "North Africa", Timezone: "Africa/Cairo", CountryCode: "EG", CurrencyCode: "EGP", BaseTemp: 22},
	{ID: "chicago", Name: "Chicago", Region: "US Midwest", Timezone: "America/Chicago", CountryCode: "US", CurrencyCode: "USD", BaseTemp: 10},
	{ID: "dubai", Name: "Dubai", Region: "Middle East", Timezone: "Asia/Dubai", CountryCode: "AE", CurrencyCode: "AED", BaseTemp: 28},
	{ID: "istanbul", Name: "Istanbul", Region: "Anatolia", Timezone: "Europe/Istanbul", CountryCode: "TR", CurrencyCode: "TRY", BaseTemp: 14},
	{ID: "johannesburg", Name: "Johannesburg", Region: "Southern Africa", Timezone: "Africa/Johannesburg", CountryCode: "ZA", CurrencyCode: "ZAR", BaseTemp: 16},
	{ID: "london", Name: "London", Region: "United Kingdom", Timezone: "Europe/London", CountryCode: "GB", CurrencyCode: "GBP", BaseTemp: 11},
	{ID: "los_angeles", Name: "Los Angeles", Region: "US West Coast", Timezone: "America/Los_Angeles", CountryCode: "US", CurrencyCode: "USD", BaseTemp: 18},
	{ID: "mexico_city", Name: "Mexico City", Region: "Central America", Timezone: "America/Mexico_City", CountryCode: "MX", CurrencyCode: "MXN", BaseTemp: 16},
	{ID: "moscow", Name: "Moscow", Region: "Eastern Europe", Timezone: "Europe/Moscow", CountryCode: "RU", CurrencyCode: "RUB", BaseTemp: 6},
	{ID: "mumbai", Name: "Mumbai", Region: "South Asia", Timezone: "Asia/Kolkata", CountryCode: "IN", CurrencyCode: "INR", BaseTemp: 27},
	{ID: "new_york", Name: "New York", Region: "US East Coast", Timezone: "America/New_York", CountryCode: "US", CurrencyCode: "USD", BaseTemp: 13},
	{ID: "paris", Name: "Paris", Region: "Western Europe", Timezone: "Europe/Paris", CountryCode: "FR", CurrencyCode: "EUR", BaseTemp: 12},
	{ID: "sao_paulo", Name: "São Paulo", Region: "South America", Timezone: "America/Sao_Paulo", CountryCode: "BR", CurrencyCode: "BRL", BaseTemp: 20},
	{ID: "seoul", Name: "Seoul", Region: "East Asia", Timezone: "Asia/Seoul", CountryCode: "KR", CurrencyCode: "KRW", BaseTemp: 12},
	{ID: "singapore", Name: "Singapore", Region: "Southeast Asia", Timezone: "Asia/Singapore", CountryCode: "SG", CurrencyCode: "SGD", BaseTemp: 27},
	{ID: "sydney", Name: "Sydney", Region: "Oceania", Timezone: "Australia/Sydney", CountryCode: "AU", CurrencyCode: "AUD", BaseTemp: 18},
	{ID: "tokyo", Name: "Tokyo", Region: "East Asia", Timezone: "Asia/Tokyo", CountryCode: "JP", CurrencyCode: "JPY", BaseTemp: 16},
	{ID: "toronto", Name: "Toronto", Region: "Canada", Timezone: "America/Toronto", CountryCode: "CA", CurrencyCode: "CAD", BaseTemp: 9},
	{ID: "wellington", Name: "Wellington", Region: "Oceania", Timezone: "Pacific/Auckland", CountryCode: "NZ", CurrencyCode: "NZD", BaseTemp: 13},
}

// defaultIDs is the initial working set shown before any user choice.
var defaultIDs = []string{"london", "new_york", "tokyo", "baku"}

// All returns a copy of the full directory.
func All() []City {
	out := make([]City, len(directory))
	copy(out, directory)
	return out
}

// Defaults returns the initial working set.
func Defaults() []City {
	return Lookup(defaultIDs)
}

// Lookup resolves a list of city ids to their directory records, preserving
// request order. Unknown ids are silently dropped; duplicate ids resolve to
// a single entry.
func Lookup(ids []string) []City {
	seen := make(map[string]bool, len(ids))
	var out []City
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if city, ok := ByID(id); ok {
			out = append(out, city)
			seen[id] = true
		}
	}
	return out
}

// ByID finds a single directory entry.
func ByID(id string) (City, bool) {
	for _, city := range directory {
		if city.ID == id {
			return city, true
		}
	}
	return City{}, false
}

// Search returns directory entries whose name or region contains the query,
// case-insensitively, sorted by name. An empty query returns everything.
func Search(query string) []City {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []City
	for _, city := range directory {
		if query == "" ||
			strings.Contains(strings.ToLower(city.Name), query) ||
			strings.Contains(strings.ToLower(city.Region), query) {
			out = append(out, city)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
