package planner

import (
	"sort"

	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
	"github.com/codeGROOVE-dev/chronosync/pkg/tzconvert"
	"github.com/codeGROOVE-dev/chronosync/pkg/weather"
)

// Filter selects which cities appear in a report listing.
type Filter int

const (
	FilterAll      Filter = iota // every tracked city
	FilterBusiness               // Active or Overtime only
	FilterNight                  // Asleep only
)

// ParseFilter maps a user-supplied mode name onto a Filter; anything
// unrecognized means no filtering.
func ParseFilter(name string) Filter {
	switch name {
	case "business":
		return FilterBusiness
	case "night":
		return FilterNight
	default:
		return FilterAll
	}
}

// Sort selects the ordering of a report listing.
type Sort int

const (
	SortManual Sort = iota // working-set insertion order
	SortTime               // latest local time first
	SortName               // alphabetical by city name
)

// ParseSort maps a user-supplied mode name onto a Sort; anything
// unrecognized keeps the manual order.
func ParseSort(name string) Sort {
	switch name {
	case "time":
		return SortTime
	case "name":
		return SortName
	default:
		return SortManual
	}
}

// CityReport is the fully derived per-city view at one instant.
type CityReport struct {
	City      cities.City
	Fields    tzconvert.Fields
	DayOffset int
	Status    business.Status
	Weather   weather.Report
}

// Reports derives the per-city view from one snapshot, filtered and ordered
// as requested. Every report in the result reflects the same instant.
func (p *Planner) Reports(filter Filter, order Sort) []CityReport {
	snap := p.Snapshot()

	reports := make([]CityReport, 0, len(snap.Cities))
	for _, city := range snap.Cities {
		fields := tzconvert.LocalFields(snap.Instant, city.Timezone)
		report := CityReport{
			City:      city,
			Fields:    fields,
			DayOffset: tzconvert.DayOffset(snap.Instant, city.Timezone),
			Status:    business.Classify(fields.Hour, fields.Minute, snap.Duration, snap.Window),
			Weather:   weather.Current(city, snap.Instant),
		}
		if !matchesFilter(report.Status, filter) {
			continue
		}
		reports = append(reports, report)
	}

	switch order {
	case SortTime:
		sort.SliceStable(reports, func(i, j int) bool {
			a := tzconvert.DecimalHour(reports[i].Fields.Hour, reports[i].Fields.Minute)
			b := tzconvert.DecimalHour(reports[j].Fields.Hour, reports[j].Fields.Minute)
			return a > b
		})
	case SortName:
		sort.SliceStable(reports, func(i, j int) bool {
			return reports[i].City.Name < reports[j].City.Name
		})
	case SortManual:
		// keep insertion order
	}

	return reports
}

func matchesFilter(status business.Status, filter Filter) bool {
	switch filter {
	case FilterBusiness:
		return status == business.Active || status == business.Overtime
	case FilterNight:
		return status == business.Asleep
	default:
		return true
	}
}
