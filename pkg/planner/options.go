package planner

import (
	"time"

	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
)

// OptionHolder collects construction options.
type OptionHolder struct {
	cities       []cities.City
	duration     int
	window       business.WorkWindow
	tickInterval time.Duration
	clock        func() time.Time
}

// Option configures a Planner at construction time.
type Option func(*OptionHolder)

// WithCities sets the initial working set.
func WithCities(list []cities.City) Option {
	return func(o *OptionHolder) { o.cities = list }
}

// WithDuration sets the initial meeting duration in minutes.
func WithDuration(minutes int) Option {
	return func(o *OptionHolder) { o.duration = minutes }
}

// WithWorkWindow sets the shared business-hours window.
func WithWorkWindow(window business.WorkWindow) Option {
	return func(o *OptionHolder) { o.window = window }
}

// WithTickInterval overrides the live-mode resync cadence.
func WithTickInterval(interval time.Duration) Option {
	return func(o *OptionHolder) { o.tickInterval = interval }
}

// WithClock substitutes the wall-clock source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *OptionHolder) { o.clock = clock }
}
