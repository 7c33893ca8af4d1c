// Package planner owns the dashboard's mutable state: the working set of
// cities, the shared reference instant with its live/pinned mode, the
// meeting duration, and the work window.
//
// All reads go through immutable snapshots and every derived value is a
// pure function of one snapshot, so a pinned instant is visible to all
// dependent state before the next live tick can fire. The live ticker is a
// single cancellable task: switching modes always cancels the previous
// ticker before starting a new one, so at most one is running at any time.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
	"github.com/codeGROOVE-dev/chronosync/pkg/constants"
	"github.com/codeGROOVE-dev/chronosync/pkg/currency"
	"github.com/codeGROOVE-dev/chronosync/pkg/meeting"
	"github.com/codeGROOVE-dev/chronosync/pkg/sharestate"
	"github.com/maypok86/otter/v2"
)

// Planner coordinates all mutable dashboard state.
type Planner struct {
	logger     *slog.Logger
	clock      func() time.Time
	baseCtx    context.Context
	tickCancel context.CancelFunc
	heatmaps   *otter.Cache[string, []float64]
	market     *currency.Market
	cities     []cities.City
	window     business.WorkWindow
	instant    time.Time
	tick       time.Duration
	duration   int
	live       bool
	tickWg     sync.WaitGroup
	mu         sync.Mutex
}

// Snapshot is an immutable copy of the planner state at one moment.
type Snapshot struct {
	Instant  time.Time
	Cities   []cities.City
	Window   business.WorkWindow
	Duration int
	Live     bool
}

// NewWithLogger creates a planner in live mode with the ticker running.
// Close must be called to stop it.
func NewWithLogger(ctx context.Context, logger *slog.Logger, opts ...Option) *Planner {
	optHolder := &OptionHolder{
		cities:       cities.Defaults(),
		duration:     constants.DefaultMeetingMinutes,
		window:       business.DefaultWorkWindow(),
		tickInterval: constants.LiveTickInterval,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(optHolder)
	}

	p := &Planner{
		logger:   logger,
		clock:    optHolder.clock,
		baseCtx:  ctx,
		cities:   optHolder.cities,
		window:   optHolder.window,
		duration: optHolder.duration,
		tick:     optHolder.tickInterval,
		market:   currency.NewMarket(),
		heatmaps: otter.Must(&otter.Options[string, []float64]{
			MaximumSize: 64,
		}),
	}
	p.instant = p.clock().UTC()
	p.live = true
	p.startTicker()
	return p
}

// Close stops the live ticker, if any.
func (p *Planner) Close() {
	p.mu.Lock()
	p.stopTickerLocked()
	p.mu.Unlock()
	p.tickWg.Wait()
}

// Snapshot returns an immutable copy of the current state. A zero instant
// can never escape: it is replaced with the current time before copying.
func (p *Planner) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Planner) snapshotLocked() Snapshot {
	if p.instant.IsZero() {
		p.instant = p.clock().UTC()
	}
	cityCopy := make([]cities.City, len(p.cities))
	copy(cityCopy, p.cities)
	return Snapshot{
		Instant:  p.instant,
		Cities:   cityCopy,
		Window:   p.window,
		Duration: p.duration,
		Live:     p.live,
	}
}

// AddCity appends a city to the working set unless its id is already
// present. It reports whether the set changed.
func (p *Planner) AddCity(city cities.City) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.cities {
		if existing.ID == city.ID {
			return false
		}
	}
	p.cities = append(p.cities, city)
	p.logger.Debug("city added", "id", city.ID, "count", len(p.cities))
	return true
}

// RemoveCity drops a city by id and reports whether it was present.
func (p *Planner) RemoveCity(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.cities {
		if existing.ID == id {
			p.cities = append(p.cities[:i], p.cities[i+1:]...)
			p.logger.Debug("city removed", "id", id, "count", len(p.cities))
			return true
		}
	}
	return false
}

// SetDuration updates the meeting duration; non-positive values are
// ignored.
func (p *Planner) SetDuration(minutes int) {
	if minutes <= 0 {
		p.logger.Warn("ignoring non-positive duration", "minutes", minutes)
		return
	}
	p.mu.Lock()
	p.duration = minutes
	p.mu.Unlock()
}

// Pin fixes the reference instant and leaves live mode. A zero instant is
// replaced with the current time, so the reference can never become
// invalid.
func (p *Planner) Pin(instant time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if instant.IsZero() {
		instant = p.clock().UTC()
	}
	p.stopTickerLocked()
	p.instant = instant.UTC()
	p.live = false
	p.logger.Debug("reference pinned", "instant", p.instant)
}

// GoLive resynchronizes the reference instant to the wall clock and resumes
// periodic advancement. The previous ticker, if any, is cancelled before the
// new one starts.
func (p *Planner) GoLive() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
	p.instant = p.clock().UTC()
	p.live = true
	p.startTickerLocked()
	p.logger.Debug("reference live", "instant", p.instant)
}

// startTicker acquires the lock before delegating; used from New.
func (p *Planner) startTicker() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTickerLocked()
}

// startTickerLocked launches the live resync loop. Callers must hold the
// lock and must have cancelled any previous ticker first.
func (p *Planner) startTickerLocked() {
	ctx, cancel := context.WithCancel(p.baseCtx)
	p.tickCancel = cancel

	p.tickWg.Add(1)
	go func() {
		defer p.tickWg.Done()

		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.mu.Lock()
				if p.live {
					p.instant = p.clock().UTC()
				}
				p.mu.Unlock()
			}
		}
	}()
}

// stopTickerLocked cancels the running ticker, if any. Callers must hold
// the lock.
func (p *Planner) stopTickerLocked() {
	if p.tickCancel != nil {
		p.tickCancel()
		p.tickCancel = nil
	}
}

// BestMeetingTime searches the reference date for the start time keeping
// the most cities in business hours, pins the result, and returns it.
func (p *Planner) BestMeetingTime() time.Time {
	snapshot := p.Snapshot()
	best := meeting.FindBestStart(snapshot.Cities, snapshot.Duration, snapshot.Instant, snapshot.Window)
	p.Pin(best)
	p.logger.Info("best meeting time selected",
		"start", best, "cities", len(snapshot.Cities), "duration_minutes", snapshot.Duration)
	return best
}

// Heatmap returns the 96-slot overlap density strip for the current city
// set, memoized on the exact (city ids, window) tuple that produced it.
// The cache is a performance shortcut only; entries are never patched, and
// callers always get their own copy so they cannot patch one either.
func (p *Planner) Heatmap() []float64 {
	snapshot := p.Snapshot()

	key := heatmapKey(snapshot.Cities, snapshot.Window)
	scores, found := p.heatmaps.GetIfPresent(key)
	if !found {
		scores = meeting.OverlapScores(snapshot.Cities, snapshot.Window)
		p.heatmaps.Set(key, scores)
	}

	out := make([]float64, len(scores))
	copy(out, scores)
	return out
}

func heatmapKey(cityList []cities.City, window business.WorkWindow) string {
	ids := make([]string, 0, len(cityList))
	for _, city := range cityList {
		ids = append(ids, city.ID)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%s|%.2f-%.2f", strings.Join(ids, ","), window.Start, window.End)
}

// Market exposes the simulated currency board.
func (p *Planner) Market() *currency.Market {
	return p.market
}

// ShareState exports the compact external representation of the current
// state for links and bookmarks.
func (p *Planner) ShareState() sharestate.State {
	snapshot := p.Snapshot()
	ids := make([]string, 0, len(snapshot.Cities))
	for _, city := range snapshot.Cities {
		ids = append(ids, city.ID)
	}
	return sharestate.State{
		CityIDs:  ids,
		Instant:  snapshot.Instant,
		Pinned:   !snapshot.Live,
		Duration: snapshot.Duration,
	}
}

// Restore applies a decoded share state: city ids resolve through the
// directory (unknown ids dropped; if none resolve the prior set is kept),
// a pinned instant takes effect immediately, and a positive duration
// replaces the current one.
func (p *Planner) Restore(state sharestate.State) {
	restored := cities.Lookup(state.CityIDs)

	p.mu.Lock()
	if len(restored) > 0 {
		p.cities = restored
	}
	if state.Duration > 0 {
		p.duration = state.Duration
	}
	p.mu.Unlock()

	if state.Pinned && !state.Instant.IsZero() {
		p.Pin(state.Instant)
	}
	p.logger.Debug("state restored",
		"cities", len(restored), "pinned", state.Pinned, "duration", state.Duration)
}
