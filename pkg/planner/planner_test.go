package planner

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
	"github.com/codeGROOVE-dev/chronosync/pkg/sharestate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeClock is a settable wall clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newTestPlanner(t *testing.T, opts ...Option) *Planner {
	t.Helper()
	p := NewWithLogger(context.Background(), testLogger(), opts...)
	t.Cleanup(p.Close)
	return p
}

func TestSnapshotDefaults(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	p := newTestPlanner(t, WithClock(clock.Now))

	snap := p.Snapshot()
	if !snap.Live {
		t.Error("new planner should start live")
	}
	if !snap.Instant.Equal(clock.Now()) {
		t.Errorf("instant = %v, want %v", snap.Instant, clock.Now())
	}
	if len(snap.Cities) != 4 {
		t.Errorf("default city count = %d, want 4", len(snap.Cities))
	}
	if snap.Duration != 60 {
		t.Errorf("duration = %d, want 60", snap.Duration)
	}
}

func TestAddCityDeduplicates(t *testing.T) {
	p := newTestPlanner(t)
	paris, ok := cities.ByID("paris")
	if !ok {
		t.Fatal("paris missing from directory")
	}

	if !p.AddCity(paris) {
		t.Error("first add should succeed")
	}
	if p.AddCity(paris) {
		t.Error("second add of same id should be a no-op")
	}

	count := 0
	for _, city := range p.Snapshot().Cities {
		if city.ID == "paris" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("paris appears %d times, want 1", count)
	}
}

func TestRemoveCity(t *testing.T) {
	p := newTestPlanner(t)
	if !p.RemoveCity("tokyo") {
		t.Error("removing a present city should report true")
	}
	if p.RemoveCity("tokyo") {
		t.Error("removing an absent city should report false")
	}
	for _, city := range p.Snapshot().Cities {
		if city.ID == "tokyo" {
			t.Error("tokyo still present after removal")
		}
	}
}

func TestPinStopsLiveMode(t *testing.T) {
	p := newTestPlanner(t)
	pinned := time.Date(2025, 7, 4, 16, 30, 0, 0, time.UTC)

	p.Pin(pinned)

	snap := p.Snapshot()
	if snap.Live {
		t.Error("pinned planner should not be live")
	}
	if !snap.Instant.Equal(pinned) {
		t.Errorf("instant = %v, want %v", snap.Instant, pinned)
	}
}

func TestPinZeroInstantSubstitutesNow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	p := newTestPlanner(t, WithClock(clock.Now))

	p.Pin(time.Time{})

	snap := p.Snapshot()
	if snap.Instant.IsZero() {
		t.Fatal("zero instant escaped")
	}
	if !snap.Instant.Equal(clock.Now()) {
		t.Errorf("instant = %v, want substituted %v", snap.Instant, clock.Now())
	}
}

func TestGoLiveResyncsInstant(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	p := newTestPlanner(t, WithClock(clock.Now))

	p.Pin(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	clock.Set(time.Date(2025, 3, 15, 13, 0, 0, 0, time.UTC))
	p.GoLive()

	snap := p.Snapshot()
	if !snap.Live {
		t.Error("planner should be live after GoLive")
	}
	if !snap.Instant.Equal(clock.Now()) {
		t.Errorf("instant = %v, want resynced %v", snap.Instant, clock.Now())
	}
}

func TestLiveTickerAdvancesInstant(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	p := newTestPlanner(t, WithClock(clock.Now), WithTickInterval(2*time.Millisecond))

	clock.Set(time.Date(2025, 3, 15, 12, 5, 0, 0, time.UTC))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Snapshot().Instant.Equal(clock.Now()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("live ticker never resynced the instant")
}

func TestPinnedInstantIgnoresTicker(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	p := newTestPlanner(t, WithClock(clock.Now), WithTickInterval(2*time.Millisecond))

	pinned := time.Date(2025, 7, 4, 16, 30, 0, 0, time.UTC)
	p.Pin(pinned)
	clock.Set(time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC))

	time.Sleep(20 * time.Millisecond)
	if got := p.Snapshot().Instant; !got.Equal(pinned) {
		t.Errorf("pinned instant drifted to %v", got)
	}
}

func TestBestMeetingTimePinsResult(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC)}
	london, _ := cities.ByID("london")
	p := newTestPlanner(t,
		WithClock(clock.Now),
		WithCities([]cities.City{london}))

	best := p.BestMeetingTime()

	snap := p.Snapshot()
	if snap.Live {
		t.Error("planner should be pinned after BestMeetingTime")
	}
	if !snap.Instant.Equal(best) {
		t.Errorf("instant = %v, want pinned best %v", snap.Instant, best)
	}
	if best.Year() != 2025 || best.Month() != 3 || best.Day() != 15 {
		t.Errorf("best start %v left the reference date", best)
	}
}

func TestHeatmapShapeAndStability(t *testing.T) {
	p := newTestPlanner(t)

	first := p.Heatmap()
	if len(first) != 96 {
		t.Fatalf("heatmap has %d slots, want 96", len(first))
	}

	second := p.Heatmap()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slot %d changed between identical queries: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestHeatmapCallerMutationDoesNotLeak(t *testing.T) {
	p := newTestPlanner(t)

	first := p.Heatmap()
	want := make([]float64, len(first))
	copy(want, first)

	for i := range first {
		first[i] = -1
	}

	second := p.Heatmap()
	for i := range second {
		if second[i] != want[i] {
			t.Fatalf("slot %d corrupted by caller mutation: got %v, want %v", i, second[i], want[i])
		}
	}
}

func TestHeatmapReactsToCityChanges(t *testing.T) {
	utcOnly, _ := cities.ByID("london")
	p := newTestPlanner(t, WithCities([]cities.City{utcOnly}))

	before := p.Heatmap()
	tokyo, _ := cities.ByID("tokyo")
	p.AddCity(tokyo)
	after := p.Heatmap()

	same := true
	for i := range before {
		if before[i] != after[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("heatmap unchanged after adding a city in a different zone")
	}
}

func TestShareStateRoundTrip(t *testing.T) {
	p := newTestPlanner(t)
	pinned := time.Date(2025, 7, 4, 16, 30, 0, 0, time.UTC)
	p.Pin(pinned)
	p.SetDuration(90)

	state := p.ShareState()
	if !state.Pinned {
		t.Error("share state should reflect pinned mode")
	}
	if !state.Instant.Equal(pinned) {
		t.Errorf("share instant = %v, want %v", state.Instant, pinned)
	}
	if state.Duration != 90 {
		t.Errorf("share duration = %d, want 90", state.Duration)
	}

	other := newTestPlanner(t)
	other.Restore(state)
	snap := other.Snapshot()
	if snap.Live || !snap.Instant.Equal(pinned) || snap.Duration != 90 {
		t.Errorf("restored snapshot = %+v", snap)
	}
}

func TestRestoreKeepsPriorCitiesWhenNoneResolve(t *testing.T) {
	p := newTestPlanner(t)
	before := p.Snapshot().Cities

	p.Restore(sharestate.State{CityIDs: []string{"atlantis", "el_dorado"}})

	after := p.Snapshot().Cities
	if len(after) != len(before) {
		t.Errorf("city set changed: %d -> %d", len(before), len(after))
	}
}

func TestRestoreIgnoresNonPositiveDuration(t *testing.T) {
	p := newTestPlanner(t)
	p.Restore(sharestate.State{Duration: -15})
	if got := p.Snapshot().Duration; got != 60 {
		t.Errorf("duration = %d, want untouched 60", got)
	}
}

func TestWorkWindowOptionFlowsThrough(t *testing.T) {
	window := business.WorkWindow{Start: 8, End: 16}
	p := newTestPlanner(t, WithWorkWindow(window))
	if got := p.Snapshot().Window; got != window {
		t.Errorf("window = %+v, want %+v", got, window)
	}
}
