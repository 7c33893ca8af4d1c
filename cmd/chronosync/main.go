// Package main implements the chronosync CLI, a terminal dashboard for
// comparing local time, business hours, weather, and currency across cities.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	// Bundled zone database so conversions work on hosts without one.
	_ "time/tzdata"

	"github.com/codeGROOVE-dev/chronosync/pkg/advice"
	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
	"github.com/codeGROOVE-dev/chronosync/pkg/config"
	"github.com/codeGROOVE-dev/chronosync/pkg/currency"
	"github.com/codeGROOVE-dev/chronosync/pkg/ical"
	"github.com/codeGROOVE-dev/chronosync/pkg/planner"
	"github.com/codeGROOVE-dev/chronosync/pkg/promptcache"
	"github.com/codeGROOVE-dev/chronosync/pkg/sharestate"
	"github.com/codeGROOVE-dev/chronosync/pkg/timeline"
	"github.com/codeGROOVE-dev/chronosync/pkg/tzconvert"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
)

var (
	cityList     = flag.String("cities", "", "Comma-separated city ids (overrides config)")
	pinnedTime   = flag.String("time", "", "Pin the reference instant (RFC3339, e.g. 2025-07-04T16:30:00Z)")
	duration     = flag.Int("duration", 0, "Meeting duration in minutes (overrides config)")
	workHours    = flag.String("work-hours", "", "Business hours as start-end, e.g. 9-18 (overrides config)")
	best         = flag.Bool("best", false, "Find and pin the best meeting start on the reference date")
	askAdvice    = flag.Bool("advice", false, "Ask Gemini for scheduling advice (or set GEMINI_API_KEY)")
	share        = flag.Bool("share", false, "Print the shareable state string and exit")
	restoreState = flag.String("state", "", "Restore dashboard state from a shared state string")
	exportPath   = flag.String("export", "", "Write the meeting as an .ics file to this path, or - for stdout")
	filterMode   = flag.String("filter", "all", "City filter: all, business, or night")
	sortMode     = flag.String("sort", "manual", "City order: manual, time, or name")
	watch        = flag.Bool("watch", false, "Re-render the dashboard once per minute until interrupted")
	listCities   = flag.Bool("list", false, "List selectable cities and exit")
	configPath   = flag.String("config", "", "Config file path (or set CHRONOSYNC_CONFIG)")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	cacheDir     = flag.String("cache-dir", "", "Advice cache directory (or set CACHE_DIR)")
	noCache      = flag.Bool("no-cache", false, "Disable advice caching")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("chronosync CLI v1.2.0")
		return
	}

	if *listCities {
		printDirectory()
		return
	}

	// Local overrides; absence is fine.
	_ = godotenv.Load()

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if *configPath == "" {
		*configPath = os.Getenv("CHRONOSYNC_CONFIG")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", "path", *configPath, "error", err)
		os.Exit(1)
	}

	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *geminiModel == "" {
		*geminiModel = cfg.GeminiModel
	}
	if *cacheDir == "" {
		*cacheDir = os.Getenv("CACHE_DIR")
	}

	window := cfg.WorkWindow
	if *workHours != "" {
		window, err = parseWorkHours(*workHours)
		if err != nil {
			logger.Error("invalid -work-hours", "value", *workHours, "error", err)
			os.Exit(1)
		}
	}

	initialCities := cities.Defaults()
	if len(cfg.Cities) > 0 {
		if resolved := cities.Lookup(cfg.Cities); len(resolved) > 0 {
			initialCities = resolved
		}
	}
	if *cityList != "" {
		resolved := cities.Lookup(strings.Split(*cityList, ","))
		if len(resolved) == 0 {
			logger.Error("no known city ids in -cities", "value", *cityList)
			os.Exit(1)
		}
		initialCities = resolved
	}

	meetingMinutes := cfg.DurationMinutes
	if *duration > 0 {
		meetingMinutes = *duration
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := planner.NewWithLogger(ctx, logger,
		planner.WithCities(initialCities),
		planner.WithDuration(meetingMinutes),
		planner.WithWorkWindow(window),
		planner.WithTickInterval(cfg.Tick()),
	)
	defer p.Close()

	if *restoreState != "" {
		p.Restore(sharestate.DecodeQuery(*restoreState, p.ShareState()))
	}

	if *pinnedTime != "" {
		instant, parseErr := time.Parse(time.RFC3339, *pinnedTime)
		if parseErr != nil {
			logger.Error("invalid -time", "value", *pinnedTime, "error", parseErr)
			os.Exit(1)
		}
		p.Pin(instant)
	}

	if *best {
		start := p.BestMeetingTime()
		fmt.Printf("\n⭐ Best meeting start: %s UTC\n", start.Format("2006-01-02 15:04"))
	}

	if *share {
		fmt.Println(sharestate.Encode(p.ShareState()).Encode())
		return
	}

	p.Market().Advance()
	renderDashboard(p)

	if *exportPath != "" {
		if exportErr := writeICS(p, *exportPath); exportErr != nil {
			logger.Error("calendar export failed", "path", *exportPath, "error", exportErr)
			os.Exit(1)
		}
		if *exportPath != "-" {
			fmt.Printf("\n📅 Calendar event written to %s\n", *exportPath)
		}
	}

	if *askAdvice {
		printAdvice(ctx, p, logger)
	}

	if *watch {
		watchLoop(ctx, p, cfg.Tick())
	}
}

func parseWorkHours(spec string) (business.WorkWindow, error) {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return business.WorkWindow{}, fmt.Errorf("want start-end, got %q", spec)
	}
	start, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return business.WorkWindow{}, fmt.Errorf("bad start hour: %w", err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return business.WorkWindow{}, fmt.Errorf("bad end hour: %w", err)
	}
	window := business.WorkWindow{Start: start, End: end}
	if !window.Valid() {
		return window, fmt.Errorf("window %s is not within a single day", spec)
	}
	return window, nil
}

func printDirectory() {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "City", "Region", "Timezone", "Currency"})
	for _, city := range cities.All() {
		t.AppendRow(table.Row{city.ID, city.Name, city.Region, city.Timezone, city.CurrencyCode})
	}
	t.Render()
}

func renderDashboard(p *planner.Planner) {
	snap := p.Snapshot()

	mode := "live"
	if !snap.Live {
		mode = "pinned"
	}
	fmt.Printf("\n🌐 Chronosync — %s UTC (%s)\n",
		snap.Instant.Format("Mon 2006-01-02 15:04"), mode)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.AppendHeader(table.Row{"City", "Local Time", "Date", "Status", "Weather", "FX (per USD)"})

	for _, report := range p.Reports(planner.ParseFilter(*filterMode), planner.ParseSort(*sortMode)) {
		t.AppendRow(table.Row{
			report.City.Name,
			report.Fields.Clock() + dayOffsetSuffix(report.DayOffset),
			report.Fields.DateLabel(),
			timeline.StatusLabel(report.Status),
			fmt.Sprintf("%d°C %s", report.Weather.TempC, report.Weather.Condition),
			fxCell(p, report.City.CurrencyCode),
		})
	}
	t.Render()

	fmt.Println()
	markerSlot := snap.Instant.Hour()*4 + snap.Instant.Minute()/15
	fmt.Print(timeline.RenderStrip(p.Heatmap(), markerSlot))
	fmt.Print(timeline.Legend())
}

// dayOffsetSuffix marks cities whose local calendar date differs from UTC.
func dayOffsetSuffix(offset int) string {
	switch {
	case offset > 0:
		return " (+1d)"
	case offset < 0:
		return " (-1d)"
	default:
		return ""
	}
}

func fxCell(p *planner.Planner, code string) string {
	rate, err := p.Market().Rate(code)
	if err != nil {
		return "—"
	}
	arrow := ""
	switch p.Market().Trend(code) {
	case currency.TrendUp:
		arrow = " ↑"
	case currency.TrendDown:
		arrow = " ↓"
	}
	return fmt.Sprintf("%s %.2f%s", code, rate, arrow)
}

func writeICS(p *planner.Planner, path string) error {
	snap := p.Snapshot()
	lines := make([]ical.CityLine, 0, len(snap.Cities))
	for _, city := range snap.Cities {
		lines = append(lines, ical.CityLine{
			Name:      city.Name,
			LocalTime: tzconvert.LocalFields(snap.Instant, city.Timezone).Clock(),
		})
	}
	event := ical.Event(snap.Instant, snap.Duration, lines)
	if path == "-" {
		_, err := os.Stdout.Write(event)
		return err
	}
	return os.WriteFile(path, event, 0o644)
}

func printAdvice(ctx context.Context, p *planner.Planner, logger *slog.Logger) {
	var cache advice.CacheInterface
	if !*noCache {
		if *cacheDir != "" {
			diskCache, err := promptcache.New(ctx, *cacheDir, 24*time.Hour, logger)
			if err != nil {
				logger.Warn("disk cache unavailable, using memory", "error", err)
				cache = promptcache.NewMemoryOnly(24*time.Hour, logger)
			} else {
				defer func() {
					if closeErr := diskCache.Close(); closeErr != nil {
						logger.Debug("cache close failed", "error", closeErr)
					}
				}()
				cache = diskCache
			}
		} else {
			cache = promptcache.NewMemoryOnly(24*time.Hour, logger)
		}
	}

	client := advice.NewClient(*geminiAPIKey, *geminiModel, cache, logger)

	snap := p.Snapshot()
	entries := make([]advice.Entry, 0, len(snap.Cities))
	for _, city := range snap.Cities {
		entries = append(entries, advice.Entry{
			CityName:  city.Name,
			LocalTime: tzconvert.LocalFields(snap.Instant, city.Timezone).Clock(),
		})
	}

	fmt.Println("\n🤖 Scheduling Advice")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Println(client.Generate(ctx, entries, snap.Duration, snap.Instant))
}

func watchLoop(ctx context.Context, p *planner.Planner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Market().Advance()
			fmt.Print("\033[H\033[2J")
			renderDashboard(p)
		}
	}
}
