// Package main implements the chronosync JSON API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/codeGROOVE-dev/chronosync/pkg/advice"
	"github.com/codeGROOVE-dev/chronosync/pkg/cities"
	"github.com/codeGROOVE-dev/chronosync/pkg/config"
	"github.com/codeGROOVE-dev/chronosync/pkg/ical"
	"github.com/codeGROOVE-dev/chronosync/pkg/planner"
	"github.com/codeGROOVE-dev/chronosync/pkg/promptcache"
	"github.com/codeGROOVE-dev/chronosync/pkg/sharestate"
	"github.com/codeGROOVE-dev/chronosync/pkg/tzconvert"
	"github.com/codeGROOVE-dev/chronosync/pkg/weather"
	"github.com/joho/godotenv"
)

var (
	port         = flag.String("port", "8080", "Port for web server")
	geminiAPIKey = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel  = flag.String("gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	configPath   = flag.String("config", "", "Config file path (or set CHRONOSYNC_CONFIG)")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

type rateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	// Rate limit: 60 requests per minute per IP
	if len(valid) >= 60 {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println("chronosync Server v1.2.0")
		return
	}

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *configPath == "" {
		*configPath = os.Getenv("CHRONOSYNC_CONFIG")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *geminiModel == "" {
		*geminiModel = cfg.GeminiModel
	}

	logger.Info("Server configuration",
		"port", *port,
		"verbose", *verbose,
		"gemini_model", *geminiModel,
		"has_gemini_key", *geminiAPIKey != "")

	initialCities := cities.Defaults()
	if len(cfg.Cities) > 0 {
		if resolved := cities.Lookup(cfg.Cities); len(resolved) > 0 {
			initialCities = resolved
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := planner.NewWithLogger(ctx, logger,
		planner.WithCities(initialCities),
		planner.WithDuration(cfg.DurationMinutes),
		planner.WithWorkWindow(cfg.WorkWindow),
		planner.WithTickInterval(cfg.Tick()),
	)
	defer p.Close()

	adviceCache := promptcache.NewMemoryOnly(12*time.Hour, logger)
	defer func() {
		if closeErr := adviceCache.Close(); closeErr != nil {
			logger.Error("Failed to close advice cache", "error", closeErr)
		}
	}()

	srv := &server{
		planner: p,
		advisor: advice.NewClient(*geminiAPIKey, *geminiModel, adviceCache, logger),
		limiter: newRateLimiter(),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("GET /api/v1/dashboard", srv.handleDashboard)
	mux.HandleFunc("GET /api/v1/cities", srv.handleCities)
	mux.HandleFunc("POST /api/v1/cities", srv.handleCityAdd)
	mux.HandleFunc("DELETE /api/v1/cities/{id}", srv.handleCityRemove)
	mux.HandleFunc("POST /api/v1/pin", srv.handlePin)
	mux.HandleFunc("POST /api/v1/live", srv.handleLive)
	mux.HandleFunc("POST /api/v1/duration", srv.handleDuration)
	mux.HandleFunc("POST /api/v1/best", srv.handleBest)
	mux.HandleFunc("GET /api/v1/heatmap", srv.handleHeatmap)
	mux.HandleFunc("POST /api/v1/advice", srv.handleAdvice)
	mux.HandleFunc("GET /api/v1/share", srv.handleShare)
	mux.HandleFunc("POST /api/v1/restore", srv.handleRestore)
	mux.HandleFunc("GET /api/v1/export.ics", srv.handleExport)

	antiCSRF := http.NewCrossOriginProtection()

	httpServer := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv.wrap(antiCSRF.Handler(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", *port)
		if serveErr := httpServer.ListenAndServe(); serveErr != http.ErrServerClosed {
			logger.Error("Server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

type server struct {
	planner *planner.Planner
	advisor *advice.Client
	limiter *rateLimiter
	logger  *slog.Logger
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		}

		if !s.limiter.allow(clientIP(r)) {
			s.logger.Warn("Rate limit exceeded",
				"request_id", requestID, "client_ip", clientIP(r), "path", r.URL.Path)
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	return strings.Split(r.RemoteAddr, ":")[0]
}

func (s *server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response",
			"request_id", w.Header().Get("X-Request-ID"), "error", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// cityView is one dashboard row.
type cityView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Region    string         `json:"region"`
	Timezone  string         `json:"timezone"`
	LocalTime string         `json:"local_time"`
	LocalDate string         `json:"local_date"`
	DayOffset int            `json:"day_offset"`
	Status    string         `json:"status"`
	Weather   weather.Report `json:"weather"`
	Currency  string         `json:"currency"`
	FXRate    float64        `json:"fx_rate"`
	FXTrend   string         `json:"fx_trend"`
}

type dashboardView struct {
	Instant  time.Time  `json:"instant"`
	Live     bool       `json:"live"`
	Duration int        `json:"duration_minutes"`
	Window   [2]float64 `json:"work_window"`
	Cities   []cityView `json:"cities"`
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.planner.Market().Advance()
	snap := s.planner.Snapshot()

	reports := s.planner.Reports(
		planner.ParseFilter(r.URL.Query().Get("filter")),
		planner.ParseSort(r.URL.Query().Get("sort")))

	views := make([]cityView, 0, len(reports))
	for _, report := range reports {
		view := cityView{
			ID:        report.City.ID,
			Name:      report.City.Name,
			Region:    report.City.Region,
			Timezone:  report.City.Timezone,
			LocalTime: report.Fields.Clock(),
			LocalDate: report.Fields.DateLabel(),
			DayOffset: report.DayOffset,
			Status:    report.Status.String(),
			Weather:   report.Weather,
			Currency:  report.City.CurrencyCode,
			FXTrend:   s.planner.Market().Trend(report.City.CurrencyCode).String(),
		}
		if rate, err := s.planner.Market().Rate(report.City.CurrencyCode); err == nil {
			view.FXRate = rate
		}
		views = append(views, view)
	}

	s.writeJSON(w, dashboardView{
		Instant:  snap.Instant,
		Live:     snap.Live,
		Duration: snap.Duration,
		Window:   [2]float64{snap.Window.Start, snap.Window.End},
		Cities:   views,
	})
}

func (s *server) handleCities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, cities.Search(r.URL.Query().Get("q")))
}

func (s *server) handleCityAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	city, ok := cities.ByID(strings.TrimSpace(req.ID))
	if !ok {
		http.Error(w, "Unknown city", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]bool{"added": s.planner.AddCity(city)})
}

func (s *server) handleCityRemove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		http.Error(w, "Missing city id", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]bool{"removed": s.planner.RemoveCity(id)})
}

func (s *server) handlePin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// An absent time pins "now"; a malformed one is a client error.
	var instant time.Time
	if req.Time != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.Time)
		if parseErr != nil {
			http.Error(w, "Invalid time", http.StatusBadRequest)
			return
		}
		instant = parsed
	}
	s.planner.Pin(instant)
	s.writeJSON(w, map[string]any{"instant": s.planner.Snapshot().Instant, "live": false})
}

func (s *server) handleLive(w http.ResponseWriter, _ *http.Request) {
	s.planner.GoLive()
	s.writeJSON(w, map[string]any{"instant": s.planner.Snapshot().Instant, "live": true})
}

func (s *server) handleDuration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Minutes <= 0 {
		http.Error(w, "Duration must be positive", http.StatusBadRequest)
		return
	}
	s.planner.SetDuration(req.Minutes)
	s.writeJSON(w, map[string]int{"duration_minutes": req.Minutes})
}

func (s *server) handleBest(w http.ResponseWriter, _ *http.Request) {
	start := s.planner.BestMeetingTime()
	s.writeJSON(w, map[string]any{"start": start, "live": false})
}

func (s *server) handleHeatmap(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]any{"slots": s.planner.Heatmap()})
}

func (s *server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap := s.planner.Snapshot()

	entries := make([]advice.Entry, 0, len(snap.Cities))
	for _, city := range snap.Cities {
		entries = append(entries, advice.Entry{
			CityName:  city.Name,
			LocalTime: tzconvert.LocalFields(snap.Instant, city.Timezone).Clock(),
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	text := s.advisor.Generate(ctx, entries, snap.Duration, snap.Instant)
	s.logger.Info("Advice request completed",
		"request_id", w.Header().Get("X-Request-ID"),
		"configured", s.advisor.Configured(),
		"duration_ms", time.Since(start).Milliseconds())

	s.writeJSON(w, map[string]string{"advice": text})
}

func (s *server) handleShare(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{
		"query": sharestate.Encode(s.planner.ShareState()).Encode(),
	})
}

func (s *server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	s.planner.Restore(sharestate.DecodeQuery(req.Query, s.planner.ShareState()))
	s.writeJSON(w, map[string]string{"status": "restored"})
}

func (s *server) handleExport(w http.ResponseWriter, _ *http.Request) {
	snap := s.planner.Snapshot()
	lines := make([]ical.CityLine, 0, len(snap.Cities))
	for _, city := range snap.Cities {
		lines = append(lines, ical.CityLine{
			Name:      city.Name,
			LocalTime: tzconvert.LocalFields(snap.Instant, city.Timezone).Clock(),
		})
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chronosync-meeting.ics"`)
	if _, err := w.Write(ical.Event(snap.Instant, snap.Duration, lines)); err != nil {
		s.logger.Error("Failed to write calendar",
			"request_id", w.Header().Get("X-Request-ID"), "error", err)
	}
}
