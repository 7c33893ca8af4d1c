// Package config loads dashboard defaults from an optional YAML file.
// Flags and environment variables override anything set here.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/codeGROOVE-dev/chronosync/pkg/business"
	"github.com/codeGROOVE-dev/chronosync/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config holds the user-adjustable defaults.
type Config struct {
	// Cities is the initial working set of city ids.
	Cities []string `yaml:"cities"`
	// WorkWindow is the shared business-hours interval in local decimal hours.
	WorkWindow business.WorkWindow `yaml:"work_window"`
	// DurationMinutes is the default meeting length.
	DurationMinutes int `yaml:"duration_minutes"`
	// TickSeconds is the live-mode resync cadence.
	TickSeconds int `yaml:"tick_seconds"`
	// GeminiModel names the model used for scheduling advice.
	GeminiModel string `yaml:"gemini_model"`
}

// Tick returns the live-mode resync cadence as a duration.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WorkWindow:      business.DefaultWorkWindow(),
		DurationMinutes: constants.DefaultMeetingMinutes,
		TickSeconds:     int(constants.LiveTickInterval / time.Second),
	}
}

// Load reads a YAML config file and overlays it on the defaults. A missing
// file is not an error; a malformed file or nonsense window is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if !cfg.WorkWindow.Valid() {
		return cfg, fmt.Errorf("invalid work window %.1f-%.1f", cfg.WorkWindow.Start, cfg.WorkWindow.End)
	}
	if cfg.DurationMinutes <= 0 {
		return cfg, fmt.Errorf("invalid meeting duration %d", cfg.DurationMinutes)
	}
	if cfg.TickSeconds <= 0 {
		return cfg, fmt.Errorf("invalid tick interval %ds", cfg.TickSeconds)
	}

	return cfg, nil
}
