// Package config loads siftly-timeline settings from TOML or YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/andareed/siftly-timeline/measure"
	"github.com/andareed/siftly-timeline/provider"
	"github.com/andareed/siftly-timeline/timeline"
	"github.com/andareed/siftly-timeline/timewindow"
	"github.com/andareed/siftly-timeline/vgrid"
)

// Config is the full application configuration.
type Config struct {
	Timeline TimelineConfig `toml:"timeline" yaml:"timeline"`
	Grid     GridConfig     `toml:"grid" yaml:"grid"`
	Provider ProviderConfig `toml:"provider" yaml:"provider"`
	UI       UIConfig       `toml:"ui" yaml:"ui"`
}

// TimelineConfig controls bucket derivation.
type TimelineConfig struct {
	Window         string   `toml:"window" yaml:"window"`
	Ladder         []string `toml:"ladder" yaml:"ladder"`
	MinBucketWidth float64  `toml:"min_bucket_width" yaml:"min_bucket_width"`
	MaxLabels      int      `toml:"max_labels" yaml:"max_labels"`
	Resolutions    []string `toml:"resolutions" yaml:"resolutions"`
	LabelWidth     int      `toml:"label_width" yaml:"label_width"`
}

// GridConfig controls the monitor grid.
type GridConfig struct {
	EstimatedWidth  float64 `toml:"estimated_width" yaml:"estimated_width"`
	EstimatedHeight float64 `toml:"estimated_height" yaml:"estimated_height"`
	Overscan        int     `toml:"overscan" yaml:"overscan"`
	MinNameWidth    float64 `toml:"min_name_width" yaml:"min_name_width"`
	MaxNameWidth    float64 `toml:"max_name_width" yaml:"max_name_width"`
	SampleSize      int     `toml:"sample_size" yaml:"sample_size"`
	// FixedRowHeight draws every monitor on one line. When false, long
	// names wrap and monitors with several environments get one strip per
	// environment.
	FixedRowHeight bool `toml:"fixed_row_height" yaml:"fixed_row_height"`
}

// ProviderConfig selects and tunes the bucket data source.
type ProviderConfig struct {
	Endpoint string `toml:"endpoint" yaml:"endpoint"`
	Token    string `toml:"token" yaml:"token"`
	// DataFile serves buckets from a local JSON file instead of Endpoint.
	DataFile    string        `toml:"data_file" yaml:"data_file"`
	Timeout     time.Duration `toml:"timeout" yaml:"timeout"`
	ChunkSize   int           `toml:"chunk_size" yaml:"chunk_size"`
	MaxParallel int           `toml:"max_parallel" yaml:"max_parallel"`
}

// UIConfig controls the terminal front end.
type UIConfig struct {
	// RefreshInterval re-resolves the window against the clock; 0 disables.
	RefreshInterval time.Duration `toml:"refresh_interval" yaml:"refresh_interval"`
	WatchMonitors   bool          `toml:"watch_monitors" yaml:"watch_monitors"`
	OSC52           bool          `toml:"osc52" yaml:"osc52"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeline: TimelineConfig{
			Window:         string(timewindow.DefaultToken),
			Ladder:         []string{"1m", "5m", "10m", "15m", "30m", "1h", "2h", "3h", "6h", "12h", "1d"},
			MinBucketWidth: 1,
			MaxLabels:      8,
			Resolutions:    []string{"1m", "5m", "10m", "15m", "30m", "1h", "2h", "3h", "6h", "12h", "1d"},
			LabelWidth:     32,
		},
		Grid: GridConfig{
			EstimatedWidth:  10,
			EstimatedHeight: 1,
			Overscan:        3,
			MinNameWidth:    8,
			MaxNameWidth:    32,
			SampleSize:      50,
			FixedRowHeight:  true,
		},
		Provider: ProviderConfig{
			Timeout:     15 * time.Second,
			ChunkSize:   50,
			MaxParallel: 4,
		},
		UI: UIConfig{
			RefreshInterval: time.Minute,
			WatchMonitors:   true,
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	if env := os.Getenv("SIFTLY_TIMELINE_CONFIG"); env != "" {
		return env
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "siftly-timeline", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "siftly-timeline", "config.toml")
}

// Load reads path over the defaults. An empty path means DefaultPath, which
// may be absent; an explicit path must exist. Files ending in .yaml or .yml
// are YAML, everything else TOML. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(cfg)
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config %s: %w", path, errors.Join(errs...))
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return toml.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SIFTLY_ENDPOINT"); v != "" {
		cfg.Provider.Endpoint = v
	}
	if v := os.Getenv("SIFTLY_TOKEN"); v != "" {
		cfg.Provider.Token = v
	}
}

// Validate checks the configuration and returns every problem found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}
	var errs []error

	if _, ok := timewindow.ParseToken(cfg.Timeline.Window); !ok {
		errs = append(errs, fmt.Errorf("timeline.window: unknown window %q", cfg.Timeline.Window))
	}
	if _, err := ParseDurations(cfg.Timeline.Ladder); err != nil {
		errs = append(errs, fmt.Errorf("timeline.ladder: %w", err))
	}
	if _, err := ParseDurations(cfg.Timeline.Resolutions); err != nil {
		errs = append(errs, fmt.Errorf("timeline.resolutions: %w", err))
	}
	if cfg.Timeline.MinBucketWidth <= 0 {
		errs = append(errs, fmt.Errorf("timeline.min_bucket_width must be positive, got %v", cfg.Timeline.MinBucketWidth))
	}
	if cfg.Timeline.MaxLabels < 1 {
		errs = append(errs, fmt.Errorf("timeline.max_labels must be at least 1, got %d", cfg.Timeline.MaxLabels))
	}
	if cfg.Timeline.LabelWidth < 0 {
		errs = append(errs, fmt.Errorf("timeline.label_width must be non-negative, got %d", cfg.Timeline.LabelWidth))
	}

	if cfg.Grid.EstimatedWidth <= 0 || cfg.Grid.EstimatedHeight <= 0 {
		errs = append(errs, fmt.Errorf("grid: estimated sizes must be positive, got %vx%v",
			cfg.Grid.EstimatedWidth, cfg.Grid.EstimatedHeight))
	}
	if cfg.Grid.Overscan < 0 {
		errs = append(errs, fmt.Errorf("grid.overscan must be non-negative, got %d", cfg.Grid.Overscan))
	}
	if cfg.Grid.MaxNameWidth > 0 && cfg.Grid.MaxNameWidth < cfg.Grid.MinNameWidth {
		errs = append(errs, fmt.Errorf("grid.max_name_width (%v) must be >= min_name_width (%v)",
			cfg.Grid.MaxNameWidth, cfg.Grid.MinNameWidth))
	}
	if cfg.Grid.SampleSize < 1 {
		errs = append(errs, fmt.Errorf("grid.sample_size must be at least 1, got %d", cfg.Grid.SampleSize))
	}

	if cfg.Provider.Endpoint != "" && !strings.HasPrefix(cfg.Provider.Endpoint, "http://") &&
		!strings.HasPrefix(cfg.Provider.Endpoint, "https://") {
		errs = append(errs, fmt.Errorf("provider.endpoint must be an http(s) URL, got %q", cfg.Provider.Endpoint))
	}
	if cfg.Provider.Timeout < 0 {
		errs = append(errs, fmt.Errorf("provider.timeout must be non-negative, got %s", cfg.Provider.Timeout))
	}
	if cfg.Provider.ChunkSize < 1 || cfg.Provider.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("provider: chunk_size and max_parallel must be at least 1"))
	}

	if cfg.UI.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("ui.refresh_interval must be non-negative, got %s", cfg.UI.RefreshInterval))
	}
	return errs
}

// ParseDurations parses duration strings. Besides time.ParseDuration forms
// it accepts a whole number of days such as "1d".
func ParseDurations(in []string) ([]time.Duration, error) {
	out := make([]time.Duration, 0, len(in))
	for _, s := range in {
		d, err := parseDuration(s)
		if err != nil {
			return nil, err
		}
		if d < time.Second {
			return nil, fmt.Errorf("duration %q is shorter than one second", s)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// EngineOptions converts the timeline and grid sections for the engine.
// Call it on a validated config.
func (c *Config) EngineOptions() timeline.Options {
	ladder, _ := ParseDurations(c.Timeline.Ladder)
	resolutions, _ := ParseDurations(c.Timeline.Resolutions)

	grid := measure.Config{
		EstimatedWidth:  c.Grid.EstimatedWidth,
		EstimatedHeight: c.Grid.EstimatedHeight,
		DynamicColumn:   timeline.ColumnName,
		MinDynamicWidth: c.Grid.MinNameWidth,
		MaxDynamicWidth: c.Grid.MaxNameWidth,
		SampleSize:      c.Grid.SampleSize,
		FixedRowHeight:  c.Grid.FixedRowHeight,
	}
	return timeline.Options{
		Buckets: timewindow.Options{
			Ladder:              ladder,
			MinBucketPixelWidth: c.Timeline.MinBucketWidth,
			MaxLabels:           c.Timeline.MaxLabels,
			Resolutions:         resolutions,
		},
		Grid:       grid,
		Layout:     vgrid.Options{OverscanRows: c.Grid.Overscan},
		LabelWidth: float64(c.Timeline.LabelWidth),
	}
}

// HTTPConfig converts the provider section for provider.NewHTTP.
func (c *Config) HTTPConfig() provider.HTTPConfig {
	return provider.HTTPConfig{
		BaseURL:     c.Provider.Endpoint,
		Token:       c.Provider.Token,
		Timeout:     c.Provider.Timeout,
		ChunkSize:   c.Provider.ChunkSize,
		MaxParallel: c.Provider.MaxParallel,
	}
}
