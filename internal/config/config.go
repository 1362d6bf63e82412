// Package config loads the TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DirName is the per-user directory holding the config file and database.
const DirName = ".seers-orb"

// Config represents the application configuration.
type Config struct {
	// Graph analysis tuning
	Analysis AnalysisConfig `toml:"analysis"`

	// Synergy weighter coefficients
	Weights WeightsConfig `toml:"weights"`

	// Graph edit and report persistence
	Storage StorageConfig `toml:"storage"`

	// Collection loading
	Collection CollectionConfig `toml:"collection"`

	// Application logging
	Log LogConfig `toml:"log"`

	// Watch mode
	Watch WatchConfig `toml:"watch"`
}

// AnalysisConfig contains detector and analyzer settings.
type AnalysisConfig struct {
	TopN                 int     `toml:"top_n"`                 // Key cards reported
	WeakLinkThreshold    float64 `toml:"weak_link_threshold"`   // Degree centrality cutoff, 0 = off
	EigenvectorMaxIter   int     `toml:"eigenvector_max_iter"`  // Power iteration bound
	EigenvectorTolerance float64 `toml:"eigenvector_tolerance"` // Convergence tolerance
	PageRankDamping      float64 `toml:"pagerank_damping"`      // Damping factor
	PageRankTolerance    float64 `toml:"pagerank_tolerance"`    // Convergence tolerance
	DetectorWorkers      int     `toml:"detector_workers"`      // 0 = GOMAXPROCS, 1 = sequential
}

// WeightsConfig contains synergy weighter settings.
type WeightsConfig struct {
	NameBonus  float64            `toml:"name_bonus"` // Added when one card names the other
	Categories map[string]float64 `toml:"categories"` // Per-category alpha overrides
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Enabled     bool   `toml:"enabled"`      // Persist edits and reports
	Path        string `toml:"path"`         // SQLite file, empty = ~/.seers-orb/seers-orb.db
	KeepReports int    `toml:"keep_reports"` // Snapshots kept per collection (0 = all)
}

// CollectionConfig contains collection loading settings.
type CollectionConfig struct {
	Catalog string `toml:"catalog"` // Scryfall JSON card list used for text imports
}

// LogConfig contains application logging settings.
type LogConfig struct {
	Level      string `toml:"level"`        // debug, info, warn, error
	Format     string `toml:"format"`       // console or json
	File       string `toml:"file"`         // Optional log file, rotated
	MaxSizeMB  int    `toml:"max_size_mb"`  // Rotate after this size
	MaxBackups int    `toml:"max_backups"`  // Rotated files kept
	MaxAgeDays int    `toml:"max_age_days"` // Days rotated files are kept
}

// WatchConfig contains watch mode settings.
type WatchConfig struct {
	Debounce string `toml:"debounce"` // Quiet period before re-analysis (e.g., "500ms")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			TopN:                 10,
			WeakLinkThreshold:    0.3,
			EigenvectorMaxIter:   500,
			EigenvectorTolerance: 1e-6,
			PageRankDamping:      0.85,
			PageRankTolerance:    1e-6,
			DetectorWorkers:      0,
		},
		Weights: WeightsConfig{
			NameBonus:  5.0,
			Categories: map[string]float64{},
		},
		Storage: StorageConfig{
			Enabled:     true,
			KeepReports: 20,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// Dir returns ~/.seers-orb.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// DefaultPath returns the path to the configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if config.Weights.Categories == nil {
		config.Weights.Categories = map[string]float64{}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1: %d", a.TopN)
	}
	if a.WeakLinkThreshold < 0 || a.WeakLinkThreshold > 1 {
		return fmt.Errorf("weak_link_threshold must be within [0, 1]: %g", a.WeakLinkThreshold)
	}
	if a.EigenvectorMaxIter < 1 {
		return fmt.Errorf("eigenvector_max_iter must be at least 1: %d", a.EigenvectorMaxIter)
	}
	if a.EigenvectorTolerance <= 0 || a.PageRankTolerance <= 0 {
		return fmt.Errorf("tolerances must be positive")
	}
	if a.PageRankDamping <= 0 || a.PageRankDamping >= 1 {
		return fmt.Errorf("pagerank_damping must be within (0, 1): %g", a.PageRankDamping)
	}

	if c.Weights.NameBonus < 0 {
		return fmt.Errorf("name_bonus cannot be negative: %g", c.Weights.NameBonus)
	}
	for category, alpha := range c.Weights.Categories {
		if alpha < 0 {
			return fmt.Errorf("weight for category %q cannot be negative: %g", category, alpha)
		}
	}

	if c.Storage.KeepReports < 0 {
		return fmt.Errorf("keep_reports cannot be negative: %d", c.Storage.KeepReports)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	if _, err := c.WatchDebounce(); err != nil {
		return err
	}
	return nil
}

// WatchDebounce returns the watch debounce as a duration.
func (c *Config) WatchDebounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("watch debounce cannot be negative: %s", d)
	}
	return d, nil
}

// DatabasePath returns the configured database path or the default
// ~/.seers-orb/seers-orb.db.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "seers-orb.db"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
