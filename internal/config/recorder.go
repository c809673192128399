package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/coordrecorder/internal/units"
	"github.com/joho/godotenv"
)

// DefaultConfigPath is where the CLI looks for a config file when none is given.
const DefaultConfigPath = "coordrecorder.json"

// EnvPrefix prefixes every environment override, e.g. COORDREC_LOG_PATH.
const EnvPrefix = "COORDREC_"

// Defaults.
const (
	DefaultEnableKey       = "f9"
	DefaultSaveKey         = "f10"
	DefaultCloseByKey      = "c"
	DefaultRoutedKey       = "r"
	DefaultUndoKey         = "backspace"
	DefaultCloseByValue    = 3
	DefaultModifiedCloseBy = 3
	DefaultMarkerRadius    = 3.0
	DefaultSaveDistance    = 5.0
	DefaultLogPath         = "CoordRecorder_CSV.txt"
	DefaultTickInterval    = 100 * time.Millisecond
)

// RecorderConfig is the recorder's configuration. Every field is optional;
// the Get* accessors fall back to the defaults above, so partial files are
// safe.
type RecorderConfig struct {
	// Key bindings, in bubbletea key notation ("f9", "ctrl+s", "backspace").
	EnableKey  *string `json:"enable_key,omitempty"`
	SaveKey    *string `json:"save_key,omitempty"`
	CloseByKey *string `json:"close_by_key,omitempty"`
	RoutedKey  *string `json:"routed_key,omitempty"`
	UndoKey    *string `json:"undo_key,omitempty"`

	// Sample metadata
	DefaultCloseBy  *int `json:"default_close_by,omitempty"`
	ModifiedCloseBy *int `json:"modified_close_by,omitempty"`

	MarkerRadius *float64 `json:"marker_radius,omitempty"`
	SaveDistance *float64 `json:"save_distance,omitempty"`

	// Storage
	LogPath   *string `json:"log_path,omitempty"`
	HistoryDB *string `json:"history_db,omitempty"` // empty disables session history

	// Driver
	TickInterval   *string `json:"tick_interval,omitempty"` // duration string like "100ms"
	DistanceUnit   *string `json:"distance_unit,omitempty"`
	EnabledOnStart *bool   `json:"enabled_on_start,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyRecorderConfig returns a config with every field unset.
func EmptyRecorderConfig() *RecorderConfig {
	return &RecorderConfig{}
}

// LoadRecorderConfig loads a config from a JSON file. The file must have a
// .json extension and be under 1MB.
func LoadRecorderConfig(path string) (*RecorderConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRecorderConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load reads the config file at path, then applies .env files and
// COORDREC_* environment overrides. A missing file at DefaultConfigPath is
// not an error; any other missing path is.
func Load(path string) (*RecorderConfig, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := EmptyRecorderConfig()
	if path == "" {
		path = DefaultConfigPath
	}
	loaded, err := LoadRecorderConfig(path)
	switch {
	case err == nil:
		cfg = loaded
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath:
	default:
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from COORDREC_* variables found by lookup.
func (c *RecorderConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	strs := []struct {
		name string
		dst  **string
	}{
		{"ENABLE_KEY", &c.EnableKey},
		{"SAVE_KEY", &c.SaveKey},
		{"CLOSE_BY_KEY", &c.CloseByKey},
		{"ROUTED_KEY", &c.RoutedKey},
		{"UNDO_KEY", &c.UndoKey},
		{"LOG_PATH", &c.LogPath},
		{"HISTORY_DB", &c.HistoryDB},
		{"TICK_INTERVAL", &c.TickInterval},
		{"DISTANCE_UNIT", &c.DistanceUnit},
	}
	for _, s := range strs {
		if v, ok := env(s.name); ok {
			*s.dst = ptrString(v)
		}
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{"DEFAULT_CLOSE_BY", &c.DefaultCloseBy},
		{"MODIFIED_CLOSE_BY", &c.ModifiedCloseBy},
	}
	for _, i := range ints {
		if v, ok := env(i.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, i.name, err)
			}
			*i.dst = ptrInt(n)
		}
	}

	floats := []struct {
		name string
		dst  **float64
	}{
		{"MARKER_RADIUS", &c.MarkerRadius},
		{"SAVE_DISTANCE", &c.SaveDistance},
	}
	for _, f := range floats {
		if v, ok := env(f.name); ok {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, f.name, err)
			}
			*f.dst = ptrFloat64(n)
		}
	}

	if v, ok := env("ENABLED_ON_START"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sENABLED_ON_START: %w", EnvPrefix, err)
		}
		c.EnabledOnStart = ptrBool(b)
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *RecorderConfig) Validate() error {
	if c.SaveDistance != nil && *c.SaveDistance <= 0 {
		return fmt.Errorf("save_distance must be positive, got %f", *c.SaveDistance)
	}
	if c.MarkerRadius != nil && *c.MarkerRadius < 0 {
		return fmt.Errorf("marker_radius must be non-negative, got %f", *c.MarkerRadius)
	}
	if c.DefaultCloseBy != nil && *c.DefaultCloseBy < 0 {
		return fmt.Errorf("default_close_by must be non-negative, got %d", *c.DefaultCloseBy)
	}
	if c.ModifiedCloseBy != nil && *c.ModifiedCloseBy < 0 {
		return fmt.Errorf("modified_close_by must be non-negative, got %d", *c.ModifiedCloseBy)
	}

	if c.TickInterval != nil && *c.TickInterval != "" {
		d, err := time.ParseDuration(*c.TickInterval)
		if err != nil {
			return fmt.Errorf("invalid tick_interval '%s': %w", *c.TickInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("tick_interval must be positive, got %s", d)
		}
	}

	if c.DistanceUnit != nil && !units.IsValid(*c.DistanceUnit) {
		return fmt.Errorf("distance_unit must be one of %s, got %q", units.GetValidUnitsString(), *c.DistanceUnit)
	}

	if c.LogPath != nil && strings.TrimSpace(*c.LogPath) == "" {
		return errors.New("log_path must not be empty")
	}

	keys := c.Keys()
	seen := make(map[string]string, len(keys))
	for action, key := range keys {
		if key == "" {
			return fmt.Errorf("%s key must not be empty", action)
		}
		if other, dup := seen[key]; dup {
			return fmt.Errorf("key %q is bound to both %s and %s", key, other, action)
		}
		seen[key] = action
	}
	return nil
}

// Keys returns the effective key binding per action name.
func (c *RecorderConfig) Keys() map[string]string {
	return map[string]string{
		"toggle":  c.GetEnableKey(),
		"save":    c.GetSaveKey(),
		"closeby": c.GetCloseByKey(),
		"routed":  c.GetRoutedKey(),
		"undo":    c.GetUndoKey(),
	}
}

func getString(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

// GetEnableKey returns the enable/disable toggle key.
func (c *RecorderConfig) GetEnableKey() string { return getString(c.EnableKey, DefaultEnableKey) }

// GetSaveKey returns the manual save key.
func (c *RecorderConfig) GetSaveKey() string { return getString(c.SaveKey, DefaultSaveKey) }

// GetCloseByKey returns the closeBy toggle key.
func (c *RecorderConfig) GetCloseByKey() string { return getString(c.CloseByKey, DefaultCloseByKey) }

// GetRoutedKey returns the routed toggle key.
func (c *RecorderConfig) GetRoutedKey() string { return getString(c.RoutedKey, DefaultRoutedKey) }

// GetUndoKey returns the undo key.
func (c *RecorderConfig) GetUndoKey() string { return getString(c.UndoKey, DefaultUndoKey) }

// GetDefaultCloseBy returns the default_close_by value or the default.
func (c *RecorderConfig) GetDefaultCloseBy() int {
	if c.DefaultCloseBy == nil {
		return DefaultCloseByValue
	}
	return *c.DefaultCloseBy
}

// GetModifiedCloseBy returns the modified_close_by value or the default.
func (c *RecorderConfig) GetModifiedCloseBy() int {
	if c.ModifiedCloseBy == nil {
		return DefaultModifiedCloseBy
	}
	return *c.ModifiedCloseBy
}

// GetMarkerRadius returns the marker_radius value or the default.
func (c *RecorderConfig) GetMarkerRadius() float64 {
	if c.MarkerRadius == nil {
		return DefaultMarkerRadius
	}
	return *c.MarkerRadius
}

// GetSaveDistance returns the save_distance value or the default.
func (c *RecorderConfig) GetSaveDistance() float64 {
	if c.SaveDistance == nil {
		return DefaultSaveDistance
	}
	return *c.SaveDistance
}

// GetLogPath returns the waypoint log path.
func (c *RecorderConfig) GetLogPath() string { return getString(c.LogPath, DefaultLogPath) }

// GetHistoryDB returns the history database path; "" means history is off.
func (c *RecorderConfig) GetHistoryDB() string { return getString(c.HistoryDB, "") }

// GetTickInterval parses and returns the TickInterval as a time.Duration.
func (c *RecorderConfig) GetTickInterval() time.Duration {
	if c.TickInterval == nil || *c.TickInterval == "" {
		return DefaultTickInterval
	}
	d, err := time.ParseDuration(*c.TickInterval)
	if err != nil || d <= 0 {
		return DefaultTickInterval // default on parse error
	}
	return d
}

// GetDistanceUnit returns the status line distance unit.
func (c *RecorderConfig) GetDistanceUnit() string {
	return getString(c.DistanceUnit, units.Meters)
}

// GetEnabledOnStart returns the enabled_on_start value or the default.
func (c *RecorderConfig) GetEnabledOnStart() bool {
	if c.EnabledOnStart == nil {
		return false
	}
	return *c.EnabledOnStart
}
