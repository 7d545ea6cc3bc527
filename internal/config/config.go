// Package config provides YAML-based configuration for sortscope.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Output formats.
const (
	FormatTerminal = "terminal"
	FormatHTML     = "html"
	FormatJSON     = "json"
	FormatGob      = "gob"
	FormatYAML     = "yaml"
	FormatLZ4      = "lz4"
)

// Themes accepted by render.theme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

var (
	validFormats = []string{FormatTerminal, FormatHTML, FormatJSON, FormatGob, FormatYAML, FormatLZ4}
	validThemes  = []string{ThemeDark, ThemeLight}
)

// Config is the top-level configuration struct for sortscope.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Generate  GenerateConfig  `mapstructure:"generate"`
	Sort      SortConfig      `mapstructure:"sort"`
	Render    RenderConfig    `mapstructure:"render"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GenerateConfig holds random data generation settings.
type GenerateConfig struct {
	Count int    `mapstructure:"count"`
	Min   int    `mapstructure:"min"`
	Max   int    `mapstructure:"max"`
	Seed  uint64 `mapstructure:"seed"`
}

// SortConfig holds recorder policy settings.
type SortConfig struct {
	ResetOnSort     bool   `mapstructure:"reset_on_sort"`
	MaxHistoryBytes string `mapstructure:"max_history_bytes"`
}

// RenderConfig holds chart and terminal frame settings.
type RenderConfig struct {
	Theme       string        `mapstructure:"theme"`
	YMax        int           `mapstructure:"y_max"`
	BaseColor   string        `mapstructure:"base_color"`
	ActiveColor string        `mapstructure:"active_color"`
	MaxFrames   int           `mapstructure:"max_frames"`
	Delay       time.Duration `mapstructure:"delay"`
}

// OutputConfig selects where a run goes.
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Path    string `mapstructure:"path"`
	Compact bool   `mapstructure:"compact"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidCount indicates a negative element count.
	ErrInvalidCount = errors.New("generate.count must be non-negative")
	// ErrInvalidBounds indicates min is not below max.
	ErrInvalidBounds = errors.New("generate.min must be below generate.max")
	// ErrInvalidMemoryBudget indicates an unparsable history budget.
	ErrInvalidMemoryBudget = errors.New("sort.max_history_bytes must be a byte size")
	// ErrInvalidTheme indicates an unknown theme name.
	ErrInvalidTheme = errors.New("render.theme must be dark or light")
	// ErrInvalidYMax indicates a non-positive y axis bound.
	ErrInvalidYMax = errors.New("render.y_max must be positive")
	// ErrInvalidMaxFrames indicates a negative frame cap.
	ErrInvalidMaxFrames = errors.New("render.max_frames must be non-negative")
	// ErrInvalidDelay indicates a negative frame delay.
	ErrInvalidDelay = errors.New("render.delay must be non-negative")
	// ErrInvalidFormat indicates an unknown output format.
	ErrInvalidFormat = errors.New("output.format is not supported")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
	// ErrInvalidSampleRatio indicates a ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	generateErr := c.Generate.validate()
	if generateErr != nil {
		return generateErr
	}

	_, budgetErr := c.Sort.HistoryBudget()
	if budgetErr != nil {
		return budgetErr
	}

	renderErr := c.Render.validate()
	if renderErr != nil {
		return renderErr
	}

	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	_, levelErr := c.Logging.SlogLevel()
	if levelErr != nil {
		return levelErr
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

func (g GenerateConfig) validate() error {
	if g.Count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, g.Count)
	}

	if g.Min >= g.Max {
		return fmt.Errorf("%w: %d >= %d", ErrInvalidBounds, g.Min, g.Max)
	}

	return nil
}

func (r RenderConfig) validate() error {
	if !slices.Contains(validThemes, r.Theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, r.Theme)
	}

	if r.YMax <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidYMax, r.YMax)
	}

	if r.MaxFrames < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxFrames, r.MaxFrames)
	}

	if r.Delay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDelay, r.Delay)
	}

	return nil
}

// HistoryBudget returns the history memory budget in bytes. Zero or an empty
// string means unlimited.
func (s SortConfig) HistoryBudget() (uint64, error) {
	if strings.TrimSpace(s.MaxHistoryBytes) == "" {
		return 0, nil
	}

	budget, err := humanize.ParseBytes(s.MaxHistoryBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMemoryBudget, err)
	}

	return budget, nil
}

// SlogLevel maps the configured level name to a slog level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
}
