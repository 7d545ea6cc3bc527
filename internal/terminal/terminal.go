// Package terminal draws recorded sort snapshots as coloured bar frames and
// prints run summaries for the CLI.
package terminal

import (
	"os"
	"strconv"

	"github.com/fatih/color"
)

// Default width constants
const (
	DefaultWidth = 80
	MinWidth     = 40
	MaxWidth     = 160
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
	// YMax is the value drawn as a full-width bar. Larger values are clipped.
	YMax float64
}

// NewConfig creates a Config from the environment. Colour is off when
// NO_COLOR is set or stdout is not a terminal.
func NewConfig() Config {
	return Config{
		Width:   DetectWidth(),
		NoColor: os.Getenv("NO_COLOR") != "" || color.NoColor,
		YMax:    DefaultYMax,
	}
}

// DetectWidth returns the terminal width from the COLUMNS environment
// variable clamped to [MinWidth, MaxWidth], or DefaultWidth if unset or invalid.
func DetectWidth() int {
	columnsEnv := os.Getenv("COLUMNS")
	if columnsEnv == "" {
		return DefaultWidth
	}

	width, err := strconv.Atoi(columnsEnv)
	if err != nil {
		return DefaultWidth
	}

	return min(max(width, MinWidth), MaxWidth)
}

func (c Config) width() int {
	if c.Width <= 0 {
		return DefaultWidth
	}

	return min(max(c.Width, MinWidth), MaxWidth)
}

func (c Config) yMax() float64 {
	if c.YMax <= 0 {
		return DefaultYMax
	}

	return c.YMax
}

// paint returns a colour that honours c.NoColor regardless of the
// package-level TTY detection.
func (c Config) paint(attrs ...color.Attribute) *color.Color {
	clr := color.New(attrs...)
	if c.NoColor {
		clr.DisableColor()
	} else {
		clr.EnableColor()
	}

	return clr
}
