package config

import "time"

// Generation defaults.
const (
	DefaultGenerateCount = 30
	DefaultGenerateMin   = 5
	DefaultGenerateMax   = 100
	DefaultGenerateSeed  = 0
)

// Sort defaults.
const (
	DefaultSortResetOnSort     = true
	DefaultSortMaxHistoryBytes = "64MB"
)

// Render defaults. The y axis stops at 110 so the tallest generated bar
// (100) never touches the top of the chart.
const (
	DefaultRenderTheme       = "dark"
	DefaultRenderYMax        = 110
	DefaultRenderBaseColor   = "#4F46E5"
	DefaultRenderActiveColor = "#EF4444"
	DefaultRenderMaxFrames   = 60
	DefaultRenderDelay       = 50 * time.Millisecond
)

// Output defaults.
const (
	DefaultOutputFormat  = FormatTerminal
	DefaultOutputPath    = ""
	DefaultOutputCompact = false
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Telemetry defaults.
const (
	DefaultTelemetryEndpoint    = ""
	DefaultTelemetryInsecure    = false
	DefaultTelemetrySampleRatio = 0.0
)
