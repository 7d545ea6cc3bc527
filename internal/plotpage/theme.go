package plotpage

// Theme represents a color theme for visualizations.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds all theme-specific styling values.
type ThemeConfig struct {
	// Base colors.
	Background string
	Surface    string
	Border     string

	// Text colors.
	TextPrimary   string
	TextSecondary string
	TextMuted     string

	Accent string

	// Chart-specific.
	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// ECharts theme name.
	EChartsTheme string
}

// GetThemeConfig returns the configuration for a given theme. Unknown
// themes fall back to light.
func GetThemeConfig(theme Theme) ThemeConfig {
	switch theme {
	case ThemeDark:
		return darkTheme
	case ThemeLight:
		return lightTheme
	default:
		return lightTheme
	}
}

var lightTheme = ThemeConfig{
	Background: "#f8fafc", // slate-50.
	Surface:    "#ffffff",
	Border:     "#e2e8f0", // slate-200.

	TextPrimary:   "#0f172a", // slate-900.
	TextSecondary: "#334155", // slate-700.
	TextMuted:     "#64748b", // slate-500.

	Accent: "#4f46e5", // indigo-600.

	ChartBackground: "transparent",
	ChartGrid:       "#e2e8f0", // slate-200.
	ChartAxis:       "#94a3b8", // slate-400.
	ChartText:       "#334155", // slate-700.
	ChartTextMuted:  "#64748b", // slate-500.

	EChartsTheme: "",
}

var darkTheme = ThemeConfig{
	Background: "#020617", // slate-950.
	Surface:    "#0f172a", // slate-900.
	Border:     "#334155", // slate-700.

	TextPrimary:   "#f8fafc", // slate-50.
	TextSecondary: "#cbd5e1", // slate-300.
	TextMuted:     "#94a3b8", // slate-400.

	Accent: "#818cf8", // indigo-400.

	ChartBackground: "transparent",
	ChartGrid:       "#1e293b", // slate-800.
	ChartAxis:       "#475569", // slate-600.
	ChartText:       "#cbd5e1", // slate-300.
	ChartTextMuted:  "#94a3b8", // slate-400.

	EChartsTheme: "",
}
