package commands //nolint:testpackage // exercises unexported observabilityConfig.

import (
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sortscope/internal/config"
	"github.com/Sumatoshi-tech/sortscope/internal/observability"
)

func childWithRootFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	root := &cobra.Command{Use: "sortscope"}
	root.PersistentFlags().BoolP(flagVerbose, "v", false, "")
	root.PersistentFlags().Bool(flagLogJSON, false, "")

	child := &cobra.Command{Use: "child", RunE: func(*cobra.Command, []string) error { return nil }}
	root.AddCommand(child)
	root.SetArgs(append([]string{"child"}, args...))

	require.NoError(t, root.Execute())

	return child
}

func TestObservabilityConfig_FromConfig(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	cfg := config.Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.JSON = true
	cfg.Telemetry.OTLPEndpoint = "collector:4317"
	cfg.Telemetry.SampleRatio = 0.5

	obsCfg := observabilityConfig(childWithRootFlags(t), &cfg, observability.ModeCLI)

	assert.Equal(t, "sortscope", obsCfg.ServiceName)
	assert.Equal(t, observability.ModeCLI, obsCfg.Mode)
	assert.Equal(t, slog.LevelWarn, obsCfg.LogLevel)
	assert.True(t, obsCfg.LogJSON)
	assert.Equal(t, "collector:4317", obsCfg.OTLPEndpoint)
	assert.InDelta(t, 0.5, obsCfg.SampleRatio, 0.0001)
	assert.False(t, obsCfg.DebugTrace)
}

func TestObservabilityConfig_FlagsAndEnvWin(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "env:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-token=abc")

	cfg := config.Default()
	cfg.Telemetry.OTLPEndpoint = "collector:4317"

	obsCfg := observabilityConfig(childWithRootFlags(t, "--verbose", "--log-json"), &cfg, observability.ModeMCP)

	assert.Equal(t, observability.ModeMCP, obsCfg.Mode)
	assert.Equal(t, "env:4317", obsCfg.OTLPEndpoint)
	assert.Equal(t, map[string]string{"x-token": "abc"}, obsCfg.OTLPHeaders)
	assert.Equal(t, slog.LevelDebug, obsCfg.LogLevel)
	assert.True(t, obsCfg.DebugTrace)
	assert.True(t, obsCfg.LogJSON)
}

func TestBoolFlag_MissingFlagIsFalse(t *testing.T) {
	t.Parallel()

	assert.False(t, boolFlag(&cobra.Command{Use: "bare"}, flagVerbose))
}
