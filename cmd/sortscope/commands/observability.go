package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortscope/internal/config"
	"github.com/Sumatoshi-tech/sortscope/internal/observability"
	"github.com/Sumatoshi-tech/sortscope/pkg/version"
)

// Persistent flags registered on the root command.
const (
	flagVerbose = "verbose"
	flagLogJSON = "log-json"
)

// observabilityConfig maps loaded settings, root flags and the standard OTEL
// environment variables to an observability config. Environment variables
// win over the config file for the exporter endpoint and headers.
func observabilityConfig(cmd *cobra.Command, cfg *config.Config, mode observability.AppMode) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = os.Getenv("SORTSCOPE_ENV")
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogJSON = cfg.Logging.JSON

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		obsCfg.OTLPEndpoint = endpoint
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		obsCfg.OTLPInsecure = true
	}

	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))

	level, err := cfg.Logging.SlogLevel()
	if err == nil {
		obsCfg.LogLevel = level
	}

	if boolFlag(cmd, flagLogJSON) {
		obsCfg.LogJSON = true
	}

	if boolFlag(cmd, flagVerbose) {
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	}

	return obsCfg
}

// boolFlag reads a possibly inherited bool flag; missing flags read as false.
func boolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}

	return value
}

// shutdownObservability flushes telemetry, logging instead of failing the
// command when the exporter is unreachable.
func shutdownObservability(providers observability.Providers) {
	shutdownErr := providers.Shutdown(context.Background())
	if shutdownErr != nil {
		providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}
