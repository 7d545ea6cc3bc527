package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortscope/internal/config"
	"github.com/Sumatoshi-tech/sortscope/internal/mcp"
	"github.com/Sumatoshi-tech/sortscope/internal/observability"
)

const (
	metricsPath              = "/metrics"
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// MCPCommand holds the flags of the mcp command.
type MCPCommand struct {
	configPath    string
	debug         bool
	metricsAddr   string
	historyBudget string
}

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	mc := &MCPCommand{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes one tool:
  - mergesort_record: sort values (given or generated) with merge sort and
    return every recorded snapshot, or a compact write trace.

With --metrics-addr the server also serves Prometheus metrics on /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          mc.run,
	}

	cmd.Flags().StringVar(&mc.configPath, "config", "", "Config file (default: .sortscope.yaml in CWD or $HOME)")
	cmd.Flags().BoolVar(&mc.debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&mc.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	cmd.Flags().StringVar(&mc.historyBudget, "history-budget", "",
		"Largest full history one call may return (e.g. 64MB; default: sort.max_history_bytes)")

	return cmd
}

func (mc *MCPCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(mc.configPath)
	if err != nil {
		return err
	}

	budget, err := mc.budget(cfg)
	if err != nil {
		return err
	}

	obsCfg := observabilityConfig(cmd, cfg, observability.ModeMCP)
	obsCfg.LogJSON = true

	if mc.debug {
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
	}

	if mc.metricsAddr != "" {
		obsCfg.Prometheus, err = observability.NewPrometheus()
		if err != nil {
			return err
		}
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer shutdownObservability(providers)

	if obsCfg.Prometheus != nil {
		stop, addr, serveErr := serveMetrics(mc.metricsAddr, obsCfg.Prometheus.Handler, providers.Logger)
		if serveErr != nil {
			return serveErr
		}

		defer stop()

		providers.Logger.Info("serving metrics", "addr", addr, "path", metricsPath)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return err
	}

	sortMetrics, err := observability.NewSortMetrics(providers.Meter)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:        providers.Logger,
		Metrics:       red,
		SortMetrics:   sortMetrics,
		Tracer:        providers.Tracer,
		HistoryBudget: budget,
	})

	return srv.Run(cmd.Context())
}

// budget resolves the per-call history budget from the flag or config.
func (mc *MCPCommand) budget(cfg *config.Config) (uint64, error) {
	if mc.historyBudget != "" {
		budget, err := humanize.ParseBytes(mc.historyBudget)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", config.ErrInvalidMemoryBudget, err)
		}

		return budget, nil
	}

	return cfg.Sort.HistoryBudget()
}

// serveMetrics starts an HTTP server exposing handler on metricsPath. It
// returns a stop function and the bound address.
func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) (func(), string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, handler)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		shutdownErr := server.Shutdown(ctx)
		if shutdownErr != nil {
			logger.Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}

	return stop, listener.Addr().String(), nil
}
