package commands //nolint:testpackage // exercises unexported metrics server and budget helpers.

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/sortscope/internal/config"
	"github.com/Sumatoshi-tech/sortscope/internal/observability"
)

func TestServeMetrics_ExposesSortMetrics(t *testing.T) {
	t.Parallel()

	prom, err := observability.NewPrometheus()
	require.NoError(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(prom.Reader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	sortMetrics, err := observability.NewSortMetrics(mp.Meter("test"))
	require.NoError(t, err)

	sortMetrics.RecordSort(context.Background(), observability.SortStats{Length: 4, Snapshots: 9})

	stop, addr, err := serveMetrics("127.0.0.1:0", prom.Handler, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(stop)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+addr+metricsPath, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "sortscope_sorts_total")
	assert.Contains(t, string(body), "sortscope_snapshots_total")
}

func TestServeMetrics_BadAddress(t *testing.T) {
	t.Parallel()

	_, _, err := serveMetrics("256.0.0.1:bad", http.NotFoundHandler(), slog.Default())
	require.Error(t, err)
}

func TestMCPCommand_Budget(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	fromConfig, err := (&MCPCommand{}).budget(&cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(64_000_000), fromConfig)

	fromFlag, err := (&MCPCommand{historyBudget: "2MiB"}).budget(&cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(2<<20), fromFlag)

	_, err = (&MCPCommand{historyBudget: "lots"}).budget(&cfg)
	require.ErrorIs(t, err, config.ErrInvalidMemoryBudget)
}
