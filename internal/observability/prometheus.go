package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Prometheus pairs an OTel metric reader with the HTTP handler that serves
// its /metrics scrape endpoint. Pass it to [Init] through Config.Prometheus
// so the Meter returned by Init feeds the endpoint.
type Prometheus struct {
	// Handler serves the Prometheus exposition format.
	Handler http.Handler

	reader sdkmetric.Reader
}

// NewPrometheus creates a Prometheus exporter with its own registry. Each
// call is independent, so tests and multiple servers never collide on
// collector registration.
func NewPrometheus() (*Prometheus, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &Prometheus{
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		reader:  exporter,
	}, nil
}

// Reader returns the metric reader to attach to a MeterProvider.
func (p *Prometheus) Reader() sdkmetric.Reader {
	return p.reader
}
