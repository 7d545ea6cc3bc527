package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "sortscope.requests.total"
	metricRequestDuration  = "sortscope.request.duration.seconds"
	metricErrorsTotal      = "sortscope.errors.total"
	metricInflightRequests = "sortscope.inflight.requests"

	metricSortsTotal      = "sortscope.sorts.total"
	metricSnapshotsTotal  = "sortscope.snapshots.total"
	metricSortDuration    = "sortscope.sort.duration.seconds"
	metricSortInputLength = "sortscope.sort.input.length"

	attrOp      = "op"
	attrStatus  = "status"
	attrRetains = "retains_history"

	// StatusOK marks a successful request.
	StatusOK = "ok"
	// StatusError marks a failed request.
	StatusError = "error"
)

// durationBucketBoundaries spans 1ms to 60s; recordings of a few thousand
// elements finish in milliseconds, encoding large histories takes seconds.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// lengthBucketBoundaries buckets input sizes by powers of four.
var lengthBucketBoundaries = []float64{0, 4, 16, 64, 256, 1024, 4096, 16384, 65536}

// REDMetrics holds the OTel instruments for Rate, Error, Duration metrics.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	reqTotal, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	reqDuration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &REDMetrics{
		requestsTotal:    reqTotal,
		requestDuration:  reqDuration,
		errorsTotal:      errTotal,
		inflightRequests: inflight,
	}, nil
}

// RecordRequest records a completed request with its operation, status, and duration.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// SortMetrics counts recorded sorts and the snapshots they produce.
type SortMetrics struct {
	sortsTotal     metric.Int64Counter
	snapshotsTotal metric.Int64Counter
	sortDuration   metric.Float64Histogram
	inputLength    metric.Int64Histogram
}

// SortStats describes one finished recording.
type SortStats struct {
	Length    int
	Snapshots int
	Duration  time.Duration
	Retained  bool
}

// NewSortMetrics creates the sort instruments from the given meter.
func NewSortMetrics(mt metric.Meter) (*SortMetrics, error) {
	sorts, err := mt.Int64Counter(metricSortsTotal,
		metric.WithDescription("Total number of recorded sorts"),
		metric.WithUnit("{sort}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSortsTotal, err)
	}

	snapshots, err := mt.Int64Counter(metricSnapshotsTotal,
		metric.WithDescription("Total number of snapshots produced"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSnapshotsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricSortDuration,
		metric.WithDescription("Time spent sorting and recording in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSortDuration, err)
	}

	length, err := mt.Int64Histogram(metricSortInputLength,
		metric.WithDescription("Number of elements per recorded sort"),
		metric.WithUnit("{element}"),
		metric.WithExplicitBucketBoundaries(lengthBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSortInputLength, err)
	}

	return &SortMetrics{
		sortsTotal:     sorts,
		snapshotsTotal: snapshots,
		sortDuration:   duration,
		inputLength:    length,
	}, nil
}

// RecordSort records one finished recording.
func (sm *SortMetrics) RecordSort(ctx context.Context, stats SortStats) {
	attrs := metric.WithAttributes(attribute.Bool(attrRetains, stats.Retained))

	sm.sortsTotal.Add(ctx, 1, attrs)
	sm.snapshotsTotal.Add(ctx, int64(stats.Snapshots), attrs)
	sm.sortDuration.Record(ctx, stats.Duration.Seconds(), attrs)
	sm.inputLength.Record(ctx, int64(stats.Length))
}
