package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sortscope/internal/observability"
	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

// ToolNameRecord is the name of the merge sort recording tool.
const ToolNameRecord = "mergesort_record"

// Input limits.
const (
	// MaxValues caps the sequence length of one call.
	MaxValues = 100_000

	// DefaultHistoryBudget caps the estimated size of a full history.
	DefaultHistoryBudget = 64 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrTooManyValues indicates the sequence exceeds MaxValues.
	ErrTooManyValues = errors.New("too many values")
	// ErrHistoryTooLarge indicates a full history would exceed the budget.
	ErrHistoryTooLarge = errors.New("full history too large, retry with compact")
	// ErrConflictingInput indicates values were given together with generator settings.
	ErrConflictingInput = errors.New("values cannot be combined with count, min, max or seed")
)

// RecordInput is the input schema for the mergesort_record tool.
type RecordInput struct {
	Values  []float64 `json:"values,omitempty"  jsonschema:"numbers to sort; when omitted random integers are generated"`
	Count   *int      `json:"count,omitempty"   jsonschema:"number of random values to generate (default 30)"`
	Min     *float64  `json:"min,omitempty"     jsonschema:"inclusive lower bound of generated values (default 5)"`
	Max     *float64  `json:"max,omitempty"     jsonschema:"inclusive upper bound of generated values (default 100)"`
	Seed    *uint64   `json:"seed,omitempty"    jsonschema:"seed for reproducible generation"`
	Compact bool      `json:"compact,omitempty" jsonschema:"return a write trace instead of every snapshot"`
}

// RecordOutput is the result of one recorded sort.
type RecordOutput struct {
	Initial []float64                 `json:"initial"`
	Final   []float64                 `json:"final"`
	Steps   int                       `json:"steps"`
	History recorder.History[float64] `json:"history,omitempty"`
	Trace   *recorder.Trace[float64]  `json:"trace,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleRecord(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input RecordInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	start := time.Now()

	out, err := record(ctx, input, s.budget)
	if err != nil {
		s.logger.WarnContext(ctx, "record rejected", slog.String("tool", ToolNameRecord), slog.Any("error", err))

		return errorResult(err)
	}

	elapsed := time.Since(start)

	if s.sortMetrics != nil {
		s.sortMetrics.RecordSort(ctx, observability.SortStats{
			Length:    len(out.Initial),
			Snapshots: out.Steps + 1,
			Duration:  elapsed,
			Retained:  out.History != nil,
		})
	}

	s.logger.DebugContext(ctx, "sort recorded",
		slog.Int("length", len(out.Initial)),
		slog.Int("steps", out.Steps),
		slog.Bool("compact", input.Compact),
		slog.Duration("elapsed", elapsed),
	)

	return jsonResult(out)
}

// record builds a fresh recorder for the call, sorts and shapes the output.
func record(ctx context.Context, input RecordInput, budget uint64) (RecordOutput, error) {
	rec, err := newRecorder(input)
	if err != nil {
		return RecordOutput{}, err
	}

	if !input.Compact {
		need := recorder.HistoryBytes[float64](rec.Len())
		if need > budget {
			return RecordOutput{}, fmt.Errorf("%w: %s for %d values exceeds %s",
				ErrHistoryTooLarge, humanize.Bytes(need), rec.Len(), humanize.Bytes(budget))
		}

		h := rec.Sort()
		last, _ := h.Last()

		return RecordOutput{
			Initial: h[0].Values,
			Final:   last.Values,
			Steps:   h.Steps(),
			History: h,
		}, nil
	}

	tr, err := recorder.CompactStream(rec.StreamContext(ctx))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return RecordOutput{}, fmt.Errorf("record: %w", ctxErr)
	}

	if err != nil {
		return RecordOutput{}, fmt.Errorf("compact: %w", err)
	}

	return RecordOutput{
		Initial: tr.Initial,
		Final:   tr.Final(),
		Steps:   len(tr.Writes),
		Trace:   &tr,
	}, nil
}

func newRecorder(input RecordInput) (*recorder.Recorder[float64], error) {
	opts := []recorder.Option[float64]{recorder.WithRetention[float64](!input.Compact)}

	if input.Values != nil {
		if input.Count != nil || input.Min != nil || input.Max != nil || input.Seed != nil {
			return nil, ErrConflictingInput
		}

		if len(input.Values) > MaxValues {
			return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyValues, len(input.Values), MaxValues)
		}

		rec := recorder.New(opts...)
		rec.Load(input.Values)

		return rec, nil
	}

	count := recorder.DefaultCount
	if input.Count != nil {
		count = *input.Count
	}

	if count > MaxValues {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyValues, count, MaxValues)
	}

	lo, hi := float64(recorder.DefaultMin), float64(recorder.DefaultMax)
	if input.Min != nil {
		lo = *input.Min
	}

	if input.Max != nil {
		hi = *input.Max
	}

	if input.Seed != nil {
		opts = append(opts, recorder.WithSeed[float64](*input.Seed))
	}

	rec := recorder.New(opts...)

	_, err := rec.Generate(count, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return rec, nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
