// Package commands implements CLI command handlers for sortscope.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/sortscope/internal/config"
	"github.com/Sumatoshi-tech/sortscope/internal/observability"
	"github.com/Sumatoshi-tech/sortscope/internal/plotpage"
	"github.com/Sumatoshi-tech/sortscope/internal/terminal"
	"github.com/Sumatoshi-tech/sortscope/pkg/persist"
	"github.com/Sumatoshi-tech/sortscope/pkg/recorder"
)

const (
	runSpanName    = "sortscope.run"
	outputFilePerm = 0o644
)

// Sentinel errors for run flags.
var (
	// ErrInvalidValues is returned when --values cannot be parsed.
	ErrInvalidValues = errors.New("invalid --values")
	// ErrValuesWithGenerator is returned when --values is combined with generator flags.
	ErrValuesWithGenerator = errors.New("--values cannot be combined with --count, --min, --max or --seed")
)

// RunCommand holds the flags of the run command.
type RunCommand struct {
	configPath  string
	count       int
	minValue    int
	maxValue    int
	seed        uint64
	values      string
	keepHistory bool
	maxFrames   int
	format      string
	output      string
	compact     bool
	delay       time.Duration
	theme       string
	noColor     bool
	clear       bool
}

// runPlan is what a run will do once flags and config are merged.
type runPlan struct {
	values []float64
	length int
	total  int
	need   uint64
	budget uint64
	retain bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Record a merge sort and replay or export it",
		Long: `Generate random integers (or take --values), sort them with top-down merge
sort and record a snapshot after every single write.

The recording is drawn frame by frame in the terminal, rendered as an HTML
page of bar charts, or exported as a history file (json, gob, yaml, lz4)
that the render command can turn into HTML later.`,
		Example: `  sortscope run --count 20 --seed 7
  sortscope run --values 5,3,8,1 --format html -o sort.html
  sortscope run --count 500 -o run.lz4 --compact`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	defaults := config.Default()

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Config file (default: .sortscope.yaml in CWD or $HOME)")
	cmd.Flags().IntVarP(&rc.count, "count", "n", defaults.Generate.Count, "Number of random values to generate")
	cmd.Flags().IntVar(&rc.minValue, "min", defaults.Generate.Min, "Inclusive lower bound of generated values")
	cmd.Flags().IntVar(&rc.maxValue, "max", defaults.Generate.Max, "Inclusive upper bound of generated values")
	cmd.Flags().Uint64Var(&rc.seed, "seed", defaults.Generate.Seed, "Seed for reproducible generation (0 = random)")
	cmd.Flags().StringVar(&rc.values, "values", "", "Comma-separated values to sort instead of generating (e.g. 5,3,8,1)")
	cmd.Flags().BoolVar(&rc.keepHistory, "keep-history", false,
		"Retain the full history in memory even above sort.max_history_bytes")
	cmd.Flags().IntVar(&rc.maxFrames, "max-frames", defaults.Render.MaxFrames, "Frames to draw, evenly sampled (0 = all)")
	cmd.Flags().StringVar(&rc.format, "format", defaults.Output.Format,
		"Output format: terminal, html, json, gob, yaml, lz4")
	cmd.Flags().StringVarP(&rc.output, "output", "o", "", "Output file (default: stdout); the extension picks the format")
	cmd.Flags().BoolVar(&rc.compact, "compact", false, "Export a write trace instead of every snapshot")
	cmd.Flags().DurationVar(&rc.delay, "delay", defaults.Render.Delay, "Pause between terminal frames")
	cmd.Flags().StringVar(&rc.theme, "theme", defaults.Render.Theme, "HTML theme: dark or light")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable coloured terminal frames")
	cmd.Flags().BoolVar(&rc.clear, "clear", false, "Redraw terminal frames in place")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyFlags(cmd, cfg)

	validateErr := cfg.Validate()
	if validateErr != nil {
		return fmt.Errorf("validate flags: %w", validateErr)
	}

	plan, err := rc.plan(cmd, cfg)
	if err != nil {
		return err
	}

	providers, err := observability.Init(observabilityConfig(cmd, cfg, observability.ModeCLI))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer shutdownObservability(providers)

	sortMetrics, err := observability.NewSortMetrics(providers.Meter)
	if err != nil {
		return err
	}

	ctx, span := providers.Tracer.Start(cmd.Context(), runSpanName,
		trace.WithAttributes(
			attribute.Int("sort.length", plan.length),
			attribute.String("output.format", cfg.Output.Format),
		),
	)
	defer span.End()

	logger := providers.Logger

	if !plan.retain && needsHistory(cfg) {
		logger.WarnContext(ctx, "full history exceeds memory budget, exporting compact trace",
			slog.String("estimate", humanize.Bytes(plan.need)),
			slog.String("budget", humanize.Bytes(plan.budget)),
		)
	}

	rec, err := rc.newRecorder(cfg, plan)
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, "sort starting",
		slog.Int("length", plan.length),
		slog.Int("snapshots", plan.total),
		slog.Bool("retain", plan.retain),
	)

	start := time.Now()

	switch cfg.Output.Format {
	case config.FormatTerminal:
		err = rc.play(ctx, cmd.OutOrStdout(), cfg, rec, plan)
	case config.FormatHTML:
		err = rc.writeHTML(ctx, cmd.OutOrStdout(), cfg, rec, plan)
	default:
		err = rc.writeHistory(ctx, cmd.OutOrStdout(), cfg, rec, plan)
	}

	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)

		return err
	}

	sortMetrics.RecordSort(ctx, observability.SortStats{
		Length:    plan.length,
		Snapshots: plan.total,
		Duration:  elapsed,
		Retained:  plan.retain,
	})

	logger.InfoContext(ctx, "sort recorded",
		slog.Int("length", plan.length),
		slog.Int("snapshots", plan.total),
		slog.Duration("elapsed", elapsed),
	)

	return terminal.WriteSummary(cmd.ErrOrStderr(), terminal.Summary{
		Elements:     plan.length,
		Snapshots:    plan.total,
		Placements:   plan.total - 1,
		HistoryBytes: plan.need,
		TraceBytes:   recorder.TraceBytes[float64](plan.length),
		Retained:     plan.retain,
		Duration:     elapsed,
		Output:       cfg.Output.Path,
	})
}

// applyFlags overrides config values with the flags set on the command line.
func (rc *RunCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("count") {
		cfg.Generate.Count = rc.count
	}

	if flags.Changed("min") {
		cfg.Generate.Min = rc.minValue
	}

	if flags.Changed("max") {
		cfg.Generate.Max = rc.maxValue
	}

	if flags.Changed("seed") {
		cfg.Generate.Seed = rc.seed
	}

	if flags.Changed("max-frames") {
		cfg.Render.MaxFrames = rc.maxFrames
	}

	if flags.Changed("delay") {
		cfg.Render.Delay = rc.delay
	}

	if flags.Changed("theme") {
		cfg.Render.Theme = rc.theme
	}

	if flags.Changed("output") {
		cfg.Output.Path = rc.output
	}

	if flags.Changed("compact") {
		cfg.Output.Compact = rc.compact
	}

	switch {
	case flags.Changed("format"):
		cfg.Output.Format = rc.format
	case cfg.Output.Format == config.FormatTerminal && cfg.Output.Path != "":
		if format, ok := formatForPath(cfg.Output.Path); ok {
			cfg.Output.Format = format
		}
	}
}

// formatForPath maps an output file extension to an output format.
func formatForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".html", ".htm":
		return config.FormatHTML, true
	case ".yml":
		return config.FormatYAML, true
	}

	codec, err := persist.CodecForPath(path)
	if err != nil {
		return "", false
	}

	return strings.TrimPrefix(codec.Extension(), "."), true
}

func (rc *RunCommand) plan(cmd *cobra.Command, cfg *config.Config) (runPlan, error) {
	var p runPlan

	if rc.values != "" {
		flags := cmd.Flags()
		if flags.Changed("count") || flags.Changed("min") || flags.Changed("max") || flags.Changed("seed") {
			return runPlan{}, ErrValuesWithGenerator
		}

		values, err := parseValues(rc.values)
		if err != nil {
			return runPlan{}, err
		}

		p.values = values
		p.length = len(values)
	} else {
		p.length = cfg.Generate.Count
	}

	budget, err := cfg.Sort.HistoryBudget()
	if err != nil {
		return runPlan{}, err
	}

	p.total = recorder.Placements(p.length) + 1
	p.need = recorder.HistoryBytes[float64](p.length)
	p.budget = budget
	p.retain = needsHistory(cfg) && (rc.keepHistory || budget == 0 || p.need <= budget)

	return p, nil
}

// needsHistory reports whether the output format stores every snapshot.
func needsHistory(cfg *config.Config) bool {
	switch cfg.Output.Format {
	case config.FormatTerminal, config.FormatHTML:
		return false
	default:
		return !cfg.Output.Compact
	}
}

func (rc *RunCommand) newRecorder(cfg *config.Config, p runPlan) (*recorder.Recorder[float64], error) {
	opts := []recorder.Option[float64]{
		recorder.WithResetOnSort[float64](cfg.Sort.ResetOnSort),
		recorder.WithRetention[float64](p.retain),
	}

	if cfg.Generate.Seed != 0 {
		opts = append(opts, recorder.WithSeed[float64](cfg.Generate.Seed))
	}

	rec := recorder.New(opts...)

	if p.values != nil {
		rec.Load(p.values)

		return rec, nil
	}

	_, err := rec.Generate(cfg.Generate.Count, float64(cfg.Generate.Min), float64(cfg.Generate.Max))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return rec, nil
}

func (rc *RunCommand) play(
	ctx context.Context, out io.Writer, cfg *config.Config, rec *recorder.Recorder[float64], p runPlan,
) error {
	termCfg := terminal.NewConfig()
	termCfg.YMax = float64(cfg.Render.YMax)

	if rc.noColor {
		termCfg.NoColor = true
	}

	player := terminal.Player{
		Out:    out,
		Config: termCfg,
		Delay:  cfg.Render.Delay,
		Clear:  rc.clear,
	}

	frames := plotpage.SampleStream(rec.StreamContext(ctx), p.total, cfg.Render.MaxFrames)

	_, err := terminal.Play(ctx, player, frames, p.total)
	if err != nil {
		return err
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("play: %w", ctxErr)
	}

	return nil
}

func (rc *RunCommand) writeHTML(
	ctx context.Context, out io.Writer, cfg *config.Config, rec *recorder.Recorder[float64], p runPlan,
) error {
	frames := plotpage.CollectFrames(rec.StreamContext(ctx), p.total, cfg.Render.MaxFrames)

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("record: %w", ctxErr)
	}

	page, err := plotpage.SampledFramePage(frames, p.total, frameOptions(cfg))
	if err != nil {
		return fmt.Errorf("build page: %w", err)
	}

	return writeOutput(cfg.Output.Path, out, page.Render)
}

func (rc *RunCommand) writeHistory(
	ctx context.Context, out io.Writer, cfg *config.Config, rec *recorder.Recorder[float64], p runPlan,
) error {
	codec, err := persist.CodecForFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	var doc persist.Document[float64]

	if p.retain {
		for range rec.StreamContext(ctx) {
			// Retention appends each snapshot to the recorder's history.
		}

		doc = persist.NewHistoryDocument(rec.History())
	} else {
		tr, compactErr := recorder.CompactStream(rec.StreamContext(ctx))
		if compactErr != nil && ctx.Err() == nil {
			return fmt.Errorf("compact: %w", compactErr)
		}

		doc = persist.TraceDocument(tr)
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return fmt.Errorf("record: %w", ctxErr)
	}

	return writeOutput(cfg.Output.Path, out, func(w io.Writer) error {
		return codec.Encode(w, doc)
	})
}

func frameOptions(cfg *config.Config) plotpage.FrameOptions {
	return plotpage.FrameOptions{
		Title:     "Merge sort",
		MaxFrames: cfg.Render.MaxFrames,
		Chart: plotpage.ChartOpts{
			Theme:       plotpage.Theme(cfg.Render.Theme),
			YMax:        float64(cfg.Render.YMax),
			BaseColor:   cfg.Render.BaseColor,
			ActiveColor: cfg.Render.ActiveColor,
		},
	}
}

// writeOutput runs write against the file at path, or against out when path
// is empty.
func writeOutput(path string, out io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(out)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePerm)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	writeErr := write(file)
	closeErr := file.Close()

	if writeErr != nil {
		return fmt.Errorf("write %s: %w", path, writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", path, closeErr)
	}

	return nil
}

// parseValues parses a comma-separated list of numbers.
func parseValues(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)

		value, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidValues, part)
		}

		values = append(values, value)
	}

	return values, nil
}
