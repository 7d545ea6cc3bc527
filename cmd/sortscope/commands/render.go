package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sortscope/internal/config"
	"github.com/Sumatoshi-tech/sortscope/internal/observability"
	"github.com/Sumatoshi-tech/sortscope/internal/plotpage"
	"github.com/Sumatoshi-tech/sortscope/pkg/persist"
)

const (
	renderCmdUse      = "render <history-file>"
	renderCmdShort    = "Render an exported history file as an HTML page"
	renderArgCount    = 1
	renderOutputFlag  = "output"
	renderOutputShort = "o"
	renderOutputUsage = "output HTML file"
)

// ErrNoOutputFile is returned when the --output flag is not set.
var ErrNoOutputFile = errors.New("output file is required (use --output)")

// RenderCommand holds the flags of the render command.
type RenderCommand struct {
	configPath string
	output     string
	maxFrames  int
	theme      string
}

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	rc := &RenderCommand{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Long: `Load a history written by "sortscope run --format json|gob|yaml|lz4" and
render it as an HTML page with one bar chart per sampled snapshot. JSON files
are validated against the history schema before decoding.`,
		Args: cobra.ExactArgs(renderArgCount),
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.output, renderOutputFlag, renderOutputShort, "", renderOutputUsage)
	cmd.Flags().StringVar(&rc.configPath, "config", "", "Config file (default: .sortscope.yaml in CWD or $HOME)")
	cmd.Flags().IntVar(&rc.maxFrames, "max-frames", defaults.Render.MaxFrames, "Frames to draw, evenly sampled (0 = all)")
	cmd.Flags().StringVar(&rc.theme, "theme", defaults.Render.Theme, "HTML theme: dark or light")

	return cmd
}

func (rc *RenderCommand) run(cmd *cobra.Command, args []string) error {
	if rc.output == "" {
		return ErrNoOutputFile
	}

	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("max-frames") {
		cfg.Render.MaxFrames = rc.maxFrames
	}

	if cmd.Flags().Changed("theme") {
		cfg.Render.Theme = rc.theme
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return fmt.Errorf("validate flags: %w", validateErr)
	}

	providers, err := observability.Init(observabilityConfig(cmd, cfg, observability.ModeCLI))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer shutdownObservability(providers)

	ctx, span := providers.Tracer.Start(cmd.Context(), "sortscope.render")
	defer span.End()

	history, err := persist.LoadHistory[float64](args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}

	fo := frameOptions(cfg)
	fo.Title = historyTitle(args[0])

	page, err := plotpage.FramePage(history, fo)
	if err != nil {
		return fmt.Errorf("build page: %w", err)
	}

	err = writeOutput(rc.output, cmd.OutOrStdout(), page.Render)
	if err != nil {
		return err
	}

	providers.Logger.InfoContext(ctx, "history rendered",
		"input", args[0],
		"output", rc.output,
		"snapshots", len(history),
		"frames", len(page.Sections),
	)

	return nil
}

// historyTitle names the page after the history file.
func historyTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return "Merge sort: " + name
}
