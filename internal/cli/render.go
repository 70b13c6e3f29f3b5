package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/razor-1/polylabel/pkg/pipeline"
)

const (
	defaultWidth  = 800 // default SVG viewport width
	defaultHeight = 600 // default SVG viewport height
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output SVG path
	precision float64 // search precision in input units
	width     float64 // viewport width in pixels
	height    float64 // viewport height in pixels
	circles   bool    // draw clearance circles around label points
	refresh   bool    // bypass the cache
}

// newRenderCmd creates the render command for drawing labeled polygons as SVG.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		width:  defaultWidth,
		height: defaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render labeled polygons to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRenderCmd(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output SVG file")
	cmd.Flags().Float64VarP(&opts.precision, "precision", "p", 0, "search precision in input units (default 1.0)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().BoolVar(&opts.circles, "circles", false, "draw clearance circles around label points")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func runRenderCmd(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	c, err := openFileCache()
	if err != nil {
		printWarning("Cache unavailable: %v", err)
		c = nil
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:     input,
		Precision: opts.precision,
		Refresh:   opts.refresh,
		Formats:   []string{pipeline.FormatSVG},
		Width:     opts.width,
		Height:    opts.height,
		Circles:   opts.circles,
		Logger:    logger,
	})
	spinner.Stop()
	if spinner.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := os.WriteFile(output, result.Artifacts[pipeline.FormatSVG], 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %d feature(s)", result.Stats.FeatureCount)
	printStats(result.Stats.FeatureCount, result.Stats.TotalProbes, result.CacheInfo.Hits)
	printFile(output)
	return nil
}
