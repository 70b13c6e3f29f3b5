package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/razor-1/polylabel/pkg/cache"
	"github.com/razor-1/polylabel/pkg/pipeline"
)

// labelOpts holds the command-line flags for the label command.
type labelOpts struct {
	output    string   // output file path (single format) or base path (multiple)
	formats   []string // output formats: "geojson", "json", "svg"
	precision float64  // search precision in input units
	refresh   bool     // bypass the cache
	noCache   bool     // disable caching entirely
	watch     bool     // live TUI showing search progress
}

// newLabelCmd creates the label command for computing poles of inaccessibility.
//
// Default settings:
//   - precision: 1.0 (input units; use smaller values for degree coordinates)
//   - format: geojson
//   - caching: on-disk cache under the user cache directory
func newLabelCmd() *cobra.Command {
	var formatsStr string
	opts := labelOpts{}

	cmd := &cobra.Command{
		Use:   "label [file]",
		Short: "Compute label points for polygon features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runLabel(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): geojson (default), json, svg (comma-separated)")
	cmd.Flags().Float64VarP(&opts.precision, "precision", "p", 0, "search precision in input units (default 1.0)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the label cache")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "show live search progress")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["geojson"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatGeoJSON}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func runLabel(ctx context.Context, input string, opts *labelOpts) error {
	logger := loggerFromContext(ctx)

	var c cache.Cache
	if !opts.noCache {
		var err error
		c, err = openFileCache()
		if err != nil {
			printWarning("Cache unavailable: %v", err)
		}
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	pipeOpts := pipeline.Options{
		Input:     input,
		Precision: opts.precision,
		Refresh:   opts.refresh,
		Formats:   opts.formats,
		Logger:    logger,
	}

	var result *pipeline.Result
	var err error
	if opts.watch {
		result, err = runLabelWatch(ctx, runner, pipeOpts)
	} else {
		spinner := newSpinnerWithContext(ctx, "Computing label points...")
		spinner.Start()
		result, err = runner.Execute(ctx, pipeOpts)
		spinner.Stop()
		if spinner.Cancelled() {
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	paths, err := writeArtifacts(input, opts.output, result)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Wrote %d output file(s)", len(paths)))

	printSuccess("Labeled %d feature(s)", result.Stats.FeatureCount)
	printStats(result.Stats.FeatureCount, result.Stats.TotalProbes, result.CacheInfo.Hits)
	for _, p := range paths {
		printFile(p)
	}
	if !containsFormat(opts.formats, pipeline.FormatSVG) {
		printNextStep("Preview the result", fmt.Sprintf("polylabel render %s", input))
	}
	return nil
}

// writeArtifacts writes each rendered artifact next to the input file, or at
// the explicit output path. With multiple formats the output is treated as a
// base path and the format extension is appended.
func writeArtifacts(input, output string, result *pipeline.Result) ([]string, error) {
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input)) + "-labels"
	}

	single := len(result.Artifacts) == 1
	paths := make([]string, 0, len(result.Artifacts))
	for format, data := range result.Artifacts {
		path := base + "." + format
		if single && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func containsFormat(formats []string, want string) bool {
	for _, f := range formats {
		if f == want {
			return true
		}
	}
	return false
}
