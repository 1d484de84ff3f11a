package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pnrjson/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output   string  // output file (single format) or base path (multiple)
	formats  string  // comma-separated output formats
	detailed bool    // label edges with net names and show cell parameters
	scale    float64 // PNG scale factor
	noCache  bool    // disable the artifact cache
	refresh  bool    // bypass cached artifacts
}

// renderCommand creates the render command that draws a design as a schematic.
func (c *CLI) renderCommand() *cobra.Command {
	flags := renderFlags{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [design]",
		Short: "Draw a design as a schematic",
		Long: `Draw a design as a schematic.

Cells are drawn as boxes, top-level ports as ellipses and nets as edges from
driver to load. Bus ports are drawn as one node per bus.

Formats: svg (default), dot, pdf, png. Several formats may be given as a
comma-separated list; --output is then used as a base path. PDF and PNG
output require rsvg-convert.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.Formats = parseFormats(flags.formats)
			opts.Detailed = flags.detailed
			opts.Scale = flags.scale
			opts.Refresh = flags.refresh
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], flags, opts)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show net names and cell parameters")
	cmd.Flags().Float64Var(&flags.scale, "scale", flags.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached schematics")

	return cmd
}

// runRender loads the design and renders it in every requested format.
func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, err := runner.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, "Rendering schematic...")
	spinner.Start()

	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	printSuccess("Rendered %s", input)
	printStats(result.Stats.Ports, result.Stats.Cells, result.Stats.Nets, result.CacheInfo.RenderHit)

	formats := make([]string, 0, len(result.Artifacts))
	for format := range result.Artifacts {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	multi := len(formats) > 1
	for _, format := range formats {
		path := outputPath(input, flags.output, format, multi)
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
