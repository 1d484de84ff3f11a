package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pnrjson/pkg/pipeline"
)

// exportFlags holds the command-line flags for the export command.
type exportFlags struct {
	output       string // output file, "-" for stdout
	creator      string // creator string written to the document
	order        string // enumeration order: declaration, name
	strictQuotes bool   // full JSON string escaping
	gzip         bool   // gzip-compress the output
	watch        bool   // re-export when the design file changes
	noCache      bool   // disable the artifact cache
	refresh      bool   // bypass cached artifacts
}

// exportCommand creates the export command that writes the JSON netlist.
func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export [design]",
		Short: "Write the JSON netlist of a design",
		Long: `Write the JSON netlist of a design description.

The design is read from a TOML or YAML file. The netlist is written next to
it with a .json extension unless --output is given. Use --output - to write
to stdout.

With --watch, the design is re-exported every time the file changes until
interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			applyExportFlags(cmd, &opts, flags)
			opts.Formats = []string{pipeline.FormatJSON}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			export := func() error {
				return c.runExport(ctx, runner, args[0], flags.output, opts)
			}
			if !flags.watch {
				return export()
			}
			if flags.output == "-" {
				return fmt.Errorf("--watch cannot write to stdout")
			}
			runLogged(c.Logger, export)
			return watchFile(ctx, args[0], c.Logger, export)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <design>.json, - for stdout)")
	cmd.Flags().StringVar(&flags.creator, "creator", "", "creator string (default: pnrjson version)")
	cmd.Flags().StringVar(&flags.order, "order", "", "enumeration order: declaration (default), name")
	cmd.Flags().BoolVar(&flags.strictQuotes, "strict-quotes", false, "escape strings per RFC 8259 instead of doubling backslashes only")
	cmd.Flags().BoolVar(&flags.gzip, "gzip", false, "gzip-compress the output")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-export when the design file changes")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached netlists")

	return cmd
}

// applyExportFlags overrides config values with flags given on the command line.
func applyExportFlags(cmd *cobra.Command, opts *pipeline.Options, flags exportFlags) {
	f := cmd.Flags()
	if f.Changed("creator") {
		opts.Creator = flags.creator
	}
	if f.Changed("order") {
		opts.Order = flags.order
	}
	if f.Changed("strict-quotes") {
		opts.StrictQuotes = flags.strictQuotes
	}
	if f.Changed("gzip") {
		opts.Gzip = flags.gzip
	}
	opts.Refresh = flags.refresh
}

// runExport loads the design and streams its netlist to output.
func (c *CLI) runExport(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	prog := newProgress(c.Logger)

	src, err := runner.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	if output == "-" {
		return streamExport(ctx, runner, os.Stdout, src, opts)
	}

	path := exportPath(input, output, opts.Gzip)
	hit, err := exportFile(ctx, runner, path, src, opts)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	d := src.Design
	printSuccess("Exported netlist")
	printStats(len(d.Ports()), len(d.Cells()), len(d.Nets()), hit)
	printFile(path)
	prog.done("Export complete")
	return nil
}

// streamExport writes the netlist of src to w through a buffered writer.
func streamExport(ctx context.Context, runner *pipeline.Runner, w io.Writer, src *pipeline.Source, opts pipeline.Options) error {
	bw := bufio.NewWriter(w)
	if _, err := runner.ExportTo(ctx, bw, src, opts); err != nil {
		return err
	}
	return bw.Flush()
}

// exportFile streams the netlist of src into a new file at path.
func exportFile(ctx context.Context, runner *pipeline.Runner, path string, src *pipeline.Source, opts pipeline.Options) (hit bool, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.Create(path)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if hit, err = runner.ExportTo(ctx, bw, src, opts); err != nil {
		return false, err
	}
	return hit, bw.Flush()
}

// exportPath returns the netlist path for input. Gzip output gets a .gz
// suffix unless the explicit output already has one.
func exportPath(input, output string, gzip bool) string {
	path := outputPath(input, output, pipeline.FormatJSON, false)
	if gzip && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	return path
}
