package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pnrjson/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Logging:
//   - Default: the config file's log.level, info when unset
//   - With --verbose (-v): debug level
//
// The logger is attached to the command context and accessible to all
// commands via loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "pnrjson exports place-and-route designs as JSON netlists",
		Long: `pnrjson reads a design description (TOML or YAML) and writes the JSON
netlist interchange document consumed by downstream analysis and
visualization tools. It can also draw the design as a schematic and serve
both over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			level := c.Config.LogLevel()
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./pnrjson.yaml or ~/.config/pnrjson/pnrjson.yaml)")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
