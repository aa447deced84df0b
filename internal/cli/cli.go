// Package cli implements the objgraph command-line interface.
//
// The commands work on envelope files and on the configured snapshot store:
//   - inspect: print envelope statistics
//   - validate: check envelope files for structural errors
//   - render: draw an envelope as a DOT, SVG, PDF or PNG diagram
//   - store: put, get, list, browse and delete stored snapshots
//   - serve: run the snapshot HTTP service
//
// All commands accept --config (a TOML or YAML file) and --verbose.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/buildinfo"
	"github.com/matzehuels/objgraph/pkg/codec"
	"github.com/matzehuels/objgraph/pkg/config"
	"github.com/matzehuels/objgraph/pkg/snapshot"
)

const appName = "objgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a CLI with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "objgraph serializes object graphs into portable envelopes",
		Long:              `objgraph inspects, validates, renders and stores object-graph envelopes: JSON documents that preserve shared references, cycles and ancestry.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and applies the log level before any command
// runs. --verbose wins over the configured level.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.Config = cfg
	}

	level := c.Config.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.Logger.SetLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// newSerializer creates a serializer from the configuration.
func (c *CLI) newSerializer() *codec.Serializer {
	return codec.New(
		codec.WithMaxDepth(c.Config.MaxDepth),
		codec.WithLogger(c.Logger),
	)
}

// openRunner opens the configured store and wraps it in a snapshot runner.
// The caller must call the returned close function.
func (c *CLI) openRunner(ctx context.Context) (*snapshot.Runner, func(), error) {
	st, err := c.Config.Store.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	r := snapshot.NewRunner(c.newSerializer(), st, nil, c.Logger)
	r.Namespace = c.Config.Store.Namespace
	r.TTL = c.Config.Store.TTL.Std()

	closeFn := func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}
	return r, closeFn, nil
}
