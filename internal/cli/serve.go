package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/objgraph/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			r, closeFn, err := c.openRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			logger := loggerFromContext(cmd.Context())
			logger.Info("serving snapshots", "backend", c.Config.Store.Backend, "namespace", r.Namespace)
			return server.New(r, logger).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
