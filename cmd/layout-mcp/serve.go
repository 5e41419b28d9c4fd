package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ironsheep/layout-tools-mcp/internal/config"
	"github.com/ironsheep/layout-tools-mcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Runs the layout MCP server. Requests are read from stdin, one JSON-RPC
message per line, and answered on stdout. Configure it in your MCP client
(e.g., Claude Desktop) as:

  layout-mcp serve --resource-path /data/books

Edits to the config file take effect without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.mgr.Get()
			server.Version = Version

			srv, err := server.New(cfg, a.logger)
			if err != nil {
				return err
			}

			if a.mgr.ConfigFile() != "" {
				a.mgr.OnChange(func(c *config.Config) {
					a.level.Set(c.Level())
					srv.SetConfig(c)
				})
				a.mgr.WatchConfig()
			}

			a.logger.Info("layout MCP server ready", "resource_path", cfg.ResourcePath, "version", Version)
			err = srv.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
