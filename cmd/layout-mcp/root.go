package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/layout-tools-mcp/internal/config"
)

// app carries the state shared by all commands once flags are parsed.
type app struct {
	cfgFile      string
	resourcePath string
	logLevel     string

	mgr    *config.Manager
	level  *slog.LevelVar
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{level: new(slog.LevelVar)}

	cmd := &cobra.Command{
		Use:   "layout-mcp",
		Short: "Page layout analysis for scanned books",
		Long: `layout-mcp segments scanned book pages into typed regions (paragraphs,
headings, images, marginalia, page numbers) with a reading order, and
exchanges results as PAGE XML.

It runs as an MCP server over stdin/stdout or as a one-shot command line
tool. Configuration is read from config.yaml (. or $HOME/.layout-mcp),
LAYOUT_MCP_* environment variables and a .env file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: search . and $HOME/.layout-mcp)")
	cmd.PersistentFlags().StringVar(&a.resourcePath, "resource-path", "", "directory holding one sub-directory per book")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newSegmentCmd(a))
	cmd.AddCommand(newBooksCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads the configuration, applies flag overrides and installs the
// logger. Logs go to stderr; stdout is reserved for the MCP protocol and
// command output.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	mgr, err := config.NewManager(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("resource-path") {
		if err := mgr.Set("resource_path", a.resourcePath); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("log-level") {
		if err := mgr.Set("log_level", a.logLevel); err != nil {
			return err
		}
	}
	a.mgr = mgr

	a.level.Set(mgr.Get().Level())
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: a.level}))
	slog.SetDefault(a.logger)

	a.logger.Debug("layout-mcp starting",
		"version", Version,
		"built", BuildTime,
		"commit", GitCommit,
		"config", mgr.ConfigFile())
	return nil
}
