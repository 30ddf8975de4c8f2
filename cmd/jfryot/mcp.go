package main

import (
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/jfryot/internal/config"
	mcpserver "github.com/vadimtrunov/jfryot/internal/mcp"
)

// newMCPServeCmd returns the hidden "mcp-serve" subcommand.
// It serves the export tools over stdin/stdout; logs go to stderr.
func newMCPServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:    "mcp-serve",
		Short:  "Start MCP server over stdio (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			logger := config.SetupLogger(cfg.App.LogLevel, cmd.ErrOrStderr())

			exp, err := initExporter(cfg, logger)
			if err != nil {
				return err
			}

			srv := mcpserver.NewServer(mcpserver.Deps{
				Exporter:       exp,
				MovieLibraryID: cfg.Jellyfin.RequireMovieLibrary,
			}, version, logger)
			return srv.ServeStdio(cmd.Context())
		},
	}
}
