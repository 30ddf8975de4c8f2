package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/jfryot/internal/config"
)

// newConfigCmd returns the "config" subcommand group for configuration management.
func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigValidateCmd(opts))
	return cmd
}

// newConfigValidateCmd checks the configuration file and environment without
// contacting the server.
func newConfigValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), styleSuccess.Render("✓ Configuration is valid"))
			fmt.Fprintln(cmd.ErrOrStderr(), renderTable([]string{"Setting", "Value"}, configRows(cfg)))
			if _, err := cfg.Jellyfin.RequireMovieLibrary(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleDim.Render("movies export disabled: "+err.Error()))
			}
			return nil
		},
	}
}

// configRows lists the effective settings with the token masked.
func configRows(cfg *config.Config) [][]string {
	timeout := "none"
	if cfg.HTTP.Timeout > 0 {
		timeout = cfg.HTTP.Timeout.String()
	}
	movies := cfg.Jellyfin.MovieLibraryID
	if movies == "" {
		movies = "-"
	}
	return [][]string{
		{config.EnvBaseURL, sanitizeURL(cfg.Jellyfin.BaseURL)},
		{config.EnvAPIKey, maskSecret(cfg.Jellyfin.APIKey)},
		{config.EnvUserID, cfg.Jellyfin.UserID},
		{config.EnvTVLibraryID, cfg.Jellyfin.TVLibraryID},
		{config.EnvMovieLibraryID, movies},
		{config.EnvHTTPTimeout, timeout},
		{config.EnvHTTPAttempts, strconv.Itoa(cfg.HTTP.MaxAttempts)},
		{config.EnvLogLevel, cfg.App.LogLevel},
	}
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
