package main

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/jfryot/internal/config"
	"github.com/vadimtrunov/jfryot/internal/export"
	"github.com/vadimtrunov/jfryot/internal/httpclient"
	"github.com/vadimtrunov/jfryot/internal/mediaserver/jellyfin"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
)

// loadConfig loads and validates the configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// initExporter wires the HTTP client, the Jellyfin client and the exporter.
func initExporter(cfg *config.Config, logger *slog.Logger) (*export.Exporter, error) {
	hcfg := httpclient.DefaultConfig()
	hcfg.Timeout = cfg.HTTP.Timeout
	hcfg.MaxAttempts = cfg.HTTP.MaxAttempts

	ms, err := jellyfin.New(cfg.Jellyfin, httpclient.New(hcfg, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("create jellyfin client: %w", err)
	}
	logger.Info("Jellyfin media server initialized",
		slog.String("url", sanitizeURL(cfg.Jellyfin.BaseURL)),
		slog.Int("max_attempts", hcfg.MaxAttempts),
	)
	return export.New(ms, logger), nil
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
