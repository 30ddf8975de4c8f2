package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/net/http/httpguts"
)

// Environment variable names. The JF_* names are shared with other
// Jellyfin tooling and are read verbatim.
const (
	EnvAPIKey         = "JF_API_KEY"
	EnvBaseURL        = "JF_BASE_URL"
	EnvUserID         = "JF_USER_ID"
	EnvTVLibraryID    = "JF_TV_LIBRARY_ID"
	EnvMovieLibraryID = "JF_MOVIE_LIBRARY_ID"

	EnvLogLevel     = "JFRYOT_LOG_LEVEL"
	EnvHTTPTimeout  = "JFRYOT_HTTP_TIMEOUT"
	EnvHTTPAttempts = "JFRYOT_HTTP_ATTEMPTS"
)

// Config represents the main application configuration
type Config struct {
	Jellyfin JellyfinConfig `yaml:"jellyfin"`
	HTTP     HTTPConfig     `yaml:"http"`
	App      AppConfig      `yaml:"app"`
}

// JellyfinConfig holds the media server connection settings
type JellyfinConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	UserID         string `yaml:"user_id"`
	TVLibraryID    string `yaml:"tv_library_id"`
	MovieLibraryID string `yaml:"movie_library_id,omitempty"` // only needed by "movies"
}

// HTTPConfig holds transport settings for outgoing requests
type HTTPConfig struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`      // 0 means no client timeout
	MaxAttempts int           `yaml:"max_attempts,omitempty"` // 1 means a single attempt
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Load builds the configuration from an optional YAML file and the
// environment. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() error {
	// Jellyfin
	overrideString(&c.Jellyfin.APIKey, EnvAPIKey)
	overrideString(&c.Jellyfin.BaseURL, EnvBaseURL)
	overrideString(&c.Jellyfin.UserID, EnvUserID)
	overrideString(&c.Jellyfin.TVLibraryID, EnvTVLibraryID)
	overrideString(&c.Jellyfin.MovieLibraryID, EnvMovieLibraryID)

	// HTTP
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		c.HTTP.Timeout = d
	}
	if v := os.Getenv(EnvHTTPAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPAttempts, err)
		}
		c.HTTP.MaxAttempts = n
	}

	// App
	overrideString(&c.App.LogLevel, EnvLogLevel)
	return nil
}

func overrideString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func (c *Config) setDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.HTTP.MaxAttempts == 0 {
		c.HTTP.MaxAttempts = 1
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Jellyfin.validate(); err != nil {
		return err
	}

	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout must not be negative")
	}
	if c.HTTP.MaxAttempts < 1 {
		return errors.New("http.max_attempts must be at least 1")
	}

	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error (got %q)", c.App.LogLevel)
	}
	return nil
}

func (j *JellyfinConfig) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{EnvAPIKey, j.APIKey},
		{EnvBaseURL, j.BaseURL},
		{EnvUserID, j.UserID},
		{EnvTVLibraryID, j.TVLibraryID},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if !httpguts.ValidHeaderFieldValue(j.APIKey) {
		return fmt.Errorf("%s contains invalid header characters", EnvAPIKey)
	}
	return validateURL(j.BaseURL, EnvBaseURL)
}

// RequireMovieLibrary reports the missing movie library id. It is checked
// lazily because only the movie export needs it.
func (j *JellyfinConfig) RequireMovieLibrary() (string, error) {
	if j.MovieLibraryID == "" {
		return "", fmt.Errorf("%s is required", EnvMovieLibraryID)
	}
	return j.MovieLibraryID, nil
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
