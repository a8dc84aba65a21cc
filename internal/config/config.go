// Package config handles the XDG configuration directory, file paths and
// the settings file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tick/internal/logging"
)

const (
	// AppName is the application directory name.
	AppName = "tick"

	// SettingsName is the settings file name without extension (config.yaml).
	SettingsName = "config"

	// SessionFile holds the REST access and refresh tokens.
	SessionFile = "session.json"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored Google OAuth token filename.
	TokenFile = "token.json"

	// CacheDirName is the query cache directory inside Dir.
	CacheDirName = "cache"
)

// Backend names accepted in the settings file.
const (
	BackendREST   = "rest"
	BackendGoogle = "google"
)

// Settings are read from config.yaml and TICK_* environment variables.
type Settings struct {
	Backend        string        `mapstructure:"backend"`
	APIURL         string        `mapstructure:"api_url"`
	WSURL          string        `mapstructure:"ws_url"`
	Timezone       string        `mapstructure:"timezone"`
	Cache          bool          `mapstructure:"cache"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Backend:        BackendREST,
		APIURL:         "http://localhost:8080/api",
		WSURL:          "ws://localhost:8080/ws/websocket",
		Cache:          true,
		RequestTimeout: 10 * time.Second,
	}
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Offline serves reads from the cache only.
	Offline bool

	Settings Settings

	// Logger receives debug output. Never nil after New.
	Logger *slog.Logger

	// Location is the zone used for day boundaries.
	Location *time.Location

	// Now is the clock used by every view. Tests replace it.
	Now func() time.Time
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tick or $HOME/.config/tick.
// Settings are not read; call LoadSettings.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		Settings: DefaultSettings(),
		Logger:   logging.Nop(),
		Location: time.Local,
		Now:      time.Now,
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// LoadSettings reads config.yaml from Dir and the environment. A missing
// file leaves the defaults in place.
func (c *Config) LoadSettings() error {
	v := viper.New()
	def := DefaultSettings()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("ws_url", def.WSURL)
	v.SetDefault("timezone", def.Timezone)
	v.SetDefault("cache", def.Cache)
	v.SetDefault("request_timeout", def.RequestTimeout)

	v.SetConfigName(SettingsName)
	v.SetConfigType("yaml")
	v.AddConfigPath(c.Dir)
	v.SetEnvPrefix("TICK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading %s: %w", c.SettingsPath(), err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	c.Settings = s

	if s.Timezone != "" {
		loc, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return fmt.Errorf("timezone %q: %w", s.Timezone, err)
		}
		c.Location = loc
	}
	return nil
}

// Validate checks the settings values.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendREST, BackendGoogle:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendREST, BackendGoogle, s.Backend)
	}
	if s.Backend == BackendREST && s.APIURL == "" {
		return errors.New("api_url is required for the rest backend")
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", s.RequestTimeout)
	}
	return nil
}

// Clock returns the current time in the configured location.
func (c *Config) Clock() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsName+".yaml")
}

// SessionPath returns the path to the REST session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// CacheDir returns the query cache directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.Dir, CacheDirName)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	return exists(c.OAuthClientPath())
}

// HasCredentials reports whether the active backend has stored credentials.
func (c *Config) HasCredentials() bool {
	if c.Settings.Backend == BackendGoogle {
		return exists(c.TokenPath())
	}
	return exists(c.SessionPath())
}

// RemoveCredentials deletes the stored credentials of the active backend.
// A missing file is not an error.
func (c *Config) RemoveCredentials() error {
	path := c.SessionPath()
	if c.Settings.Backend == BackendGoogle {
		path = c.TokenPath()
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
