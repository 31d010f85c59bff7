// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Player   PlayerConfig           `yaml:"player"`
	Fetch    FetchConfig            `yaml:"fetch"`
	Audio    AudioConfig            `yaml:"audio"`
	Playlist PlaylistConfig         `yaml:"playlist"`
	State    StateConfig            `yaml:"state"`
	Checks   map[string]CheckConfig `yaml:"checks"`
	Messages MessagesConfig         `yaml:"messages"`
}

// PlayerConfig represents playback control configuration.
type PlayerConfig struct {
	CacheCapacity  int     `yaml:"cache_capacity" default:"3" validate:"gte=1,lte=64"`
	DisablePreload bool    `yaml:"disable_preload"`
	InitialVolume  float64 `yaml:"initial_volume" default:"0.5" validate:"gte=0,lte=1"`
}

// FetchConfig represents the stream fetch backend configuration.
type FetchConfig struct {
	Backend  string         `yaml:"backend" default:"http" validate:"oneof=http file"`
	Settings map[string]any `yaml:"settings"`
}

// AudioConfig represents audio output configuration.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs   int `yaml:"buffer_ms" default:"200" validate:"gte=10,lte=2000"`
}

// PlaylistConfig represents the playlist source configuration. Items
// from the file come first, inline items are appended after them.
type PlaylistConfig struct {
	Path  string               `yaml:"path"`
	Items []PlaylistItemConfig `yaml:"items" validate:"dive"`
}

// PlaylistItemConfig represents a single inline playlist entry.
type PlaylistItemConfig struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	URL   string `yaml:"url" validate:"required"`
}

// StateConfig represents session state persistence configuration.
// An empty path disables persistence.
type StateConfig struct {
	Path string `yaml:"path"`
}

// CheckConfig represents a playlist check's configuration.
type CheckConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents user-facing messages for check rejections.
type MessagesConfig struct {
	DefaultError         string `yaml:"default_error" default:"entry cannot be played"`
	InvalidURL           string `yaml:"invalid_url" default:"entry URL cannot be parsed"`
	SchemeNotAllowed     string `yaml:"scheme_not_allowed" default:"entry URL scheme is not allowed"`
	UnsupportedExtension string `yaml:"unsupported_extension" default:"no decoder for this file extension"`
	EmptyName            string `yaml:"empty_name" default:"entry has no name"`
	MissingExtension     string `yaml:"missing_extension" default:"entry name has no file extension"`
	EmptyURL             string `yaml:"empty_url" default:"entry has no URL"`
	DuplicateURL         string `yaml:"duplicate_url" default:"entry URL appears twice in the playlist"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive
// fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("STREAMBOX_AUTH_TOKEN"); v != "" {
		if c.Fetch.Settings == nil {
			c.Fetch.Settings = make(map[string]any)
		}
		headers, ok := c.Fetch.Settings["headers"].(map[string]any)
		if !ok {
			headers = make(map[string]any)
			c.Fetch.Settings["headers"] = headers
		}
		headers["Authorization"] = "Bearer " + v
	}
	if v := os.Getenv("STREAMBOX_STATE_PATH"); v != "" {
		c.State.Path = v
	}
}

// GetMessage returns the user-facing message for the given check code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "invalid_url":
		return c.Messages.InvalidURL
	case "scheme_not_allowed":
		return c.Messages.SchemeNotAllowed
	case "unsupported_extension":
		return c.Messages.UnsupportedExtension
	case "empty_name":
		return c.Messages.EmptyName
	case "missing_extension":
		return c.Messages.MissingExtension
	case "empty_url":
		return c.Messages.EmptyURL
	case "duplicate_url":
		return c.Messages.DuplicateURL
	default:
		return c.Messages.DefaultError
	}
}

// IsCheckEnabled checks if a playlist check is enabled. Checks that do
// not appear in the config at all default to enabled.
func (c *Config) IsCheckEnabled(checkName string) bool {
	if ch, ok := c.Checks[checkName]; ok {
		return ch.Enabled
	}
	return true
}

// GetCheckSettings returns the settings for a playlist check.
func (c *Config) GetCheckSettings(checkName string) map[string]any {
	if ch, ok := c.Checks[checkName]; ok && ch.Settings != nil {
		return ch.Settings
	}
	return map[string]any{}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validatePlaylistSource(); err != nil {
		return err
	}

	return nil
}

// validatePlaylistSource checks that at least one playlist source is
// configured.
func (c *Config) validatePlaylistSource() error {
	if c.Playlist.Path == "" && len(c.Playlist.Items) == 0 {
		return errors.New("playlist requires a path or inline items")
	}
	return nil
}
