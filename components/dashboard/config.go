package dashboard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var configValidate = validator.New(validator.WithRequiredStructEnabled())

// Config is the application configuration file read by feedbackctl.
type Config struct {
	Listen     string         `yaml:"listen" validate:"required"`
	Dataset    string         `yaml:"dataset,omitempty"`
	LogLevel   string         `yaml:"log_level"`
	SessionTTL time.Duration  `yaml:"session_ttl" validate:"gte=0"`
	Records    RecordsConfig  `yaml:"records"`
	Charts     ChartsConfig   `yaml:"charts"`
	Remote     RemoteConfig   `yaml:"remote,omitempty"`
	Activity   ActivityConfig `yaml:"activity,omitempty"`
}

// ActivityConfig records viewer actions (filter, reset, export) as go-users
// activity records appended to File. An empty File disables the audit log.
type ActivityConfig struct {
	File    string `yaml:"file,omitempty"`
	Channel string `yaml:"channel,omitempty"`
}

// Enabled reports whether activity is recorded.
func (a ActivityConfig) Enabled() bool {
	return strings.TrimSpace(a.File) != ""
}

// RecordsConfig controls where records come from. File, when set, replaces
// the generator with a JSON record file; Watch reloads it on change.
type RecordsConfig struct {
	Count int    `yaml:"count" validate:"gte=0"`
	Seed  uint64 `yaml:"seed"`
	Days  int    `yaml:"days" validate:"gte=0"`
	File  string `yaml:"file,omitempty"`
	Watch bool   `yaml:"watch,omitempty"`
}

// RemoteConfig points the loader at an upstream feedback API instead of the
// generator. An empty BaseURL keeps generated records.
type RemoteConfig struct {
	BaseURL  string        `yaml:"base_url,omitempty" validate:"omitempty,http_url"`
	APIKey   string        `yaml:"api_key,omitempty"`
	PageSize int           `yaml:"page_size,omitempty" validate:"gte=0"`
	Timeout  time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
}

// Enabled reports whether records come from the remote API.
func (r RemoteConfig) Enabled() bool {
	return strings.TrimSpace(r.BaseURL) != ""
}

// ChartsConfig controls chart rendering.
type ChartsConfig struct {
	Theme      string        `yaml:"theme,omitempty"`
	AssetsHost string        `yaml:"assets_host,omitempty"`
	CacheTTL   time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// ReadConfig loads a configuration file from disk.
func ReadConfig(path string) (Config, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: open config %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := DecodeConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: decode config %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig parses YAML configuration, filling defaults. An empty document
// yields DefaultConfig.
func DecodeConfig(r io.Reader) (Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("dashboard: parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = defaultSessionTTL
	}
	if c.Records.Count == 0 {
		c.Records.Count = 500
	}
	if c.Records.Seed == 0 {
		c.Records.Seed = 1
	}
	if c.Records.Days == 0 {
		c.Records.Days = 90
	}
	if c.Charts.CacheTTL == 0 {
		c.Charts.CacheTTL = defaultChartCacheTTL
	}
	if c.Activity.Enabled() && c.Activity.Channel == "" {
		c.Activity.Channel = "feedback_dashboard"
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = 10 * time.Second
	}
}

// Validate checks value ranges and the log level name.
func (c Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := configValidate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return fmt.Errorf("dashboard: invalid config %s: failed %q", f.Namespace(), f.Tag())
		}
		return fmt.Errorf("dashboard: invalid config: %w", err)
	}
	return nil
}

// ParseLogLevel maps a level name to slog.Level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("dashboard: invalid log level %q", name)
	}
	return level, nil
}
