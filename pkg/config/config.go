// Package config loads presenced settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SustainFactor derives the sustain interval from the poll interval when
// sustain_interval is not set.
const SustainFactor = 60

// Notification backends selectable with notify.
const (
	NotifyNtfy   = "ntfy"
	NotifyStdout = "stdout"
)

// Config holds all configuration for presenced
type Config struct {
	// Presence timing
	PollInterval    time.Duration `yaml:"poll_interval" env:"PRESENCED_POLL_INTERVAL"`
	SustainInterval time.Duration `yaml:"sustain_interval" env:"PRESENCED_SUSTAIN_INTERVAL"`
	IdleThreshold   time.Duration `yaml:"idle_threshold" env:"PRESENCED_IDLE_THRESHOLD"`

	// Logging
	LogLevel  string `yaml:"log_level" env:"PRESENCED_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"PRESENCED_LOG_FORMAT"`

	// Notification settings
	NtfyTopic  string `yaml:"ntfy_topic" env:"PRESENCED_NTFY_TOPIC"`
	NtfyServer string `yaml:"ntfy_server" env:"PRESENCED_NTFY_SERVER"`
	Quiet      bool   `yaml:"quiet" env:"PRESENCED_QUIET"`
	// Notify selects where forwarded events go: ntfy, or stdout, which
	// prints them as text on stderr.
	Notify string `yaml:"notify" env:"PRESENCED_NOTIFY"`

	// Forwarding
	Forward           []string `yaml:"forward" env:"PRESENCED_FORWARD"`
	ForwardHeartbeats bool     `yaml:"forward_heartbeats" env:"PRESENCED_FORWARD_HEARTBEATS"`

	// Rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxMessages int           `yaml:"max_messages"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:  time.Second,
		IdleThreshold: time.Minute,
		LogLevel:      "info",
		LogFormat:     "console",
		NtfyServer:    "https://ntfy.sh",
		Notify:        NotifyNtfy,
		Forward: []string{
			string(events.TypeSessionEnd),
			string(events.TypeSessionChanged),
		},
		RateLimit: RateLimitConfig{
			Window:      1 * time.Minute,
			MaxMessages: 5,
		},
	}
}

// EffectiveSustainInterval returns the configured sustain interval, or
// SustainFactor poll intervals when it is unset.
func (c *Config) EffectiveSustainInterval() time.Duration {
	if c.SustainInterval > 0 {
		return c.SustainInterval
	}
	return SustainFactor * c.PollInterval
}

// ForwardTypes returns the forwarded event types. Call after Load or
// Validate, which reject unknown names.
func (c *Config) ForwardTypes() []events.Type {
	types := make([]events.Type, 0, len(c.Forward))
	for _, name := range c.Forward {
		if t, err := events.ParseType(name); err == nil {
			types = append(types, t)
		}
	}
	return types
}

// Forwarding reports whether events should be forwarded at all.
func (c *Config) Forwarding() bool {
	return !c.Quiet && len(c.Forward) > 0
}

// Load loads configuration from the default file location and environment
func Load() (*Config, error) {
	return LoadFile(getConfigPath())
}

// LoadFile loads configuration from path, then applies environment
// overrides. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("PRESENCED_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "presenced", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "presenced", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (flag, env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"PRESENCED_POLL_INTERVAL", &cfg.PollInterval},
		{"PRESENCED_SUSTAIN_INTERVAL", &cfg.SustainInterval},
		{"PRESENCED_IDLE_THRESHOLD", &cfg.IdleThreshold},
	}
	for _, d := range durations {
		if v := os.Getenv(d.env); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", d.env, err)
			}
			*d.dst = parsed
		}
	}

	if level := os.Getenv("PRESENCED_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if format := os.Getenv("PRESENCED_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}

	if topic := os.Getenv("PRESENCED_NTFY_TOPIC"); topic != "" {
		cfg.NtfyTopic = topic
	}

	if server := os.Getenv("PRESENCED_NTFY_SERVER"); server != "" {
		cfg.NtfyServer = server
	}

	if notify := os.Getenv("PRESENCED_NOTIFY"); notify != "" {
		cfg.Notify = notify
	}

	if forward, ok := os.LookupEnv("PRESENCED_FORWARD"); ok {
		cfg.Forward = splitList(forward)
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{"PRESENCED_QUIET", &cfg.Quiet},
		{"PRESENCED_FORWARD_HEARTBEATS", &cfg.ForwardHeartbeats},
	}
	for _, b := range bools {
		if v := os.Getenv(b.env); v != "" {
			parsed, err := parseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s value: %w", b.env, err)
			}
			*b.dst = parsed
		}
	}

	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%q (use true/false)", v)
	}
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	if cfg.SustainInterval < 0 {
		return fmt.Errorf("sustain_interval must be non-negative")
	}

	if cfg.SustainInterval > 0 && cfg.SustainInterval < cfg.PollInterval {
		return fmt.Errorf("sustain_interval (%s) must not be shorter than poll_interval (%s)",
			cfg.SustainInterval, cfg.PollInterval)
	}

	if cfg.IdleThreshold < 0 {
		return fmt.Errorf("idle_threshold must be non-negative")
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	switch cfg.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", cfg.LogFormat)
	}

	for _, name := range cfg.Forward {
		if _, err := events.ParseType(name); err != nil {
			return fmt.Errorf("forward: %w", err)
		}
	}

	switch cfg.Notify {
	case "", NotifyNtfy:
		if cfg.Forwarding() && cfg.NtfyTopic == "" {
			return fmt.Errorf("ntfy_topic is required when forwarding events and not in quiet mode")
		}
	case NotifyStdout:
	default:
		return fmt.Errorf("notify must be %s or %s, got %q", NotifyNtfy, NotifyStdout, cfg.Notify)
	}

	if cfg.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("rate_limit.max_messages must be non-negative")
	}

	if cfg.RateLimit.Window < 0 {
		return fmt.Errorf("rate_limit.window must be non-negative")
	}

	return nil
}
