// Package config loads imlogin settings from YAML and validates them.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imdesk/imclient/pkg/discovery"
	"github.com/imdesk/imclient/pkg/transport"
)

// Config is the complete client configuration.
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Discovery   DiscoveryConfig `yaml:"discovery"`
	Framing     string          `yaml:"framing"`
	LogLevel    string          `yaml:"log_level"`
	ProtocolLog string          `yaml:"protocol_log"`

	Timeout     time.Duration `yaml:"-"`
	DialTimeout time.Duration `yaml:"-"`

	// Raw duration strings for YAML unmarshaling
	TimeoutRaw     string `yaml:"timeout"`
	DialTimeoutRaw string `yaml:"dial_timeout"`
}

// ServerConfig is the login server endpoint.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DiscoveryConfig controls mDNS lookup of the server.
type DiscoveryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interface string        `yaml:"interface"`
	Timeout   time.Duration `yaml:"-"`

	TimeoutRaw string `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Host: "127.0.0.1", Port: transport.DefaultPort},
		Discovery: DiscoveryConfig{Timeout: discovery.DefaultBrowseTimeout},
		Framing:   transport.FramingRaw.String(),
		LogLevel:  "info",
		Timeout:   transport.DefaultTimeout,
	}
}

// Load reads path over the defaults. ${VAR} references are expanded from
// the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with its value, or "" if unset.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envRef.FindStringSubmatch(match)[1])
	})
}

func (c *Config) parseDurations() error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"timeout", c.TimeoutRaw, &c.Timeout},
		{"dial_timeout", c.DialTimeoutRaw, &c.DialTimeout},
		{"discovery.timeout", c.Discovery.TimeoutRaw, &c.Discovery.Timeout},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := parseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// parseDuration accepts Go durations and bare integers as milliseconds.
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !c.Discovery.Enabled && c.Server.Host == "" {
		return fmt.Errorf("server.host is required (or enable discovery)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("dial_timeout must not be negative, got %s", c.DialTimeout)
	}
	if c.Discovery.Enabled && c.Discovery.Timeout <= 0 {
		return fmt.Errorf("discovery.timeout must be positive, got %s", c.Discovery.Timeout)
	}
	if _, err := transport.ParseFraming(c.Framing); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Address returns the configured server as host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ClientConfig converts the settings to a transport configuration.
func (c *Config) ClientConfig() transport.ClientConfig {
	framing, _ := transport.ParseFraming(c.Framing)
	return transport.ClientConfig{
		Address:     c.Address(),
		Timeout:     c.Timeout,
		DialTimeout: c.DialTimeout,
		Framing:     framing,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}
