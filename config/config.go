// Package config handles YAML bot configuration loading with
// environment variable expansion, for consumers that prefer a config
// file over wiring httpapi/gateway options by hand in code.
package config

import (
	"fmt"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"
)

// Config is the top-level configuration for a bot or bridge built on
// this module.
type Config struct {
	Token     TokenConfig     `yaml:"token"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TokenConfig selects which credential the client authenticates with.
type TokenConfig struct {
	Bot     string `yaml:"bot"`     // X-Bot-Token value, if this is a bot
	Session string `yaml:"session"` // X-Session-Token value, if this is a user session
}

// EndpointsConfig overrides the default REST hosts.
type EndpointsConfig struct {
	API string `yaml:"api"`
	CDN string `yaml:"cdn"`
}

// GatewayConfig overrides gateway connection settings.
type GatewayConfig struct {
	URL    string `yaml:"url"`
	Format string `yaml:"format"` // "json" or "msgpack"
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`    // OTLP gRPC endpoint
	SampleRate float64 `yaml:"sample_rate"` // 0.0 to 1.0
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(varName); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads and parses a YAML config file, expanding environment
// variables, and fills in the same defaults the zero-option
// constructors use.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	data = expandEnv(data)

	cfg := &Config{
		Endpoints: EndpointsConfig{
			API: "https://api.stoat.chat",
			CDN: "https://cdn.revoltusercontent.com",
		},
		Gateway: GatewayConfig{
			URL:    "wss://ws.revolt.chat",
			Format: "msgpack",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// IsBot reports whether Token names a bot credential rather than a user
// session.
func (c *Config) IsBot() bool {
	return c.Token.Bot != ""
}
