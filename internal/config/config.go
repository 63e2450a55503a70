// Package config loads and validates the capture service configuration.
//
// DESIGN: Unlike a production gateway, capture is a debugging aid - every
// field is optional and absence means a documented default. A missing or
// empty config file is therefore valid and yields the default configuration.
//
// FILES:
//   - config.go:     Root Config struct, Load(), defaults, Validate()
//   - capture.go:    Capture behavior settings
//   - monitoring.go: Logging settings
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the capture service.
type Config struct {
	Capture    CaptureConfig    `yaml:"capture"`    // Prompt capture behavior
	Listener   ListenerConfig   `yaml:"listener"`   // Websocket hook listener
	Monitoring MonitoringConfig `yaml:"monitoring"` // Logging settings
}

// ListenerConfig contains websocket listener settings.
type ListenerConfig struct {
	Port         int           `yaml:"port"`          // Port to listen on
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Max idle time per frame read
	WriteTimeout time.Duration `yaml:"write_timeout"` // Max time to write an ack
}

// expandEnvWithDefaults expands environment variables with support for default
// values. Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes.
// Supports ${VAR:-default} env var expansion, applies defaults for absent
// fields, then validates.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills absent fields with their documented defaults.
func (c *Config) applyDefaults() {
	c.Capture.applyDefaults()

	if c.Listener.Port == 0 {
		c.Listener.Port = 8799
	}
	if c.Listener.ReadTimeout == 0 {
		c.Listener.ReadTimeout = 5 * time.Minute
	}
	if c.Listener.WriteTimeout == 0 {
		c.Listener.WriteTimeout = 10 * time.Second
	}

	if c.Monitoring.LogLevel == "" {
		c.Monitoring.LogLevel = "info"
	}
	if c.Monitoring.LogFormat == "" {
		c.Monitoring.LogFormat = "auto"
	}
	if c.Monitoring.LogOutput == "" {
		c.Monitoring.LogOutput = "stderr"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Listener.Port < 1 || c.Listener.Port > 65535 {
		return fmt.Errorf("invalid listener.port: %d (must be 1-65535)", c.Listener.Port)
	}

	if err := c.Capture.Validate(); err != nil {
		return err
	}

	switch c.Monitoring.LogFormat {
	case "json", "console", "auto":
	default:
		return fmt.Errorf("invalid monitoring.log_format: %s (must be json, console, or auto)", c.Monitoring.LogFormat)
	}

	return nil
}
