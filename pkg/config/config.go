// Package config loads the engine configuration from an optional YAML file
// plus environment variables. Environment always wins: the YAML file carries
// deployment shape (address, logging, model defaults), the environment
// carries credentials.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polymind-ai/polymind/pkg/models"
)

// Environment variable names.
const (
	EnvAPIKeys  = "CEREBRAS_API_KEYS"
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
)

// Config is the resolved engine configuration.
type Config struct {
	// Host is the listen address; empty binds all interfaces.
	Host string `yaml:"host,omitempty"`
	// Port is the HTTP listen port.
	Port int `yaml:"port,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
	// BaseURL overrides the upstream provider endpoint; used by tests and
	// self-hosted gateways.
	BaseURL string `yaml:"base_url,omitempty"`

	// Defaults for the auxiliary models when a request omits them.
	SummarizerModel *models.ModelConfig `yaml:"summarizer_model,omitempty"`
	IntegratorModel *models.ModelConfig `yaml:"integrator_model,omitempty"`

	// APIKeys come from the environment only, never from YAML.
	APIKeys []string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:     8080,
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty), then environment overrides. Credentials being absent is not a
// load failure; the server reports it per request.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{File: path, Err: err}
		}
		if err := yaml.Unmarshal(ExpandEnv(data), cfg); err != nil {
			return nil, &LoadError{File: path, Err: fmt.Errorf("%w: %v", ErrInvalidYAML, err)}
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if keys := os.Getenv(EnvAPIKeys); keys != "" {
		c.APIKeys = ParseKeys(keys)
	}
	if port := os.Getenv(EnvPort); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return NewValidationError("port", fmt.Errorf("%w: %d", ErrInvalidValue, c.Port))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return NewValidationError("log_level", fmt.Errorf("%w: %q", ErrInvalidValue, c.LogLevel))
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ParseKeys splits a comma-separated credential list, trimming whitespace
// and discarding empty entries.
func ParseKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
