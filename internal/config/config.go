package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/607011/hibpdl/internal/hibp"
)

// MaxPrefix is the exclusive upper bound of the 4-nibble prefix space.
const MaxPrefix = 0x10000

// Config defines configuration for the hibpdl CLI.
type Config struct {
	Output      string      `yaml:"output"`
	FirstPrefix uint32      `yaml:"-"`
	LastPrefix  uint32      `yaml:"-"`
	PrefixStep  uint32      `yaml:"-"`
	Workers     int         `yaml:"workers"`
	BaseURL     string      `yaml:"base_url"`
	UserAgent   string      `yaml:"user_agent"`
	Quiet       bool        `yaml:"quiet"`
	Verbosity   int         `yaml:"verbosity"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig defines the pause between retries of a failed range query.
// A zero backoff retries immediately; with a max backoff set, the pause
// doubles per consecutive failure up to that cap.
type RetryConfig struct {
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	workers := runtime.NumCPU()
	if workers < 4 {
		workers = 4
	}
	return Config{
		Output:      "hash+count.bin",
		FirstPrefix: 0x0000,
		LastPrefix:  MaxPrefix,
		PrefixStep:  0x0040,
		Workers:     workers,
		BaseURL:     hibp.DefaultBaseURL,
		UserAgent:   hibp.DefaultUserAgent,
	}
}

// ParsePrefix parses a hexadecimal prefix value bounded to [0, max].
func ParsePrefix(s string, max uint32) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("config: %q is not a hexadecimal number", s)
	}
	if uint32(v) > max {
		return 0, fmt.Errorf("config: prefix %s out of range, must be at most %x", s, max)
	}
	return uint32(v), nil
}

// yamlConfig is used for YAML unmarshaling with hex-string prefix fields.
type yamlConfig struct {
	Output      string          `yaml:"output"`
	FirstPrefix string          `yaml:"first_prefix"`
	LastPrefix  string          `yaml:"last_prefix"`
	PrefixStep  string          `yaml:"prefix_step"`
	Workers     int             `yaml:"workers"`
	BaseURL     string          `yaml:"base_url"`
	UserAgent   string          `yaml:"user_agent"`
	Quiet       bool            `yaml:"quiet"`
	Verbosity   int             `yaml:"verbosity"`
	Retry       yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("config: parse file: %w", err)
	}

	cfg := Default()

	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.FirstPrefix != "" {
		v, err := ParsePrefix(yc.FirstPrefix, MaxPrefix-1)
		if err != nil {
			return Config{}, fmt.Errorf("parse first_prefix: %w", err)
		}
		cfg.FirstPrefix = v
	}
	if yc.LastPrefix != "" {
		v, err := ParsePrefix(yc.LastPrefix, MaxPrefix)
		if err != nil {
			return Config{}, fmt.Errorf("parse last_prefix: %w", err)
		}
		cfg.LastPrefix = v
	}
	if yc.PrefixStep != "" {
		v, err := ParsePrefix(yc.PrefixStep, MaxPrefix-1)
		if err != nil {
			return Config{}, fmt.Errorf("parse prefix_step: %w", err)
		}
		cfg.PrefixStep = v
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.BaseURL != "" {
		cfg.BaseURL = yc.BaseURL
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	cfg.Quiet = yc.Quiet
	cfg.Verbosity = yc.Verbosity
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv overrides c from environment variables with the HIBPDL_
// prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("HIBPDL_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("HIBPDL_FIRST_PREFIX"); v != "" {
		p, err := ParsePrefix(v, MaxPrefix-1)
		if err != nil {
			return fmt.Errorf("parse HIBPDL_FIRST_PREFIX: %w", err)
		}
		c.FirstPrefix = p
	}
	if v := os.Getenv("HIBPDL_LAST_PREFIX"); v != "" {
		p, err := ParsePrefix(v, MaxPrefix)
		if err != nil {
			return fmt.Errorf("parse HIBPDL_LAST_PREFIX: %w", err)
		}
		c.LastPrefix = p
	}
	if v := os.Getenv("HIBPDL_PREFIX_STEP"); v != "" {
		p, err := ParsePrefix(v, MaxPrefix-1)
		if err != nil {
			return fmt.Errorf("parse HIBPDL_PREFIX_STEP: %w", err)
		}
		c.PrefixStep = p
	}
	if v := os.Getenv("HIBPDL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HIBPDL_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("HIBPDL_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("HIBPDL_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("HIBPDL_QUIET"); v != "" {
		c.Quiet = v == "true" || v == "1"
	}
	if v := os.Getenv("HIBPDL_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HIBPDL_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("HIBPDL_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HIBPDL_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}
	return nil
}

// Validate validates the configuration. A failure here is fatal and
// reported before any batch starts.
func (c *Config) Validate() error {
	if c.Output == "" {
		return errors.New("config: output is required")
	}
	if c.FirstPrefix >= MaxPrefix {
		return fmt.Errorf("config: first prefix %04x out of range, must be at most ffff", c.FirstPrefix)
	}
	if c.LastPrefix > MaxPrefix {
		return fmt.Errorf("config: last prefix %04x out of range, must be at most 10000", c.LastPrefix)
	}
	if c.FirstPrefix >= c.LastPrefix {
		return fmt.Errorf("config: empty prefix range [%04x, %04x)", c.FirstPrefix, c.LastPrefix)
	}
	if c.PrefixStep == 0 {
		return errors.New("config: prefix step must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	return nil
}
