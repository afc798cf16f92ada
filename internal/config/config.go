// Package config handles environment selection, actor credentials, load
// profiles, and YAML configuration parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"nooshload/internal/collector"
	"nooshload/internal/core"
)

// Config is the root configuration for one load test run.
type Config struct {
	Environment  string                 `yaml:"environment"`
	UserKey      string                 `yaml:"user"`
	Environments map[string]Environment `yaml:"environments,omitempty"`
	LoadProfile  *LoadProfile           `yaml:"loadProfile,omitempty"`
	Thresholds   *collector.Thresholds  `yaml:"thresholds,omitempty"`
	Execution    ExecutionConfig        `yaml:"execution,omitempty"`

	// SharedSession authenticates once during setup and hands the session to
	// every actor, instead of authenticating per actor per iteration.
	SharedSession bool `yaml:"sharedSession"`
	// WithSpec enables the best-effort create-spec step after create-project.
	WithSpec bool `yaml:"withSpec"`
	// AuthOnly ends each iteration after the delegation flow completes.
	AuthOnly bool `yaml:"authOnly"`
	// VerifyAccount forces the account verification call even when the session
	// already carries a subject id.
	VerifyAccount bool `yaml:"verifyAccount"`

	ThinkTime    ThinkTimeConfig `yaml:"thinkTime,omitempty"`
	GracefulStop time.Duration   `yaml:"gracefulStop,omitempty"`

	// UserFile optionally loads actor credentials from a CSV or JSON file
	// instead of the built-in user table.
	UserFile     string `yaml:"userFile,omitempty"`
	UserFileMode Mode   `yaml:"userFileMode,omitempty"`
}

// ExecutionConfig controls iteration-level execution behavior.
type ExecutionConfig struct {
	MaxIterations    int `yaml:"max_iterations"`
	WarmupIterations int `yaml:"warmup_iterations"`
}

// ThinkTimeConfig bounds the randomized pause after each iteration.
type ThinkTimeConfig struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

const DefaultGracefulStop = 30 * time.Second

// Defaults fills unset fields: 1-3s think time and a 30s graceful ramp-down.
func (c *Config) Defaults() {
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.UserKey == "" {
		c.UserKey = DefaultUserKey
	}
	if c.ThinkTime.Min == 0 && c.ThinkTime.Max == 0 {
		c.ThinkTime = ThinkTimeConfig{Min: time.Second, Max: 3 * time.Second}
	}
	if c.GracefulStop == 0 {
		c.GracefulStop = DefaultGracefulStop
	}
}

// Runner returns the iteration-control settings in core form.
func (c *Config) Runner() core.RunnerConfig {
	return core.RunnerConfig{
		MaxIterations: c.Execution.MaxIterations,
		WarmupIters:   c.Execution.WarmupIterations,
	}
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.Defaults()

	return &cfg, nil
}
