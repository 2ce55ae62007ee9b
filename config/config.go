// Package config loads the process-wide benchmark configuration from a
// YAML file. File values override the hardcoded defaults; CLI flags
// override file values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mlow/benchoor/engine"
)

// Config is the full benchoor configuration.
type Config struct {
	// Runtime labels the result files, e.g. "go" or "go-interp".
	Runtime string `yaml:"runtime"`

	// Profile selects the calibration path: "native" or "constrained".
	Profile string `yaml:"profile"`

	Engine EngineConfig `yaml:"engine"`

	// Benchmarks selects catalogue entries; empty means all.
	Benchmarks []string `yaml:"benchmarks"`

	HTTP   HTTPConfig   `yaml:"http"`
	Server ServerConfig `yaml:"server"`
}

// EngineConfig overrides the engine's option defaults. Zero fields keep
// the hardcoded constants.
type EngineConfig struct {
	WarmupIterations   int     `yaml:"warmup_iterations"`
	MeasuredIterations int     `yaml:"measured_iterations"`
	WarmupMs           float64 `yaml:"warmup_ms"`
	MaxMeasuredTotalMs float64 `yaml:"max_measured_total_ms"`
}

// HTTPConfig parameterizes the HTTP load wrapper. Durations are plain
// milliseconds, like everything else in the result records.
type HTTPConfig struct {
	URL         string `yaml:"url"`
	Requests    int    `yaml:"requests"`
	Concurrency int    `yaml:"concurrency"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// Timeout returns the per-request timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutMs) * time.Millisecond
}

// ServerConfig describes the server process spawned for HTTP and
// cold-start benchmarks.
type ServerConfig struct {
	Command        []string `yaml:"command"`
	Env            []string `yaml:"env"`
	ReadyURL       string   `yaml:"ready_url"`
	ReadyTimeoutMs int      `yaml:"ready_timeout_ms"`
	ColdStarts     int      `yaml:"cold_starts"`

	// VersionCommand prints the runtime's version, e.g. ["go", "version"].
	VersionCommand []string `yaml:"version_command"`
}

// ReadyTimeout returns the readiness deadline as a duration.
func (s ServerConfig) ReadyTimeout() time.Duration {
	return time.Duration(s.ReadyTimeoutMs) * time.Millisecond
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Runtime: "go",
		Profile: "native",
		HTTP: HTTPConfig{
			Requests:    1000,
			Concurrency: 16,
			TimeoutMs:   10_000,
		},
		Server: ServerConfig{
			ReadyTimeoutMs: 10_000,
			ColdStarts:     10,
		},
	}
}

// Load reads and validates a YAML configuration file, filling unset
// values from Default.
func Load(path string) (Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}

	return c, nil
}

// Validate rejects values the engine would fail fast on later.
func (c Config) Validate() error {
	switch c.Profile {
	case "", "native", "constrained":
	default:
		return fmt.Errorf(
			"profile must be native or constrained, got %q", c.Profile,
		)
	}

	if c.Engine.WarmupIterations < 0 {
		return fmt.Errorf("engine.warmup_iterations must not be negative")
	}

	if c.Engine.MeasuredIterations < 0 {
		return fmt.Errorf("engine.measured_iterations must not be negative")
	}

	if c.HTTP.Requests < 0 || c.HTTP.Concurrency < 0 {
		return fmt.Errorf("http.requests and http.concurrency must not be negative")
	}

	return nil
}

// EngineProfile maps the configured profile name to the engine enum.
func (c Config) EngineProfile() engine.Profile {
	if c.Profile == "constrained" {
		return engine.ProfileConstrained
	}

	return engine.ProfileNative
}

// EngineOptions converts the file overrides into engine options.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		WarmupIterations:   c.Engine.WarmupIterations,
		MeasuredIterations: c.Engine.MeasuredIterations,
		WarmupMs:           c.Engine.WarmupMs,
		MaxMeasuredTotalMs: c.Engine.MaxMeasuredTotalMs,
	}
}
