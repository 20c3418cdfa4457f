// Package config loads the awareness bridge configuration from YAML.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/fence"
	"github.com/Mauin/ReactiveAwareness/pkg/snapshot"
	"github.com/Mauin/ReactiveAwareness/pkg/wire"
	"gopkg.in/yaml.v3"
)

// DefaultDispatchAddress is the dispatch address used when none is
// configured.
const DefaultDispatchAddress = "127.0.0.1:7420"

// Config is the top-level configuration.
type Config struct {
	Credentials Credentials       `yaml:"credentials"`
	Dispatch    DispatchConfig    `yaml:"dispatch"`
	State       StateConfig       `yaml:"state"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Fence       FenceConfig       `yaml:"fence"`
	Simulation  SimulationConfig  `yaml:"simulation"`
}

// Credentials holds the API key per capability.
type Credentials struct {
	Awareness string `yaml:"awareness"`
	Places    string `yaml:"places"`
	Beacons   string `yaml:"beacons"`
}

// Snapshot converts to the credentials used by snapshot queries.
func (c Credentials) Snapshot() snapshot.Credentials {
	return snapshot.Credentials{
		Awareness: c.Awareness,
		Places:    c.Places,
		Beacons:   c.Beacons,
	}
}

// DispatchConfig configures the persistent delivery endpoint.
type DispatchConfig struct {
	// Address is where the service delivers persistent updates.
	Address string `yaml:"address"`
}

// StateConfig configures the local registration ledger.
type StateConfig struct {
	// Path of the ledger file. Empty keeps registrations in memory only.
	Path string `yaml:"path"`
}

// DiagnosticsConfig configures the diagnostic sinks.
type DiagnosticsConfig struct {
	// File receives CBOR diagnostic events when set.
	File string `yaml:"file"`

	// Level is the slog level for diagnostic events on stderr
	// (debug, info, warn, error). Empty disables stderr output.
	Level string `yaml:"level"`
}

// FenceConfig configures condition monitoring.
type FenceConfig struct {
	UnregisterTimeout time.Duration `yaml:"unregister_timeout"`
}

// SimulationConfig seeds the simulated service.
type SimulationConfig struct {
	Headphones   bool            `yaml:"headphones"`
	Activity     string          `yaml:"activity"`
	Temperature  *float64        `yaml:"temperature"`
	Flags        map[string]bool `yaml:"flags"`
	ConnectDelay time.Duration   `yaml:"connect_delay"`
	MaxFences    int             `yaml:"max_fences"`
}

// Default returns the configuration used without a config file.
func Default() Config {
	return Config{
		Dispatch: DispatchConfig{Address: DefaultDispatchAddress},
		Fence:    FenceConfig{UnregisterTimeout: fence.DefaultUnregisterTimeout},
	}
}

// LoadError reports a configuration file that could not be used.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if c.Dispatch.Address != "" {
		if _, _, err := net.SplitHostPort(c.Dispatch.Address); err != nil {
			return fmt.Errorf("dispatch.address: %w", err)
		}
	}
	if c.Fence.UnregisterTimeout < 0 {
		return fmt.Errorf("fence.unregister_timeout: must not be negative")
	}
	if _, err := c.Diagnostics.SlogLevel(); err != nil {
		return err
	}
	if c.Simulation.Activity != "" {
		if _, err := wire.ParseActivity(c.Simulation.Activity); err != nil {
			return fmt.Errorf("simulation.activity: %w", err)
		}
	}
	if c.Simulation.MaxFences < 0 {
		return fmt.Errorf("simulation.max_fences: must not be negative")
	}
	return nil
}

// Stderr reports whether diagnostic events go to stderr.
func (d DiagnosticsConfig) Stderr() bool {
	return d.Level != ""
}

// SlogLevel returns the configured level, debug when unset.
func (d DiagnosticsConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(d.Level) {
	case "", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("diagnostics.level: unknown level %q", d.Level)
}
