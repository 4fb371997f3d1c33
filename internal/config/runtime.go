// Package config provides centralized configuration for Stepwise runtime values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/manav03panchal/stepwise/internal/errors"
)

// AppName is used for the configuration directory.
const AppName = "stepwise"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STEPWISE_"

// RuntimeConfig holds every tunable value of the engine and its front ends.
type RuntimeConfig struct {
	// Engine configuration
	Engine EngineConfig `yaml:"engine"`

	// Default delays per procedure family and the accepted range
	Speeds SpeedConfig `yaml:"speeds"`

	// HTTP API configuration
	Server ServerConfig `yaml:"server"`

	// Terminal player configuration
	TUI TUIConfig `yaml:"tui"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// EngineConfig holds engine configuration.
type EngineConfig struct {
	// PollInterval is how often a paused wait re-checks its flags.
	// Default: 100ms
	PollInterval time.Duration `yaml:"poll_interval"`

	// HistoryCapacity bounds the number of recorded steps per run.
	// Default: 500
	HistoryCapacity int `yaml:"history_capacity"`
}

// SpeedConfig holds the per-family default delay between steps.
type SpeedConfig struct {
	Sorting     time.Duration `yaml:"sorting"`
	Graph       time.Duration `yaml:"graph"`
	Pathfinding time.Duration `yaml:"pathfinding"`
	DP          time.Duration `yaml:"dp"`
	Structures  time.Duration `yaml:"structures"`

	// Min and Max bound every user-supplied delay.
	// Default: 5ms, 2s
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Default returns the default delay for a procedure family.
func (s SpeedConfig) Default(family string) time.Duration {
	switch family {
	case "sorting":
		return s.Sorting
	case "graph":
		return s.Graph
	case "pathfinding":
		return s.Pathfinding
	case "dp":
		return s.DP
	case "structures":
		return s.Structures
	default:
		return s.Sorting
	}
}

// Clamp bounds d to [Min, Max]. Zero is preserved for headless runs.
func (s SpeedConfig) Clamp(d time.Duration) time.Duration {
	if d == 0 {
		return 0
	}
	return min(max(d, s.Min), s.Max)
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: 127.0.0.1:8080
	Addr string `yaml:"addr"`

	// ReadTimeout and WriteTimeout bound a single request.
	// Default: 10s
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxSessions caps concurrently held sessions.
	// Default: 64
	MaxSessions int `yaml:"max_sessions"`

	// SessionTTL evicts sessions idle for longer than this.
	// Default: 30m
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// TUIConfig holds terminal player configuration.
type TUIConfig struct {
	// RefreshInterval is how often the player redraws.
	// Default: 33ms
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// SpeedStep is the factor applied by the +/- keys.
	// Default: 1.5
	SpeedStep float64 `yaml:"speed_step"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Engine: EngineConfig{
			PollInterval:    100 * time.Millisecond,
			HistoryCapacity: 500,
		},
		Speeds: SpeedConfig{
			Sorting:     50 * time.Millisecond,
			Graph:       500 * time.Millisecond,
			Pathfinding: 20 * time.Millisecond,
			DP:          300 * time.Millisecond,
			Structures:  400 * time.Millisecond,
			Min:         5 * time.Millisecond,
			Max:         2 * time.Second,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxSessions:     64,
			SessionTTL:      30 * time.Minute,
		},
		TUI: TUIConfig{
			RefreshInterval: 33 * time.Millisecond,
			SpeedStep:       1.5,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and can be overridden via environment variables.
var Global = initGlobal()

func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	return cfg
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*RuntimeConfig, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the YAML file at path over the defaults without
// environment overrides or validation. A missing file yields the defaults.
func LoadFile(path string) (*RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewUserErrorWithField("config", path, "cannot parse config file", err.Error()).
				WithCause(errors.ErrConfigInvalid)
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.NewSystemErrorWithOp("load config", "cannot read config file", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg *RuntimeConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewSystemErrorWithOp("save config", "cannot create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewSystemErrorWithOp("save config", "cannot write config file", err)
	}
	return nil
}

// Validate checks invariants the engine relies on.
func (c *RuntimeConfig) Validate() error {
	invalid := func(field, value, msg string) error {
		return errors.NewUserErrorWithField(field, value, msg, "").WithCause(errors.ErrConfigInvalid)
	}
	if c.Engine.PollInterval <= 0 {
		return invalid("engine.poll_interval", c.Engine.PollInterval.String(), "poll interval must be positive")
	}
	if c.Engine.HistoryCapacity < 1 {
		return invalid("engine.history_capacity", strconv.Itoa(c.Engine.HistoryCapacity), "history capacity must be at least 1")
	}
	if c.Speeds.Min <= 0 || c.Speeds.Max < c.Speeds.Min {
		return invalid("speeds", fmt.Sprintf("%s..%s", c.Speeds.Min, c.Speeds.Max), "speed range is empty")
	}
	for _, family := range []string{"sorting", "graph", "pathfinding", "dp", "structures"} {
		d := c.Speeds.Default(family)
		if d < c.Speeds.Min || d > c.Speeds.Max {
			return invalid("speeds."+family, d.String(), "default speed outside the allowed range")
		}
	}
	if c.Server.Addr == "" {
		return invalid("server.addr", "", "listen address is required")
	}
	if c.Server.MaxSessions < 1 {
		return invalid("server.max_sessions", strconv.Itoa(c.Server.MaxSessions), "at least one session must be allowed")
	}
	return nil
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	envDuration("ENGINE_POLL_INTERVAL", &c.Engine.PollInterval)
	envInt("ENGINE_HISTORY_CAPACITY", &c.Engine.HistoryCapacity)

	envDuration("SPEED_SORTING", &c.Speeds.Sorting)
	envDuration("SPEED_GRAPH", &c.Speeds.Graph)
	envDuration("SPEED_PATHFINDING", &c.Speeds.Pathfinding)
	envDuration("SPEED_DP", &c.Speeds.DP)
	envDuration("SPEED_STRUCTURES", &c.Speeds.Structures)

	if v := os.Getenv(EnvPrefix + "SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	envInt("SERVER_MAX_SESSIONS", &c.Server.MaxSessions)
	envDuration("SERVER_SESSION_TTL", &c.Server.SessionTTL)

	envDuration("TUI_REFRESH_INTERVAL", &c.TUI.RefreshInterval)

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.JSON = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			*dst = d
		}
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = n
		}
	}
}
