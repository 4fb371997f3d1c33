// Package runtime provides application runtime context for Stepwise.
package runtime

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/logging"
	"github.com/manav03panchal/stepwise/internal/output"
	"github.com/manav03panchal/stepwise/internal/procedures"
	"github.com/manav03panchal/stepwise/internal/session"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = config.EnvPrefix + "CONFIG"

// Context holds the application runtime context.
type Context struct {
	Config     *config.RuntimeConfig
	ConfigPath string
	Formatter  *output.Formatter

	// Registry collects engine and API metrics for this process.
	Registry *prometheus.Registry
	Metrics  *engine.Metrics

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	ConfigPath string
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool
	// LogOutput receives log records. Defaults to stderr.
	LogOutput io.Writer
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		ConfigPath: config.DefaultPath(),
		Format:     output.FormatCLI,
		ColorMode:  output.ColorAuto,
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		opts.ConfigPath = envPath
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	if opts.Debug {
		logCfg = logging.DebugConfig()
	} else {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, configError("log.level", cfg.Log.Level, err)
		}
		logCfg.Level = level
		logCfg.JSON = cfg.Log.JSON
	}
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	logging.Init(logCfg)

	formatter := output.NewFormatter()
	if opts.Format != "" {
		formatter.Format = opts.Format
	}
	if opts.ColorMode != "" {
		formatter.ColorMode = opts.ColorMode
	}

	reg := prometheus.NewRegistry()
	return &Context{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		Formatter:  formatter,
		Registry:   reg,
		Metrics:    engine.NewMetrics(reg),
		Debug:      opts.Debug,
	}, nil
}

// Opener returns an instance opener wired to the context's config, metrics
// and logger.
func (c *Context) Opener() procedures.Opener {
	return procedures.Opener{
		Config: c.Config,
		Hooks:  c.Metrics.Hooks(),
		Logger: logging.Logger(),
	}
}

// Sessions returns a session manager sized by the server config.
func (c *Context) Sessions() *session.Manager {
	return session.NewManager(c.Opener(), session.Options{
		MaxSessions: c.Config.Server.MaxSessions,
		TTL:         c.Config.Server.SessionTTL,
		Logger:      logging.Logger(),
	})
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
