package procedures

import (
	"log/slog"
	"time"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/validate"
)

// DefaultSpeed asks Open for the family's configured delay.
const DefaultSpeed time.Duration = -1

// Opener builds instances with engine settings taken from a runtime
// configuration.
type Opener struct {
	Config *config.RuntimeConfig
	Hooks  engine.Hooks
	Logger *slog.Logger
}

// Options returns the controller options for a family at speed. Speed must
// already be resolved.
func (o Opener) Options(speed time.Duration) engine.Options {
	cfg := o.config()
	opts := engine.DefaultOptions()
	opts.Speed = speed
	opts.PollInterval = cfg.Engine.PollInterval
	opts.HistoryCapacity = cfg.Engine.HistoryCapacity
	opts.Hooks = o.Hooks
	opts.Logger = o.Logger
	return opts
}

// Speed resolves DefaultSpeed to the family default and validates anything
// else against the configured range.
func (o Opener) Speed(f Family, speed time.Duration) (time.Duration, error) {
	cfg := o.config()
	if speed == DefaultSpeed {
		return cfg.Speeds.Default(string(f)), nil
	}
	if err := validate.Speed(speed, cfg.Speeds.Min, cfg.Speeds.Max); err != nil {
		return 0, err
	}
	return speed, nil
}

// Open looks up id and builds an instance for p.
func (o Opener) Open(id string, p Params, speed time.Duration) (Instance, error) {
	spec, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	speed, err = o.Speed(spec.Family, speed)
	if err != nil {
		return nil, err
	}
	return spec.New(p, o.Options(speed))
}

func (o Opener) config() *config.RuntimeConfig {
	if o.Config == nil {
		return config.Global
	}
	return o.Config
}
