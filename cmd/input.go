package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// inputFlags are the procedure input flags shared by run, trace, play and
// race. The shorthand flags only apply when set and win over --param.
type inputFlags struct {
	params []string
	values string
	size   int
	seed   uint64
	rows   int
	cols   int
	preset string
	speed  string
}

func (f *inputFlags) register(cmd *cobra.Command, defaultSpeed, speedHelp string) {
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.params, "param", "p", nil, "Procedure parameter as key=value (repeatable)")
	fl.StringVar(&f.values, "values", "", "Input values, e.g. 5,3,8,1")
	fl.IntVar(&f.size, "size", 0, "Number of random values to generate")
	fl.Uint64Var(&f.seed, "seed", 0, "Seed for generated input")
	fl.IntVar(&f.rows, "rows", 0, "Grid rows")
	fl.IntVar(&f.cols, "cols", 0, "Grid columns")
	fl.StringVar(&f.preset, "preset", "", "Graph preset: simple, complex, tree, grid, dag")
	fl.StringVar(&f.speed, "speed", defaultSpeed, speedHelp)
}

// Params collects the procedure parameters from the flags.
func (f *inputFlags) Params(cmd *cobra.Command) (procedures.Params, error) {
	p := procedures.Params{}
	for _, kv := range f.params {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewUserErrorWithField("param", kv,
				"Parameters take the form key=value",
				errors.GetSuggestion(errors.ErrInvalidParams)).
				WithCause(errors.ErrInvalidParams)
		}
		p[key] = strings.TrimSpace(value)
	}

	changed := cmd.Flags().Changed
	if changed("values") {
		p["values"] = f.values
	}
	if changed("size") {
		p["size"] = f.size
	}
	if changed("seed") {
		p["seed"] = f.seed
	}
	if changed("rows") {
		p["rows"] = f.rows
	}
	if changed("cols") {
		p["cols"] = f.cols
	}
	if changed("preset") {
		p["preset"] = f.preset
	}
	return p, nil
}

// Speed parses --speed. An empty value or "default" selects the family
// default; range checks happen when the instance is opened.
func (f *inputFlags) Speed() (time.Duration, error) {
	s := strings.TrimSpace(f.speed)
	if s == "" || s == "default" {
		return procedures.DefaultSpeed, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.NewUserErrorWithField("speed", s,
			"Invalid speed",
			errors.GetSuggestion(errors.ErrSpeedOutOfRange)).
			WithCause(errors.ErrSpeedOutOfRange)
	}
	return d, nil
}

// open builds an instance of id from the flags.
func (f *inputFlags) open(cmd *cobra.Command, id string) (procedures.Instance, error) {
	p, err := f.Params(cmd)
	if err != nil {
		return nil, err
	}
	speed, err := f.Speed()
	if err != nil {
		return nil, err
	}
	ctx.Debugf("opening %s with %v at %v", id, map[string]any(p), speed)
	return ctx.Opener().Open(id, p, speed)
}
