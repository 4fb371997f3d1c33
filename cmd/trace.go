package cmd

import (
	"slices"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/output"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

var (
	traceInput        inputFlags
	traceFlagCounters []string
	traceFlagHeight   int
	traceFlagWidth    int
)

// traceCmd plots counters over the recorded steps of a run.
var traceCmd = &cobra.Command{
	Use:   "trace PROCEDURE",
	Short: "Plot how a procedure's counters grow step by step",
	Long: `Run a procedure headless and plot its counters across the recorded steps.
Every declared counter is plotted unless --counter narrows the selection.

Examples:
  stepwise trace bubble --size 30
  stepwise trace quick --size 50 --counter comparisons
  stepwise trace lcs -p a=AGGTAB -p b=GXTXAYB --format json`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProcedureArg,
	RunE:              runTrace,
}

func init() {
	traceInput.register(traceCmd, "0", "Delay between steps, e.g. 50ms; 0 runs instantly")
	traceCmd.Flags().StringSliceVarP(&traceFlagCounters, "counter", "c", nil, "Counters to plot (default all declared)")
	traceCmd.Flags().IntVar(&traceFlagHeight, "height", 10, "Plot height in rows")
	traceCmd.Flags().IntVar(&traceFlagWidth, "width", 0, "Plot width in columns (default one column per step)")
	_ = traceCmd.RegisterFlagCompletionFunc("counter", completeCounters)
	rootCmd.AddCommand(traceCmd)
}

// TraceOutput is the JSON form of a trace.
type TraceOutput struct {
	Procedure string            `json:"procedure"`
	Steps     int               `json:"steps"`
	Series    map[string][]int  `json:"series"`
	Run       *output.RunOutput `json:"run"`
}

func runTrace(cmd *cobra.Command, args []string) error {
	in, err := traceInput.open(cmd, args[0])
	if err != nil {
		return err
	}
	names, err := traceCounters(in.Spec(), traceFlagCounters)
	if err != nil {
		return err
	}

	sigCtx, stop := signalContext(cmd.Context())
	defer stop()
	final, err := runToEnd(sigCtx, in)
	if err != nil {
		return err
	}
	steps := collectTrace(in)

	series := make(map[string][]int, len(names))
	for _, name := range names {
		values := make([]int, len(steps))
		for i, s := range steps {
			values[i] = s.Counters[name]
		}
		series[name] = values
	}

	if ctx.IsJSON() {
		if err := ctx.Formatter.JSON(TraceOutput{
			Procedure: in.Spec().ID,
			Steps:     len(steps),
			Series:    series,
			Run:       output.NewRunOutput(in, final, false),
		}); err != nil {
			return err
		}
		return runFailure(final)
	}

	cli := ctx.CLIFormatter()
	if len(steps) == 0 {
		cli.Muted("No steps recorded.")
		return runFailure(final)
	}
	for _, name := range names {
		cli.Println(plotSeries(name, series[name], traceFlagHeight, traceFlagWidth))
		cli.Println()
	}
	cli.PrintRun(in.Spec(), final)
	return runFailure(final)
}

// traceCounters validates the requested counters against the declared
// ones. No request selects every declared counter.
func traceCounters(spec *procedures.Spec, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return spec.Counters, nil
	}
	for _, name := range requested {
		if !slices.Contains(spec.Counters, name) {
			return nil, errors.NewUserErrorWithField("counter", name,
				"Unknown counter for "+spec.ID,
				"Available counters: "+joinOr(spec.Counters, "none")).
				WithCause(errors.ErrInvalidParams)
		}
	}
	return requested, nil
}

func plotSeries(name string, values []int, height, width int) string {
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	opts := []asciigraph.Option{
		asciigraph.Height(max(height, 2)),
		asciigraph.Caption(name),
		asciigraph.Precision(0),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.Plot(data, opts...)
}
