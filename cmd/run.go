package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/output"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

var (
	runInput     inputFlags
	runFlagTrace bool
	runFlagState bool
)

// runCmd runs a procedure without the player.
var runCmd = &cobra.Command{
	Use:   "run PROCEDURE",
	Short: "Run a procedure headless and print the result",
	Long: `Run a procedure to completion without the interactive player and print
its outcome, counters and result. Runs are instant unless --speed is set.

With --trace every recorded step is printed with its pseudocode line and
counters. Only the most recent steps are kept once the history is full.

Examples:
  stepwise run quick --size 20 --seed 7
  stepwise run insertion --values 5,3,8,1 --trace
  stepwise run knapsack -p weights=1,3,4 -p values=15,20,30 -p capacity=4
  stepwise run dijkstra --preset complex --format json`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProcedureArg,
	RunE:              runRun,
}

func init() {
	runInput.register(runCmd, "0", "Delay between steps, e.g. 50ms; 0 runs instantly")
	runCmd.Flags().BoolVarP(&runFlagTrace, "trace", "t", false, "Print every recorded step")
	runCmd.Flags().BoolVar(&runFlagState, "state", false, "Include the final state in JSON output")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	in, err := runInput.open(cmd, args[0])
	if err != nil {
		return err
	}

	sigCtx, stop := signalContext(cmd.Context())
	defer stop()
	final, err := runToEnd(sigCtx, in)
	if err != nil {
		return err
	}

	var trace []output.StepOutput
	if runFlagTrace {
		trace = collectTrace(in)
	}

	if ctx.IsJSON() {
		out := output.NewRunOutput(in, final, runFlagState)
		out.Trace = trace
		if err := ctx.Formatter.JSON(out); err != nil {
			return err
		}
		return runFailure(final)
	}

	cli := ctx.CLIFormatter()
	spec := in.Spec()
	for _, step := range trace {
		cli.PrintStep(spec, step.Step, engine.Frame{Line: step.Line, Counters: step.Counters})
	}
	if len(trace) > 0 {
		cli.Println()
	}
	cli.PrintRun(spec, final)
	return runFailure(final)
}

// runToEnd starts in and waits for the run to exit. When ctx ends first
// the run is stopped and reported as cancelled.
func runToEnd(c context.Context, in procedures.Instance) (engine.Frame, error) {
	if !in.Start() {
		return engine.Frame{}, errors.New("run did not start")
	}
	if err := in.Wait(c); err != nil {
		in.Stop()
		<-in.Done()
	}
	return in.Frame(), nil
}

// collectTrace walks the recorded history. It leaves the instance on the
// last step.
func collectTrace(in procedures.Instance) []output.StepOutput {
	spec := in.Spec()
	n := in.Frame().HistoryLen
	steps := make([]output.StepOutput, 0, n)
	for i := range n {
		if !in.Seek(i) {
			break
		}
		steps = append(steps, output.NewStepOutput(spec, i+1, in.Frame()))
	}
	in.Seek(n - 1)
	return steps
}

// runFailure makes a failed run exit non-zero. The failure itself was
// already printed with the run.
func runFailure(f engine.Frame) error {
	if f.LastRun.Outcome != engine.Failed {
		return nil
	}
	return exitError{code: 3}
}
