package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/tui"
)

var (
	playInput      inputFlags
	playFlagPaused bool
)

// playCmd opens the interactive player.
var playCmd = &cobra.Command{
	Use:   "play PROCEDURE",
	Short: "Watch a procedure run in the interactive player",
	Long: `Open the terminal player for a procedure. The run starts right away
unless --paused is given.

Keys:
  space    play / pause          ←/→      step back / forward
  + / -    faster / slower       s        stop
  r        restart               n        new random input
  q        quit

Examples:
  stepwise play bubble
  stepwise play quick --size 40 --speed 30ms
  stepwise play astar --rows 20 --cols 40
  stepwise play dijkstra --preset complex -p start=A -p end=F`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProcedureArg,
	RunE:              runPlay,
}

func init() {
	playInput.register(playCmd, "", "Delay between steps, e.g. 50ms (default per family)")
	playCmd.Flags().BoolVar(&playFlagPaused, "paused", false, "Open without starting the run")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	in, err := playInput.open(cmd, args[0])
	if err != nil {
		return err
	}
	return tui.RunPlayer(tui.PlayerConfig{
		Instance:  in,
		Config:    ctx.Config,
		AutoStart: !playFlagPaused,
	})
}
