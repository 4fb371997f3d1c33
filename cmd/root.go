// Package cmd provides the CLI commands for Stepwise.
//
// Copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/output"
	"github.com/manav03panchal/stepwise/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Watch algorithms run one step at a time",
	Long: `Stepwise runs sorting, graph, pathfinding and dynamic programming
procedures one traced step at a time. Pause a run, change its speed, step
back through its history, or race two procedures side by side.

Examples:
  stepwise list
  stepwise play quick --size 40
  stepwise play astar --rows 20 --cols 40 --speed 20ms
  stepwise race bubble quick
  stepwise run dijkstra --param preset=complex --trace
  stepwise serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		opts := runtime.DefaultOptions()
		opts.Format = parseFormat(flagFormat)
		opts.ColorMode = parseColor(flagColor)
		opts.Debug = flagDebug
		if flagConfig != "" {
			opts.ConfigPath = flagConfig
		}
		opts.LogOutput = cmd.ErrOrStderr()

		var err error
		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}
		ctx.Formatter.Writer = cmd.OutOrStdout()
		return nil
	},
}

func parseFormat(s string) output.Format {
	switch s {
	case "json":
		return output.FormatJSON
	case "plain":
		return output.FormatPlain
	default:
		return output.FormatCLI
	}
}

func parseColor(s string) output.ColorMode {
	switch s {
	case "always":
		return output.ColorAlways
	case "never":
		return output.ColorNever
	default:
		return output.ColorAuto
	}
}

// exitError carries the exit code of a failure that was already reported.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.ExecuteContext(context.Background())
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return runtime.ReportError(rootCmd.ErrOrStderr(), parseFormat(flagFormat), err)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/stepwise/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(output.VersionOutput{
				Version:   Version,
				Commit:    Commit,
				BuildTime: BuildTime,
			})
		}
		cmd.Printf("stepwise %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		return nil
	},
}
