package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

var (
	listFlagFamily  string
	listFlagVerbose bool
)

// listCmd lists the procedure catalogue.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "procedures"},
	Short:   "List available procedures",
	Long: `List every procedure grouped by family.

Examples:
  stepwise list
  stepwise list --family sorting
  stepwise list --verbose
  stepwise list --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// showCmd describes one procedure.
var showCmd = &cobra.Command{
	Use:               "show PROCEDURE",
	Aliases:           []string{"info"},
	Short:             "Show a procedure's details and pseudocode",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProcedureArg,
	RunE:              runShow,
}

func init() {
	listCmd.Flags().StringVar(&listFlagFamily, "family", "", "Only list one family")
	listCmd.Flags().BoolVarP(&listFlagVerbose, "verbose", "v", false, "Show details and pseudocode")
	_ = listCmd.RegisterFlagCompletionFunc("family", completeFamilies)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	specs := procedures.All()
	if listFlagFamily != "" {
		family, err := parseFamily(listFlagFamily)
		if err != nil {
			return err
		}
		specs = procedures.ByFamily(family)
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintProcedures(specs)
	}

	cli := ctx.CLIFormatter()
	if !listFlagVerbose {
		cli.PrintProcedures(specs)
		return nil
	}
	for i, s := range specs {
		if i > 0 {
			cli.Println()
		}
		cli.PrintProcedure(s)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	spec, err := procedures.Lookup(args[0])
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(spec)
	}
	ctx.CLIFormatter().PrintProcedure(spec)
	return nil
}

func parseFamily(s string) (procedures.Family, error) {
	want := procedures.Family(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range procedures.Families {
		if f == want {
			return f, nil
		}
	}
	names := make([]string, len(procedures.Families))
	for i, f := range procedures.Families {
		names[i] = string(f)
	}
	return "", errors.NewUserErrorWithField("family", s,
		"Unknown family",
		"Families are "+joinOr(names, "none")).
		WithCause(errors.ErrInvalidParams)
}

// joinOr joins items with commas, or returns empty when there are none.
func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
