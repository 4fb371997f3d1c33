package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// completeProcedures returns procedure ids matching toComplete, optionally
// restricted to one family.
func completeProcedures(toComplete string, family procedures.Family) []string {
	specs := procedures.All()
	if family != "" {
		specs = procedures.ByFamily(family)
	}
	var completions []string
	for _, s := range specs {
		if strings.HasPrefix(s.ID, toComplete) {
			completions = append(completions, s.ID+"\t"+s.Name)
		}
	}
	return completions
}

// completeProcedureArg completes the single procedure argument of run,
// trace, play and show.
func completeProcedureArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeProcedures(toComplete, ""), cobra.ShellCompDirectiveNoFileComp
}

// completeRaceArgs completes the two race sides. The second side is drawn
// from the first side's family.
func completeRaceArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return completeProcedures(toComplete, ""), cobra.ShellCompDirectiveNoFileComp
	case 1:
		spec, err := procedures.Lookup(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var completions []string
		for _, c := range completeProcedures(toComplete, spec.Family) {
			if !strings.HasPrefix(c, spec.ID+"\t") {
				completions = append(completions, c)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeFamilies completes the --family flag.
func completeFamilies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var completions []string
	for _, f := range procedures.Families {
		if strings.HasPrefix(string(f), toComplete) {
			completions = append(completions, string(f))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeCounters completes --counter with the counters of the procedure
// named by the first argument.
func completeCounters(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	spec, err := procedures.Lookup(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, name := range spec.Counters {
		if strings.HasPrefix(name, toComplete) {
			completions = append(completions, name)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeConfigKeys completes the key argument of config get and set.
func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, k := range config.Keys() {
		if strings.HasPrefix(k, toComplete) {
			completions = append(completions, k)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
