// Copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.

package cmd

import "github.com/spf13/cobra"

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for stepwise.

To load completions:

Bash:
  $ source <(stepwise completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ stepwise completion bash > /etc/bash_completion.d/stepwise
  # macOS:
  $ stepwise completion bash > $(brew --prefix)/etc/bash_completion.d/stepwise

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ stepwise completion zsh > "${fpath[1]}/_stepwise"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ stepwise completion fish | source

  # To load completions for each session, execute once:
  $ stepwise completion fish > ~/.config/fish/completions/stepwise.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(cmd.OutOrStdout(), true)
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
