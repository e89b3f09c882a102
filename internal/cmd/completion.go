package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(scarepick completion bash)

Zsh:
  $ scarepick completion zsh > "${fpath[1]}/_scarepick"

Fish:
  $ scarepick completion fish | source

PowerShell:
  PS> scarepick completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	moviesShowCmd.ValidArgsFunction = completeMovieIDs

	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletion(out)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
	return nil
}

// completeMovieIDs offers the movie ids of the configured data.
func completeMovieIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := setup(cmd, args); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	lib, err := loadLibrary(cmd.Context(), settings)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var ids []string
	for _, m := range lib.Store.All() {
		ids = append(ids, m.ID+"\t"+m.String())
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
