package cmd

import (
	"github.com/spf13/cobra"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/ai"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for promptflow.

Bash:
  $ source <(promptflow completion bash)

Zsh:
  $ promptflow completion zsh > "${fpath[1]}/_promptflow"

Fish:
  $ promptflow completion fish > ~/.config/fish/completions/promptflow.fish

PowerShell:
  PS> promptflow completion powershell | Out-String | Invoke-Expression

Completions include the accepted values for 'run --language' and
'run --provider'.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeLanguages offers the workflow's accepted languages.
func completeLanguages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, l := range schema.Languages() {
		out = append(out, string(l))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeProviders offers the canonical provider names.
func completeProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return ai.Providers(), cobra.ShellCompDirectiveNoFileComp
}
