package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/style"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages the workflow accepts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range schema.Languages() {
			if l == schema.DefaultLanguage {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", l, style.C(style.Gray, "(default)"))
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
