package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clog "github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/log"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/style"
)

var (
	quiet   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "promptflow",
	Short: "Generate a structured file document from a prompt workflow",
	Long: `promptflow runs a small declarative workflow: it posts a status message,
asks a model for a "Hello, World!" script in the requested language, and
stores the result as a file document.

The workflow definition is embedded; run 'promptflow init' to customize it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clog.SetVerbose(verbose)
		clog.SetQuiet(quiet)
	},
}

func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Failure("Error")+err.Error())
		os.Exit(1)
	}
}

func init() {
	style.SetupHelp(rootCmd)

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log workflow transitions to stderr")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")
}

// say prints progress unless --quiet is set.
func say(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}
