package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/config"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/style"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/utils"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/workflow"
)

var initResetFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Copy the workflow definition into this directory",
	Long: `Initialize promptflow for this directory.

Creates:
  .promptflow/workflow.yaml     Editable copy of the embedded definition
  <store>/.gitignore            Keeps stored documents out of git

An existing workflow.yaml is left alone unless -r is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initResetFlag, "reset", "r", false, "Overwrite workflow.yaml with the embedded default")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if initResetFlag {
		if err := workflow.Reset(); err != nil {
			return fmt.Errorf("failed to reset definition: %w", err)
		}
		fmt.Printf("%s%s\n", style.Success("Reset"), workflow.DefinitionPath)
	} else {
		written, err := workflow.Init()
		if err != nil {
			return fmt.Errorf("failed to write definition: %w", err)
		}
		if written {
			fmt.Printf("%s%s\n", style.Success("Created"), workflow.DefinitionPath)
		} else {
			fmt.Printf("%s Already initialized %s\n", style.Check(true), style.C(style.Gray, workflow.DefinitionPath))
		}
	}

	// The copy must still be a valid definition.
	if _, err := workflow.LoadFile(workflow.DefinitionPath); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := utils.EnsureGitignore(cfg.Store); err != nil {
		say("  Warning: could not prepare %s: %v", cfg.Store, err)
	}

	fmt.Printf("\n%s\n", style.C(style.Bold+style.Green, "Ready!"))
	fmt.Printf("  %s    Generate a script\n", style.C(style.Cyan, "promptflow run -l go"))
	fmt.Printf("  %s          Check API keys and setup\n\n", style.C(style.Cyan, "promptflow doctor"))
	return nil
}
