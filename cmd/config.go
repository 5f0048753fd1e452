package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/cache"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/config"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/style"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage promptflow configuration",
	Long: `Read and write .promptflow.yaml.

Values can also be set with PROMPTFLOW_<KEY> environment variables,
e.g. PROMPTFLOW_OUT=scripts.

  promptflow config list
  promptflow config get <key>
  promptflow config set <key> <value>`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value.

Keys:
  store       Directory for stored documents
  out         Directory for generated scripts
  cache       Reuse earlier generations (true/false)
  cache_dir   Generation cache directory
  definition  Workflow definition file
  timeout     Limit for one generation, e.g. 90s or 2m

Examples:
  promptflow config set out scripts
  promptflow config set cache false
  promptflow config set definition flows/hello.yaml`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Get a config value",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config values",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := config.All()
		if err != nil {
			return err
		}

		fmt.Printf("\n%s\n", style.C(style.Bold+style.Cyan, "promptflow config"))
		fmt.Printf("%s\n\n", style.C(style.Gray, config.Path()))

		hints := map[string]string{
			"cache_dir":  cache.DefaultDir(),
			"definition": "embedded default",
		}
		for _, key := range config.Keys {
			printConfigRow(key, all[key], hints[key])
		}
		fmt.Println()
		return nil
	},
}

func printConfigRow(key, value, defaultHint string) {
	switch {
	case value != "":
		fmt.Printf("  %-11s %s\n", key, style.C(style.Green, value))
	case defaultHint != "":
		fmt.Printf("  %-11s %s\n", key, style.C(style.Gray, "("+defaultHint+")"))
	default:
		fmt.Printf("  %-11s %s\n", key, style.C(style.Gray, "(not set)"))
	}
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
