package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/ai"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/config"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/style"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/workflow"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check setup for promptflow run",
	Long:  `Verify the configuration, the workflow definition and the credentials a run needs.`,
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s Checking promptflow setup\n\n", style.C(style.Cyan, "→"))

	allGood := true
	check := func(ok bool, okMsg, failMsg, hint string) {
		if ok {
			fmt.Printf("%s %s\n", style.Check(true), okMsg)
			return
		}
		allGood = false
		fmt.Printf("%s %s\n", style.Check(false), failMsg)
		if hint != "" {
			fmt.Printf("  %s\n", hint)
		}
	}

	// Check 1: config
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	check(err == nil, "config "+config.Path()+" valid", fmt.Sprintf("config invalid: %v", err), "Fix: promptflow config list")
	if cfg == nil {
		cfg = &config.Config{}
	}

	// Check 2: definition
	def, err := workflow.Load(cfg.Definition)
	source := cfg.Definition
	if source == "" {
		source = "embedded default"
		if _, statErr := os.Stat(workflow.DefinitionPath); statErr == nil {
			source = workflow.DefinitionPath
		}
	}
	check(err == nil, "workflow definition loads ("+source+")", fmt.Sprintf("workflow definition: %v", err), "Fix: promptflow init -r")
	if err != nil {
		fmt.Println()
		return fmt.Errorf("setup issues detected")
	}

	// Check 3: provider credentials
	provider := ai.Normalize(def.LLM.Provider)
	check(ai.IsProviderSupported(provider),
		fmt.Sprintf("provider %s/%s", provider, modelOrDefault(def)),
		fmt.Sprintf("unknown provider %q", def.LLM.Provider),
		"Supported: "+strings.Join(ai.Providers(), ", "))

	switch {
	case provider == ai.ProviderClaudeCLI:
		check(ai.IsClaudeCLIAvailable(), "claude CLI available", "claude CLI not found in PATH", "")
	case provider == ai.ProviderGeminiCLI:
		check(ai.IsGeminiCLIAvailable(), "gemini CLI available", "gemini CLI not found in PATH", "")
	case provider == ai.ProviderGoogle:
		ok := os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != ""
		check(ok, "GEMINI_API_KEY set", "GEMINI_API_KEY (or GOOGLE_API_KEY) not set", "Add it to your environment or .env")
	default:
		if env := ai.APIKeyEnv(provider); env != "" {
			check(os.Getenv(env) != "", env+" set", env+" not set", "Add it to your environment or .env")
		}
	}

	// Check 4: output locations
	check(writable(cfg.Out), "output directory "+cfg.Out+" writable", "cannot write to "+cfg.Out, "")

	fmt.Println()
	if !allGood {
		return fmt.Errorf("setup issues detected")
	}
	fmt.Printf("%s Setup OK\n", style.Check(true))
	return nil
}

func modelOrDefault(def *workflow.Definition) string {
	if def.LLM.Model != "" {
		return def.LLM.Model
	}
	if m := ai.DefaultModel(def.LLM.Provider); m != "" {
		return m
	}
	return "default"
}

// writable reports whether dir exists (or can be created) and accepts files.
func writable(dir string) bool {
	if dir == "" {
		return false
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".promptflow-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	return os.Remove(name) == nil
}
