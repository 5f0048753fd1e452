package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/ai"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/cache"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/config"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	clog "github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/log"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/signal"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/style"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/tools"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/utils"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/workflow"
)

var (
	languageFlag   string
	definitionFlag string
	storeFlag      string
	outFlag        string
	providerFlag   string
	modelFlag      string
	noCacheFlag    bool
	dryRunFlag     bool
	jsonFlag       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the workflow and write the generated script",
	Long: `Run the prompt structured output workflow.

Posts a status document, asks the model for a "Hello, World!" script in the
requested language, stores the file document and writes the script to the
output directory.

Examples:
  promptflow run                          # python, the default
  promptflow run -l ruby --out scripts/
  promptflow run -l go --dry-run          # show the request only
  promptflow run -l php --json            # print the result envelope
  promptflow run --provider anthropic     # override the definition's llm`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Target language (default python)")
	runCmd.Flags().StringVarP(&definitionFlag, "definition", "d", "", "Workflow definition file (overrides config)")
	runCmd.Flags().StringVar(&storeFlag, "store", "", "Document store directory (overrides config)")
	runCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Directory for the generated script (overrides config)")
	runCmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "LLM provider (overrides the definition)")
	runCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "LLM model (overrides the definition)")
	runCmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Always call the model")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print the status message and generation request, call nothing")
	runCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the result envelope as JSON")

	_ = runCmd.RegisterFlagCompletionFunc("language", completeLanguages)
	_ = runCmd.RegisterFlagCompletionFunc("provider", completeProviders)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	def, err := workflow.Load(cfg.Definition)
	if err != nil {
		return err
	}
	if err := overrideLLM(def); err != nil {
		return err
	}

	input := map[string]any{}
	if cmd.Flags().Changed("language") {
		input["language"] = languageFlag
	}

	if jsonFlag {
		style.NoColor = true
		clog.SetOutput(os.Stderr, true)
	}

	if dryRunFlag {
		return dryRun(cmd, def, input)
	}

	step, closeFn, err := buildStep(cfg, def)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signal.WithInterrupt(cmd.Context())
	defer cancel()

	res, err := step.Run(ctx, input)
	if err != nil {
		return err
	}

	if jsonFlag {
		if err := printJSON(cmd, res); err != nil {
			return err
		}
	} else {
		printResult(res, def.Final)
	}

	if res.Runtime.Error {
		if signal.Interrupted(ctx) {
			return signal.ErrInterrupted
		}
		return res.Runtime.Err
	}
	return nil
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("definition") {
		cfg.Definition = definitionFlag
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = storeFlag
	}
	if cmd.Flags().Changed("out") {
		cfg.Out = outFlag
	}
	if noCacheFlag {
		cfg.Cache = false
	}
}

// overrideLLM applies --provider and --model to the definition.
func overrideLLM(def *workflow.Definition) error {
	if providerFlag != "" {
		if !ai.IsProviderSupported(providerFlag) {
			return fmt.Errorf("unsupported provider: %s (supported: %v)", providerFlag, ai.Providers())
		}
		def.LLM.Provider = ai.Normalize(providerFlag)
		if modelFlag == "" {
			def.LLM.Model = ai.DefaultModel(def.LLM.Provider)
		}
	}
	if modelFlag != "" {
		def.LLM.Model = modelFlag
	}
	if providerFlag == "" && modelFlag == "" {
		return nil
	}
	if def.LLM.Model != "" && !ai.IsModelSupported(def.LLM.Provider, def.LLM.Model) {
		return fmt.Errorf("unsupported model %s for provider %s", def.LLM.Model, def.LLM.Provider)
	}
	return nil
}

// buildStep composes the document store, cache and tools for a real run.
func buildStep(cfg *config.Config, def *workflow.Definition) (*workflow.Step, func(), error) {
	if err := utils.EnsureGitignore(cfg.Store); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare document store: %w", err)
	}
	store := document.NewFileStore(cfg.Store)

	var generations *cache.Store
	if cfg.Cache {
		dir := cfg.CacheDir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		var err error
		if generations, err = cache.New(dir, cache.DefaultEntries); err != nil {
			return nil, nil, err
		}
	}

	generator := tools.NewAiGenerateDocument(tools.AiGenerateDocumentConfig{
		Cache:   generations,
		Timeout: cfg.Timeout,
	})
	creator := tools.NewOutputWriter(tools.NewCreateDocument(store), cfg.Out)

	step, err := workflow.New(workflow.Config{
		Definition:         def,
		CreateDocument:     creator,
		AiGenerateDocument: generator,
	})
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if generations != nil {
			s := generations.Stats()
			clog.Debug("generation cache", "hits", s.Hits, "disk_hits", s.DiskHits, "misses", s.Misses)
		}
	}
	return step, closeFn, nil
}

// dryRun renders what a run would send without calling any tool.
func dryRun(cmd *cobra.Command, def *workflow.Definition, input map[string]any) error {
	step, err := workflow.New(workflow.Config{
		Definition:         def,
		CreateDocument:     noopCreator{},
		AiGenerateDocument: noopGenerator{},
	})
	if err != nil {
		return err
	}

	args, err := step.ResolveArguments(input)
	if err != nil {
		return err
	}
	status, err := step.BuildStatusMessage(args)
	if err != nil {
		return err
	}
	req, err := step.BuildGenerationRequest(args)
	if err != nil {
		return err
	}

	if jsonFlag {
		return printJSON(cmd, map[string]any{
			"args":               args,
			"status_message":     status,
			"generation_request": req,
		})
	}

	fmt.Printf("%s%s\n", style.Success("Status"), status.Text())
	fmt.Printf("%s%s/%s\n", style.Success("LLM"), req.LLM.Provider, req.LLM.Model)
	fmt.Printf("%s\n%s\n", style.C(style.Bold, "Prompt:"), req.Prompt)
	say("Dry run - nothing generated")
	return nil
}

func printResult(res *workflow.Result, final string) {
	st := res.State
	say("%s", st.StatusMessage.Text())

	if res.Runtime.Error {
		fmt.Fprintf(os.Stderr, "%s%s\n", style.Failure("Failed"), style.Places(st.Places(), true))
		return
	}

	if st.File != nil {
		note := ""
		if st.Cached {
			note = style.C(style.Gray, " (cached)")
		}
		fmt.Printf("%s%s%s\n", style.Success("Generated"), st.File.Filename, note)
		if st.File.Description != "" {
			say("  %s", style.C(style.Gray, st.File.Description))
		}
	}
	if st.Path != "" {
		fmt.Printf("%s%s\n", style.Success("Wrote"), st.Path)
	}
	if res.Done(final) {
		say("%s%s", style.Success("Run "+res.RunID), style.Places(st.Places(), false))
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type noopCreator struct{}

func (noopCreator) Execute(context.Context, tools.CreateDocumentPayload, tools.Meta) (tools.CreateDocumentResult, error) {
	return tools.CreateDocumentResult{}, errors.New("dry run")
}

type noopGenerator struct{}

func (noopGenerator) Execute(context.Context, tools.GenerateDocumentPayload, tools.Meta) (tools.GenerateDocumentResult, error) {
	return tools.GenerateDocumentResult{}, errors.New("dry run")
}
