package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/ai"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/config"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/workflow"
)

func resetRunFlags(t *testing.T) {
	t.Cleanup(func() {
		providerFlag, modelFlag = "", ""
		jsonFlag, noCacheFlag, dryRunFlag = false, false, false
		definitionFlag, storeFlag, outFlag, languageFlag = "", "", "", ""
	})
}

func TestOverrideLLM(t *testing.T) {
	resetRunFlags(t)

	def := workflow.Default()
	if err := overrideLLM(def); err != nil {
		t.Fatalf("overrideLLM without flags: %v", err)
	}
	if def.LLM.Provider != "openai" || def.LLM.Model != "gpt-4o" {
		t.Errorf("Expected openai/gpt-4o, got %s/%s", def.LLM.Provider, def.LLM.Model)
	}

	providerFlag = "claude"
	if err := overrideLLM(def); err != nil {
		t.Fatalf("overrideLLM claude: %v", err)
	}
	if def.LLM.Provider != ai.ProviderAnthropic {
		t.Errorf("Expected provider anthropic, got %s", def.LLM.Provider)
	}
	if def.LLM.Model != ai.DefaultModel(ai.ProviderAnthropic) {
		t.Errorf("Expected default anthropic model, got %s", def.LLM.Model)
	}
}

func TestOverrideLLMRejectsUnknown(t *testing.T) {
	resetRunFlags(t)

	providerFlag = "acme"
	if err := overrideLLM(workflow.Default()); err == nil {
		t.Error("Expected error for unknown provider")
	}

	providerFlag, modelFlag = "", "gpt-0"
	if err := overrideLLM(workflow.Default()); err == nil {
		t.Error("Expected error for unknown model")
	}
}

func TestApplyRunFlags(t *testing.T) {
	resetRunFlags(t)

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&outFlag, "out", "", "")
	cmd.Flags().StringVar(&storeFlag, "store", "", "")
	cmd.Flags().StringVar(&definitionFlag, "definition", "", "")
	if err := cmd.Flags().Parse([]string{"--out", "scripts"}); err != nil {
		t.Fatal(err)
	}
	noCacheFlag = true

	cfg := &config.Config{Store: "docs", Out: ".", Cache: true}
	applyRunFlags(cmd, cfg)

	if cfg.Out != "scripts" {
		t.Errorf("Expected out 'scripts', got '%s'", cfg.Out)
	}
	if cfg.Store != "docs" {
		t.Errorf("Unchanged flag should keep config store, got '%s'", cfg.Store)
	}
	if cfg.Cache {
		t.Error("--no-cache should disable the cache")
	}
}

func TestDryRunJSON(t *testing.T) {
	resetRunFlags(t)
	jsonFlag = true

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := dryRun(cmd, workflow.Default(), map[string]any{"language": "ruby"}); err != nil {
		t.Fatalf("dryRun error: %v", err)
	}

	var out struct {
		Args              schema.Arguments `json:"args"`
		GenerationRequest struct {
			LLM    map[string]string `json:"llm"`
			Prompt string            `json:"prompt"`
		} `json:"generation_request"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if out.Args.Language != schema.LanguageRuby {
		t.Errorf("Expected ruby, got %s", out.Args.Language)
	}
	if out.GenerationRequest.LLM["provider"] != "openai" {
		t.Errorf("Expected provider openai, got %v", out.GenerationRequest.LLM)
	}
	if !strings.Contains(out.GenerationRequest.Prompt, "ruby") {
		t.Errorf("Prompt should mention ruby: %q", out.GenerationRequest.Prompt)
	}
}

func TestDryRunRejectsInvalidLanguage(t *testing.T) {
	resetRunFlags(t)
	jsonFlag = true

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := dryRun(cmd, workflow.Default(), map[string]any{"language": "rust"})
	if !errors.Is(err, schema.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
