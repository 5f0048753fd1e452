package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/claude"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/gemini"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/openai"
)

// Client is the common interface for AI providers
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Close()
}

// SystemClient accepts a separate system prompt (optional interface).
type SystemClient interface {
	Client
	GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Provider names accepted in a generation request's llm block.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderClaudeCLI = "claude-cli"
	ProviderGeminiCLI = "gemini-cli"
)

var aliases = map[string]string{
	"claude": ProviderAnthropic,
	"gemini": ProviderGoogle,
}

// Factory creates a client for a provider/model pair.
type Factory interface {
	NewClient(provider, model string) (Client, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(provider, model string) (Client, error)

func (f FactoryFunc) NewClient(provider, model string) (Client, error) {
	return f(provider, model)
}

// DefaultFactory builds real clients with NewClient.
var DefaultFactory Factory = FactoryFunc(NewClient)

// Normalize lowercases a provider name and resolves aliases.
func Normalize(provider string) string {
	p := strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := aliases[p]; ok {
		return canonical
	}
	return p
}

// NewClient creates an AI client for the provider. An empty model selects
// the provider's default; CLI providers pass the model through to the CLI.
func NewClient(provider, model string) (Client, error) {
	switch Normalize(provider) {
	case ProviderOpenAI:
		return openai.NewClient(model)
	case ProviderAnthropic:
		return claude.NewClient(model)
	case ProviderGoogle:
		return gemini.NewClient(model)
	case ProviderClaudeCLI:
		if !IsClaudeCLIAvailable() {
			return nil, fmt.Errorf("claude CLI not found in PATH")
		}
		return NewClaudeCLI(model), nil
	case ProviderGeminiCLI:
		if !IsGeminiCLIAvailable() {
			return nil, fmt.Errorf("gemini CLI not found in PATH")
		}
		return NewGeminiCLI(model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (use %s)", provider, strings.Join(Providers(), ", "))
	}
}

// Providers returns the canonical provider names.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderClaudeCLI, ProviderGeminiCLI}
}

// IsProviderSupported reports whether NewClient knows the provider.
func IsProviderSupported(provider string) bool {
	p := Normalize(provider)
	for _, known := range Providers() {
		if p == known {
			return true
		}
	}
	return false
}

// IsCLIProvider returns true for providers backed by a local CLI.
func IsCLIProvider(provider string) bool {
	p := Normalize(provider)
	return p == ProviderClaudeCLI || p == ProviderGeminiCLI
}

// IsModelSupported checks a model against the provider's known list.
// CLI providers accept any model name the CLI does.
func IsModelSupported(provider, model string) bool {
	switch Normalize(provider) {
	case ProviderOpenAI:
		return openai.IsModelSupported(model)
	case ProviderAnthropic:
		return claude.IsModelSupported(model)
	case ProviderGoogle:
		return gemini.IsModelSupported(model)
	case ProviderClaudeCLI, ProviderGeminiCLI:
		return true
	default:
		return false
	}
}

// DefaultModel returns the model used when a request leaves it empty.
func DefaultModel(provider string) string {
	switch Normalize(provider) {
	case ProviderOpenAI:
		return openai.DefaultModel
	case ProviderAnthropic:
		return claude.DefaultModel
	case ProviderGoogle:
		return gemini.DefaultModel
	default:
		return ""
	}
}

// APIKeyEnv returns the environment variable holding the provider's key,
// or "" for CLI providers.
func APIKeyEnv(provider string) string {
	switch Normalize(provider) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGoogle:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// SupportedModels returns "provider/model" for every known API model.
func SupportedModels() []string {
	var out []string
	for _, m := range openai.SupportedModels {
		out = append(out, ProviderOpenAI+"/"+m)
	}
	for _, m := range claude.SupportedModels {
		out = append(out, ProviderAnthropic+"/"+m)
	}
	for _, m := range gemini.SupportedModels {
		out = append(out, ProviderGoogle+"/"+m)
	}
	sort.Strings(out)
	return out
}
