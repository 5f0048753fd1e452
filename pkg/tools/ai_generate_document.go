package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/ai"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/cache"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	clog "github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/log"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
)

const systemPrompt = "You write small, complete, runnable source files."

// AiGenerateDocumentConfig configures AiGenerateDocument. Zero values are
// usable: the real provider clients, no cache, no timeout.
type AiGenerateDocumentConfig struct {
	Factory ai.Factory
	Cache   *cache.Store
	// Timeout bounds a single generation, including client retries.
	Timeout time.Duration
}

// AiGenerateDocument asks a model for a file document and validates it.
type AiGenerateDocument struct {
	factory ai.Factory
	cache   *cache.Store
	timeout time.Duration
}

func NewAiGenerateDocument(cfg AiGenerateDocumentConfig) *AiGenerateDocument {
	if cfg.Factory == nil {
		cfg.Factory = ai.DefaultFactory
	}
	return &AiGenerateDocument{
		factory: cfg.Factory,
		cache:   cfg.Cache,
		timeout: cfg.Timeout,
	}
}

func (g *AiGenerateDocument) Execute(ctx context.Context, payload GenerateDocumentPayload, meta Meta) (GenerateDocumentResult, error) {
	f, cached, err := g.generate(ctx, payload, meta)
	if err != nil {
		return GenerateDocumentResult{}, fmt.Errorf("%w: %s/%s: %w",
			ErrGenerationFailure, payload.LLM.Provider, payload.LLM.Model, err)
	}
	return GenerateDocumentResult{Data: GeneratedContent{Content: f, Cached: cached}}, nil
}

func (g *AiGenerateDocument) generate(ctx context.Context, payload GenerateDocumentPayload, meta Meta) (schema.FileArtifact, bool, error) {
	if payload.Response.Document != "" && payload.Response.Document != document.KindFile {
		return schema.FileArtifact{}, false, fmt.Errorf("%w: unsupported response document %q", ErrInvalidPayload, payload.Response.Document)
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		return schema.FileArtifact{}, false, fmt.Errorf("%w: prompt is empty", ErrInvalidPayload)
	}

	key := cache.Key(ai.Normalize(payload.LLM.Provider), payload.LLM.Model, payload.Prompt)
	if g.cache != nil {
		if f, ok := g.cache.Get(key); ok {
			clog.Debug("generation cache hit", "run_id", meta.RunID, "key", key[:12])
			return f, true, nil
		}
	}

	client, err := g.factory.NewClient(payload.LLM.Provider, payload.LLM.Model)
	if err != nil {
		return schema.FileArtifact{}, false, err
	}
	defer client.Close()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	instructions := schema.FileDocumentSchema.PromptInstructions()
	var text string
	if sc, ok := client.(ai.SystemClient); ok {
		text, err = sc.GenerateContentWithSystem(ctx, systemPrompt+"\n\n"+instructions, payload.Prompt)
	} else {
		text, err = client.GenerateContent(ctx, payload.Prompt+"\n\n"+instructions)
	}
	if err != nil {
		return schema.FileArtifact{}, false, err
	}

	f, err := ParseFileArtifact(text)
	if err != nil {
		clog.Debug("unparseable generation", "run_id", meta.RunID, "response", text)
		return schema.FileArtifact{}, false, err
	}

	if g.cache != nil {
		if err := g.cache.Put(key, f); err != nil {
			clog.Warn("failed to write generation cache", "error", err)
		}
	}
	return f, false, nil
}

// ParseFileArtifact extracts the JSON object from a model reply, tolerating
// markdown code fences and surrounding prose, and validates it.
func ParseFileArtifact(text string) (schema.FileArtifact, error) {
	body := extractJSON(text)
	if body == "" {
		return schema.FileArtifact{}, fmt.Errorf("no JSON object in response")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return schema.FileArtifact{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return schema.DecodeFileArtifact(raw)
}

func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl != -1 {
			s = s[nl+1:] // drop the language tag line
		}
		if end := strings.LastIndex(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
