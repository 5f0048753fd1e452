package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	clog "github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/log"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/tools"
)

// ErrToolFailed is wrapped by every collaborator failure during Run.
var ErrToolFailed = errors.New("tool call failed")

// TransitionError records the transition a run stopped at.
type TransitionError struct {
	Transition string
	From       string
	To         string
	Err        error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s (%s -> %s): %v", e.Transition, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// Config wires a Step. A nil Definition uses the embedded default.
type Config struct {
	Definition         *Definition
	CreateDocument     tools.DocumentCreator
	AiGenerateDocument tools.DocumentGenerator

	// NewRunID and Now default to uuid.NewString and time.Now.
	NewRunID func() string
	Now      func() time.Time
}

// Step runs the prompt workflow: status message, generation, file document.
type Step struct {
	def         *Definition
	transitions []Transition
	creator     tools.DocumentCreator
	generator   tools.DocumentGenerator
	status      *template.Template
	prompt      *template.Template
	newRunID    func() string
	now         func() time.Time
}

// templateData is what status and prompt templates see.
type templateData struct {
	Language schema.Language
}

// New validates cfg and returns a Step.
func New(cfg Config) (*Step, error) {
	if cfg.CreateDocument == nil {
		return nil, fmt.Errorf("workflow: %s tool is required", tools.NameCreateDocument)
	}
	if cfg.AiGenerateDocument == nil {
		return nil, fmt.Errorf("workflow: %s tool is required", tools.NameAiGenerateDocument)
	}

	def := cfg.Definition
	if def == nil {
		def = Default()
	}
	transitions, err := def.chain()
	if err != nil {
		return nil, err
	}

	s := &Step{
		def:         def,
		transitions: transitions,
		creator:     cfg.CreateDocument,
		generator:   cfg.AiGenerateDocument,
		newRunID:    cfg.NewRunID,
		now:         cfg.Now,
	}
	if s.newRunID == nil {
		s.newRunID = uuid.NewString
	}
	if s.now == nil {
		s.now = time.Now
	}

	if s.status, err = parseTemplate("status", def.Templates.Status); err != nil {
		return nil, err
	}
	if s.prompt, err = parseTemplate("prompt", def.Templates.Prompt); err != nil {
		return nil, err
	}

	// Every accepted language must reach the model.
	for _, l := range schema.Languages() {
		p, err := s.render(s.prompt, schema.Arguments{Language: l})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
		if !strings.Contains(p, string(l)) {
			return nil, fmt.Errorf("%w: prompt template does not mention the language", ErrInvalidDefinition)
		}
	}
	return s, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s template: %v", ErrInvalidDefinition, name, err)
	}
	return t, nil
}

func (s *Step) render(t *template.Template, args schema.Arguments) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, templateData{Language: args.Language}); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", t.Name(), err)
	}
	return sb.String(), nil
}

// Definition returns the definition the step runs.
func (s *Step) Definition() *Definition { return s.def }

// Tools lists the declared tool names.
func (s *Step) Tools() []string {
	return append([]string(nil), s.def.Tools...)
}

// Documents lists the declared document kinds.
func (s *Step) Documents() []string {
	return append([]string(nil), s.def.Documents...)
}

// ResolveArguments applies defaults and rejects invalid input.
func (s *Step) ResolveArguments(input map[string]any) (schema.Arguments, error) {
	return schema.ResolveArguments(input)
}

// BuildStatusMessage renders the status shown while the file is generated.
func (s *Step) BuildStatusMessage(args schema.Arguments) (document.Message, error) {
	text, err := s.render(s.status, args)
	if err != nil {
		return document.Message{}, err
	}
	return document.NewAssistantText(text), nil
}

// BuildGenerationRequest renders the prompt and attaches the fixed LLM.
func (s *Step) BuildGenerationRequest(args schema.Arguments) (tools.GenerateDocumentPayload, error) {
	prompt, err := s.render(s.prompt, args)
	if err != nil {
		return tools.GenerateDocumentPayload{}, err
	}
	return tools.GenerateDocumentPayload{
		LLM:      s.def.LLM,
		Prompt:   prompt,
		Response: tools.ResponseSpec{Document: document.KindFile},
	}, nil
}

// Run resolves input and walks the transitions in order.
//
// Invalid input returns a nil Result and a *schema.ValidationError before
// any tool is called. Once a run has started, a failing tool stops it: the
// Result has Runtime.Error set, Runtime.Err holds a *TransitionError, and
// the returned error is nil.
func (s *Step) Run(ctx context.Context, input map[string]any) (*Result, error) {
	args, err := s.ResolveArguments(input)
	if err != nil {
		return nil, err
	}

	status, err := s.BuildStatusMessage(args)
	if err != nil {
		return nil, err
	}
	req, err := s.BuildGenerationRequest(args)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:    s.newRunID(),
		Workflow: s.def.Name,
		State: State{
			Place:             s.def.Initial,
			Args:              args,
			StatusMessage:     status,
			GenerationRequest: req,
		},
	}
	res.State.record(s.def.Initial, "", s.now())

	logger := clog.With("run_id", res.RunID, "workflow", s.def.Name)
	logger.Debug("run started", "language", args.Language)

	for _, t := range s.transitions {
		logger.Debug("transition", "transition", t.ID, "place", t.From)

		if err := s.apply(ctx, res, t); err != nil {
			res.Runtime = Runtime{
				Error: true,
				Err:   &TransitionError{Transition: t.ID, From: t.From, To: t.To, Err: err},
			}
			res.Runtime.Message = res.Runtime.Err.Error()
			logger.Debug("run failed", "transition", t.ID, "error", err)
			return res, nil
		}

		res.State.Place = t.To
		res.State.record(t.To, t.ID, s.now())
	}

	logger.Debug("run finished", "place", res.State.Place)
	return res, nil
}

func (s *Step) apply(ctx context.Context, res *Result, t Transition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	meta := tools.Meta{
		RunID:      res.RunID,
		Workflow:   s.def.Name,
		Transition: t.ID,
		Place:      t.From,
	}

	switch t.Call.Tool {
	case tools.NameCreateDocument:
		payload := tools.CreateDocumentPayload{ID: t.Call.ID, Document: t.Call.Document}
		switch t.Call.Document {
		case document.KindFile:
			payload.Update.Content = *res.State.File
		default:
			payload.Update.Content = res.State.StatusMessage
		}

		out, err := s.creator.Execute(ctx, payload, meta)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrToolFailed, t.Call.Tool, err)
		}
		if out.Path != "" {
			res.State.Path = out.Path
		}

	case tools.NameAiGenerateDocument:
		out, err := s.generator.Execute(ctx, res.State.GenerationRequest, meta)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrToolFailed, t.Call.Tool, err)
		}
		file := out.Data.Content
		res.State.File = &file
		res.State.Cached = out.Data.Cached

	default:
		return fmt.Errorf("%w: unknown tool %q", ErrToolFailed, t.Call.Tool)
	}
	return nil
}
