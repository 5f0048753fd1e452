// Package tools implements the collaborators a workflow calls: document
// creation and AI document generation.
package tools

import (
	"context"
	"errors"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
)

// Tool names as declared by a workflow definition.
const (
	NameCreateDocument     = "createDocument"
	NameAiGenerateDocument = "aiGenerateDocument"
)

var (
	ErrGenerationFailure = errors.New("generation failed")
	ErrInvalidPayload    = errors.New("invalid tool payload")
)

// Meta identifies the workflow position a tool is called from.
type Meta struct {
	RunID      string `json:"run_id"`
	Workflow   string `json:"workflow"`
	Transition string `json:"transition"`
	Place      string `json:"place"`
}

// DocumentUpdate carries the new content of a document.
type DocumentUpdate struct {
	Content any `json:"content"`
}

// CreateDocumentPayload creates or replaces the document with ID.
type CreateDocumentPayload struct {
	ID       string         `json:"id"`
	Document string         `json:"document"`
	Update   DocumentUpdate `json:"update"`
}

type CreateDocumentResult struct {
	Document document.Document `json:"document"`
	// Path is set when the document was also written to disk as a file.
	Path string `json:"path,omitempty"`
}

// LLM selects the provider and model for a generation.
type LLM struct {
	Provider string `json:"provider" yaml:"provider" validate:"required"`
	Model    string `json:"model" yaml:"model"`
}

// ResponseSpec names the document schema the generation must satisfy.
type ResponseSpec struct {
	Document string `json:"document" yaml:"document"`
}

// GenerateDocumentPayload is the generation request.
type GenerateDocumentPayload struct {
	LLM      LLM          `json:"llm"`
	Prompt   string       `json:"prompt"`
	Response ResponseSpec `json:"response"`
}

type GeneratedContent struct {
	Content schema.FileArtifact `json:"content"`
	Cached  bool                `json:"cached,omitempty"`
}

type GenerateDocumentResult struct {
	Data GeneratedContent `json:"data"`
}

// DocumentCreator is the createDocument collaborator.
type DocumentCreator interface {
	Execute(ctx context.Context, payload CreateDocumentPayload, meta Meta) (CreateDocumentResult, error)
}

// DocumentGenerator is the aiGenerateDocument collaborator.
type DocumentGenerator interface {
	Execute(ctx context.Context, payload GenerateDocumentPayload, meta Meta) (GenerateDocumentResult, error)
}
