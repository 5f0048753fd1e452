package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	clog "github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/log"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/utils"
)

// CreateDocument stores documents for a run.
type CreateDocument struct {
	store document.Store
	now   func() time.Time
}

func NewCreateDocument(store document.Store) *CreateDocument {
	return &CreateDocument{store: store, now: time.Now}
}

func (c *CreateDocument) Execute(ctx context.Context, payload CreateDocumentPayload, meta Meta) (CreateDocumentResult, error) {
	if payload.ID == "" {
		return CreateDocumentResult{}, fmt.Errorf("%w: document id is required", ErrInvalidPayload)
	}
	if meta.RunID == "" {
		return CreateDocumentResult{}, fmt.Errorf("%w: run id is required", ErrInvalidPayload)
	}

	doc := document.Document{
		ID:        payload.ID,
		Kind:      payload.Document,
		RunID:     meta.RunID,
		Content:   payload.Update.Content,
		CreatedAt: c.now().UTC(),
	}
	if err := c.store.Put(ctx, doc); err != nil {
		return CreateDocumentResult{}, fmt.Errorf("failed to store document %s: %w", payload.ID, err)
	}

	clog.Debug("document created", "run_id", meta.RunID, "id", doc.ID, "kind", doc.Kind)
	return CreateDocumentResult{Document: doc}, nil
}

// OutputWriter wraps a DocumentCreator and also writes file documents'
// code to a directory. Other documents pass through unchanged.
type OutputWriter struct {
	next DocumentCreator
	dir  string
}

func NewOutputWriter(next DocumentCreator, dir string) *OutputWriter {
	return &OutputWriter{next: next, dir: dir}
}

func (w *OutputWriter) Execute(ctx context.Context, payload CreateDocumentPayload, meta Meta) (CreateDocumentResult, error) {
	var file *schema.FileArtifact
	if payload.Document == document.KindFile {
		switch c := payload.Update.Content.(type) {
		case schema.FileArtifact:
			file = &c
		case *schema.FileArtifact:
			if c == nil {
				return CreateDocumentResult{}, fmt.Errorf("%w: nil file document", ErrInvalidPayload)
			}
			file = c
		default:
			return CreateDocumentResult{}, fmt.Errorf("%w: file document content is %T", ErrInvalidPayload, c)
		}
	}

	// Resolve the path first so a bad filename fails before anything is stored.
	path := ""
	if file != nil {
		var err error
		if path, err = utils.SafeJoin(w.dir, file.Filename); err != nil {
			return CreateDocumentResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}

	res, err := w.next.Execute(ctx, payload, meta)
	if err != nil || file == nil {
		return res, err
	}

	if err := utils.WriteFile(path, file.Code); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", path, err)
	}
	clog.Info("file written", "run_id", meta.RunID, "path", path)
	res.Path = path
	return res, nil
}
