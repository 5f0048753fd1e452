// Package document holds the documents a workflow run emits and the stores
// that keep them.
package document

import (
	"context"
	"errors"
	"time"
)

// Document kinds declared by the workflow.
const (
	KindMessage = "aiMessageDocument"
	KindFile    = "fileDocument"
)

// RoleAssistant is the only role the workflow writes messages as.
const RoleAssistant = "assistant"

// ErrNotFound is returned by Store.Get for unknown documents.
var ErrNotFound = errors.New("document not found")

// Part is one piece of a message.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Message is a chat-style message shown to the user.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewAssistantText returns a single-part assistant text message.
func NewAssistantText(text string) Message {
	return Message{
		Role:  RoleAssistant,
		Parts: []Part{{Type: "text", Text: text}},
	}
}

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	s := ""
	for _, p := range m.Parts {
		if p.Type == "text" {
			s += p.Text
		}
	}
	return s
}

// Document is a stored workflow document. IDs are unique within a run;
// writing the same ID again replaces the earlier document.
type Document struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	RunID     string    `json:"run_id"`
	Content   any       `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists documents.
type Store interface {
	Put(ctx context.Context, doc Document) error
	Get(ctx context.Context, runID, id string) (Document, error)
	List(ctx context.Context, runID string) ([]Document, error)
}
