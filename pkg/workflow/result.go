package workflow

import (
	"time"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/tools"
)

// Result is the envelope a run returns.
type Result struct {
	RunID    string  `json:"run_id"`
	Workflow string  `json:"workflow"`
	Runtime  Runtime `json:"runtime"`
	State    State   `json:"state"`
}

// Runtime reports whether the run failed.
type Runtime struct {
	Error   bool   `json:"error"`
	Err     error  `json:"-"`
	Message string `json:"message,omitempty"`
}

// State is the run's data at the place it stopped.
type State struct {
	Place             string                        `json:"place"`
	Args              schema.Arguments              `json:"args"`
	StatusMessage     document.Message              `json:"status_message"`
	GenerationRequest tools.GenerateDocumentPayload `json:"generation_request"`
	File              *schema.FileArtifact          `json:"file,omitempty"`
	Cached            bool                          `json:"cached,omitempty"`
	Path              string                        `json:"path,omitempty"`
	History           []HistoryEntry                `json:"history"`
}

// HistoryEntry records arrival at a place.
type HistoryEntry struct {
	Place      string    `json:"place"`
	Transition string    `json:"transition,omitempty"`
	At         time.Time `json:"at"`
}

func (s *State) record(place, transition string, at time.Time) {
	s.History = append(s.History, HistoryEntry{Place: place, Transition: transition, At: at.UTC()})
}

// Places returns the visited places in order.
func (s State) Places() []string {
	places := make([]string, 0, len(s.History))
	for _, h := range s.History {
		places = append(places, h.Place)
	}
	return places
}

// Done reports whether the run reached the final place.
func (r *Result) Done(final string) bool {
	return !r.Runtime.Error && r.State.Place == final
}
