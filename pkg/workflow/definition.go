package workflow

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/tools"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/utils"
)

//go:embed defaults/workflow.yaml
var DefaultDefinitionYAML []byte

const (
	Dir            = ".promptflow"
	DefinitionPath = ".promptflow/workflow.yaml"
)

// ErrInvalidDefinition is wrapped by every definition validation failure.
var ErrInvalidDefinition = errors.New("invalid workflow definition")

// Definition is the declarative description of a workflow.
type Definition struct {
	Name        string       `yaml:"name" validate:"required"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description,omitempty"`
	Tools       []string     `yaml:"tools" validate:"required,dive,oneof=createDocument aiGenerateDocument"`
	Documents   []string     `yaml:"documents" validate:"required,dive,oneof=aiMessageDocument fileDocument"`
	Arguments   string       `yaml:"arguments,omitempty"`
	Initial     string       `yaml:"initial" validate:"required"`
	Final       string       `yaml:"final" validate:"required,nefield=Initial"`
	LLM         tools.LLM    `yaml:"llm"`
	Templates   Templates    `yaml:"templates"`
	Transitions []Transition `yaml:"transitions" validate:"required,dive"`
}

// Templates are text/template sources rendered with the resolved arguments.
type Templates struct {
	Status string `yaml:"status" validate:"required"`
	Prompt string `yaml:"prompt" validate:"required"`
}

// Transition moves a run from one place to the next by calling a tool.
type Transition struct {
	ID   string `yaml:"id" validate:"required"`
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required,nefield=From"`
	Call Call   `yaml:"call"`
}

// Call is the tool invocation a transition performs.
type Call struct {
	Tool     string `yaml:"tool" validate:"required"`
	ID       string `yaml:"id,omitempty"`
	Document string `yaml:"document" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse decodes and validates a definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Default returns the embedded definition.
func Default() *Definition {
	def, err := Parse(DefaultDefinitionYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded workflow definition: %v", err))
	}
	return def
}

// LoadFile reads a definition from path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Load returns the definition at path, or the project override at
// DefinitionPath, or the embedded default, in that order.
func Load(path string) (*Definition, error) {
	if path != "" {
		return LoadFile(path)
	}
	if utils.FileExists(DefinitionPath) {
		return LoadFile(DefinitionPath)
	}
	return Default(), nil
}

// Init writes the embedded definition to DefinitionPath unless a file is
// already there. It reports whether a file was written.
func Init() (bool, error) {
	if utils.FileExists(DefinitionPath) {
		return false, nil
	}
	if err := Reset(); err != nil {
		return false, err
	}
	return true, nil
}

// Reset overwrites DefinitionPath with the embedded definition.
func Reset() error {
	if err := os.MkdirAll(filepath.Dir(DefinitionPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(DefinitionPath, DefaultDefinitionYAML, 0o644)
}

// Validate checks field constraints and that the transitions form a single
// chain from Initial to Final.
func (d *Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidDefinition, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	_, err := d.chain()
	return err
}

// chain returns the transitions in execution order.
func (d *Definition) chain() ([]Transition, error) {
	byFrom := make(map[string]Transition, len(d.Transitions))
	for _, t := range d.Transitions {
		if _, dup := byFrom[t.From]; dup {
			return nil, fmt.Errorf("%w: place %q has more than one outgoing transition", ErrInvalidDefinition, t.From)
		}
		byFrom[t.From] = t
	}

	var (
		ordered   []Transition
		generated bool
	)
	seen := map[string]bool{}
	for place := d.Initial; place != d.Final; {
		if seen[place] {
			return nil, fmt.Errorf("%w: transitions loop at %q", ErrInvalidDefinition, place)
		}
		seen[place] = true

		t, ok := byFrom[place]
		if !ok {
			return nil, fmt.Errorf("%w: no transition leaves %q", ErrInvalidDefinition, place)
		}
		if err := d.checkCall(t, generated); err != nil {
			return nil, err
		}
		if t.Call.Tool == tools.NameAiGenerateDocument {
			generated = true
		}
		ordered = append(ordered, t)
		place = t.To
	}

	if len(ordered) != len(d.Transitions) {
		return nil, fmt.Errorf("%w: %d transitions are unreachable from %q",
			ErrInvalidDefinition, len(d.Transitions)-len(ordered), d.Initial)
	}
	return ordered, nil
}

func (d *Definition) checkCall(t Transition, generated bool) error {
	c := t.Call
	if !slices.Contains(d.Tools, c.Tool) {
		return fmt.Errorf("%w: transition %s calls undeclared tool %q", ErrInvalidDefinition, t.ID, c.Tool)
	}
	if !slices.Contains(d.Documents, c.Document) {
		return fmt.Errorf("%w: transition %s uses undeclared document %q", ErrInvalidDefinition, t.ID, c.Document)
	}

	switch c.Tool {
	case tools.NameCreateDocument:
		if c.ID == "" {
			return fmt.Errorf("%w: transition %s needs a document id", ErrInvalidDefinition, t.ID)
		}
		if c.Document == document.KindFile && !generated {
			return fmt.Errorf("%w: transition %s creates a file before one is generated", ErrInvalidDefinition, t.ID)
		}
	case tools.NameAiGenerateDocument:
		if c.Document != document.KindFile {
			return fmt.Errorf("%w: transition %s can only generate %s", ErrInvalidDefinition, t.ID, document.KindFile)
		}
	}
	return nil
}
