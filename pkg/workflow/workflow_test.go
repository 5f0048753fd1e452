package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/document"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/schema"
	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/tools"
)

type MockCreateDocument struct {
	mock.Mock
}

func (m *MockCreateDocument) Execute(ctx context.Context, payload tools.CreateDocumentPayload, meta tools.Meta) (tools.CreateDocumentResult, error) {
	args := m.Called(ctx, payload, meta)

	return args.Get(0).(tools.CreateDocumentResult), args.Error(1)
}

type MockAiGenerateDocument struct {
	mock.Mock
}

func (m *MockAiGenerateDocument) Execute(ctx context.Context, payload tools.GenerateDocumentPayload, meta tools.Meta) (tools.GenerateDocumentResult, error) {
	args := m.Called(ctx, payload, meta)

	return args.Get(0).(tools.GenerateDocumentResult), args.Error(1)
}

var mockFileContent = schema.FileArtifact{
	Filename:    "hello_world.py",
	Description: "A simple Hello World script",
	Code:        `print("Hello, World!")`,
}

func generated(f schema.FileArtifact) tools.GenerateDocumentResult {
	return tools.GenerateDocumentResult{Data: tools.GeneratedContent{Content: f}}
}

func statusPayload(language string) tools.CreateDocumentPayload {
	return tools.CreateDocumentPayload{
		ID:       "status",
		Document: document.KindMessage,
		Update: tools.DocumentUpdate{Content: document.Message{
			Role:  "assistant",
			Parts: []document.Part{{Type: "text", Text: "Creating a 'Hello, World!' script in " + language + "..."}},
		}},
	}
}

func promptContains(language string) any {
	return mock.MatchedBy(func(p tools.GenerateDocumentPayload) bool {
		return p.LLM == tools.LLM{Provider: "openai", Model: "gpt-4o"} &&
			p.Response.Document == document.KindFile &&
			strings.Contains(p.Prompt, language)
	})
}

func newStep(t *testing.T, creator *MockCreateDocument, generator *MockAiGenerateDocument) *Step {
	t.Helper()
	step, err := New(Config{
		CreateDocument:     creator,
		AiGenerateDocument: generator,
		NewRunID:           func() string { return "run-1" },
		Now:                func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return step
}

func TestStepIsDefinedWithToolsAndDocuments(t *testing.T) {
	step := newStep(t, new(MockCreateDocument), new(MockAiGenerateDocument))

	assert.Contains(t, step.Tools(), "createDocument")
	assert.Contains(t, step.Tools(), "aiGenerateDocument")
	assert.Contains(t, step.Documents(), "aiMessageDocument")
	assert.Contains(t, step.Documents(), "fileDocument")
}

func TestResolveArgumentsAppliesDefault(t *testing.T) {
	step := newStep(t, new(MockCreateDocument), new(MockAiGenerateDocument))

	args, err := step.ResolveArguments(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, schema.Arguments{Language: "python"}, args)

	args, err = step.ResolveArguments(nil)
	require.NoError(t, err)
	assert.Equal(t, schema.LanguagePython, args.Language)
}

func TestBuildersForEveryLanguage(t *testing.T) {
	step := newStep(t, new(MockCreateDocument), new(MockAiGenerateDocument))

	for _, l := range schema.Languages() {
		t.Run(string(l), func(t *testing.T) {
			args := schema.Arguments{Language: l}

			msg, err := step.BuildStatusMessage(args)
			require.NoError(t, err)
			assert.Equal(t, "assistant", msg.Role)
			assert.Equal(t, "Creating a 'Hello, World!' script in "+string(l)+"...", msg.Text())

			req, err := step.BuildGenerationRequest(args)
			require.NoError(t, err)
			assert.Equal(t, "openai", req.LLM.Provider)
			assert.Equal(t, "gpt-4o", req.LLM.Model)
			assert.Contains(t, req.Prompt, string(l))
		})
	}
}

func TestRunGeneratesHelloWorldScript(t *testing.T) {
	creator := new(MockCreateDocument)
	generator := new(MockAiGenerateDocument)

	creator.On("Execute", mock.Anything, statusPayload("python"), mock.MatchedBy(func(m tools.Meta) bool {
		return m.RunID == "run-1" && m.Transition == "greeting" && m.Place == "start"
	})).Return(tools.CreateDocumentResult{}, nil).Once()
	generator.On("Execute", mock.Anything, promptContains("python"), mock.Anything).
		Return(generated(mockFileContent), nil).Once()
	creator.On("Execute", mock.Anything, mock.MatchedBy(func(p tools.CreateDocumentPayload) bool {
		return p.ID == "file" && p.Document == document.KindFile && p.Update.Content == mockFileContent
	}), mock.Anything).Return(tools.CreateDocumentResult{}, nil).Once()

	step := newStep(t, creator, generator)
	res, err := step.Run(context.Background(), map[string]any{"language": "python"})

	require.NoError(t, err)
	assert.False(t, res.Runtime.Error)
	creator.AssertNumberOfCalls(t, "Execute", 2)
	generator.AssertNumberOfCalls(t, "Execute", 1)
	creator.AssertExpectations(t)
	generator.AssertExpectations(t)

	assert.Equal(t, []string{"start", "ready", "prompt_executed", "end"}, res.State.Places())
	assert.Equal(t, "end", res.State.Place)
	assert.True(t, res.Done("end"))
	require.NotNil(t, res.State.File)
	assert.Equal(t, mockFileContent, *res.State.File)
	assert.Equal(t, "run-1", res.RunID)
}

func TestRunWithDifferentLanguage(t *testing.T) {
	creator := new(MockCreateDocument)
	generator := new(MockAiGenerateDocument)

	js := mockFileContent
	js.Filename = "hello_world.js"

	creator.On("Execute", mock.Anything, statusPayload("javascript"), mock.Anything).
		Return(tools.CreateDocumentResult{}, nil).Once()
	creator.On("Execute", mock.Anything, mock.MatchedBy(func(p tools.CreateDocumentPayload) bool {
		return p.ID == "file"
	}), mock.Anything).Return(tools.CreateDocumentResult{Path: "out/hello_world.js"}, nil).Once()
	generator.On("Execute", mock.Anything, promptContains("javascript"), mock.Anything).
		Return(generated(js), nil).Once()

	step := newStep(t, creator, generator)
	res, err := step.Run(context.Background(), map[string]any{"language": "javascript"})

	require.NoError(t, err)
	assert.False(t, res.Runtime.Error)
	assert.Equal(t, schema.LanguageJavaScript, res.State.Args.Language)
	assert.Equal(t, "hello_world.js", res.State.File.Filename)
	assert.Equal(t, "out/hello_world.js", res.State.Path)
	creator.AssertExpectations(t)
	generator.AssertExpectations(t)
}

func TestRunUsesDefaultLanguage(t *testing.T) {
	creator := new(MockCreateDocument)
	generator := new(MockAiGenerateDocument)

	creator.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(tools.CreateDocumentResult{}, nil)
	generator.On("Execute", mock.Anything, promptContains("python"), mock.Anything).
		Return(generated(mockFileContent), nil).Once()

	step := newStep(t, creator, generator)
	res, err := step.Run(context.Background(), map[string]any{})

	require.NoError(t, err)
	assert.False(t, res.Runtime.Error)
	creator.AssertCalled(t, "Execute", mock.Anything, statusPayload("python"), mock.Anything)
	generator.AssertExpectations(t)
}

func TestRunRejectsInvalidLanguageBeforeAnyCall(t *testing.T) {
	creator := new(MockCreateDocument)
	generator := new(MockAiGenerateDocument)
	step := newStep(t, creator, generator)

	for _, input := range []map[string]any{
		{"language": "rust"},
		{"language": "Python"},
		{"language": nil},
		{"language": 42},
	} {
		res, err := step.Run(context.Background(), input)

		assert.Nil(t, res)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrValidation)

		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "language", verr.Field)
	}

	creator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	generator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunGenerationFailure(t *testing.T) {
	creator := new(MockCreateDocument)
	generator := new(MockAiGenerateDocument)

	boom := fmt.Errorf("%w: openai/gpt-4o: rate limit exceeded", tools.ErrGenerationFailure)
	creator.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(tools.CreateDocumentResult{}, nil)
	generator.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(tools.GenerateDocumentResult{}, boom).Once()

	step := newStep(t, creator, generator)
	res, err := step.Run(context.Background(), map[string]any{"language": "go"})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Runtime.Error)
	assert.ErrorIs(t, res.Runtime.Err, tools.ErrGenerationFailure)
	assert.ErrorIs(t, res.Runtime.Err, ErrToolFailed)
	assert.NotEmpty(t, res.Runtime.Message)

	var terr *TransitionError
	require.ErrorAs(t, res.Runtime.Err, &terr)
	assert.Equal(t, "prompt", terr.Transition)
	assert.Equal(t, "ready", terr.From)
	assert.Equal(t, "prompt_executed", terr.To)

	creator.AssertNumberOfCalls(t, "Execute", 1)
	assert.NotContains(t, res.State.Places(), "end")
	assert.Equal(t, "ready", res.State.Place)
	assert.Nil(t, res.State.File)
	assert.False(t, res.Done("end"))
}

func TestRunCreateDocumentFailure(t *testing.T) {
	creator := new(MockCreateDocument)
	generator := new(MockAiGenerateDocument)

	creator.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(tools.CreateDocumentResult{}, errors.New("disk full")).Once()

	step := newStep(t, creator, generator)
	res, err := step.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, res.Runtime.Error)
	assert.ErrorIs(t, res.Runtime.Err, ErrToolFailed)
	assert.Equal(t, []string{"start"}, res.State.Places())
	generator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunCancelledContext(t *testing.T) {
	creator := new(MockCreateDocument)
	generator := new(MockAiGenerateDocument)
	step := newStep(t, creator, generator)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := step.Run(ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.Runtime.Error)
	assert.ErrorIs(t, res.Runtime.Err, context.Canceled)
	creator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewRequiresTools(t *testing.T) {
	_, err := New(Config{AiGenerateDocument: new(MockAiGenerateDocument)})
	assert.Error(t, err)

	_, err = New(Config{CreateDocument: new(MockCreateDocument)})
	assert.Error(t, err)
}

func TestNewRejectsPromptWithoutLanguage(t *testing.T) {
	def := Default()
	def.Templates.Prompt = "Write a hello world script."

	_, err := New(Config{
		Definition:         def,
		CreateDocument:     new(MockCreateDocument),
		AiGenerateDocument: new(MockAiGenerateDocument),
	})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestNewRejectsBrokenTemplate(t *testing.T) {
	def := Default()
	def.Templates.Status = "Creating {{ .Language "

	_, err := New(Config{
		Definition:         def,
		CreateDocument:     new(MockCreateDocument),
		AiGenerateDocument: new(MockAiGenerateDocument),
	})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}
