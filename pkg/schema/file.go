package schema

import "fmt"

// FileArtifact is a generated source file.
type FileArtifact struct {
	Filename    string `json:"filename" yaml:"filename"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Code        string `json:"code" yaml:"code"`
}

// FileDocumentSchema is the contract generated file documents must meet.
var FileDocumentSchema = newSchema("fileDocument", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"filename": map[string]any{
			"type":        "string",
			"description": "File name including the extension for the language",
		},
		"description": map[string]any{
			"type":        "string",
			"description": "One-sentence description of the file",
		},
		"code": map[string]any{
			"type":        "string",
			"description": "Complete file contents",
		},
	},
	"required": []any{"filename", "code"},
})

// DecodeFileArtifact validates a decoded JSON object and converts it.
func DecodeFileArtifact(raw map[string]any) (FileArtifact, error) {
	if err := FileDocumentSchema.Validate(raw); err != nil {
		return FileArtifact{}, err
	}

	var f FileArtifact
	f.Filename = fmt.Sprint(raw["filename"])
	f.Code = fmt.Sprint(raw["code"])
	if d, ok := raw["description"].(string); ok {
		f.Description = d
	}
	return f, nil
}
