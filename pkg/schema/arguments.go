package schema

// Language is a programming language the workflow can target.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageRuby       Language = "ruby"
	LanguageGo         Language = "go"
	LanguagePHP        Language = "php"
)

// DefaultLanguage is used when the input omits `language`.
const DefaultLanguage = LanguagePython

var languages = []Language{
	LanguagePython,
	LanguageJavaScript,
	LanguageJava,
	LanguageCPP,
	LanguageRuby,
	LanguageGo,
	LanguagePHP,
}

// Languages returns the accepted values in declaration order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// IsLanguage reports whether s is one of the accepted values.
func IsLanguage(s string) bool {
	for _, l := range languages {
		if string(l) == s {
			return true
		}
	}
	return false
}

// Arguments are the resolved workflow arguments.
type Arguments struct {
	Language Language `json:"language" yaml:"language" validate:"required,oneof=python javascript java cpp ruby go php"`
}

// ArgumentsSchema describes the raw input record. `language` is optional;
// its default is applied by ResolveArguments, not by the validator.
var ArgumentsSchema = newSchema("arguments", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"language": map[string]any{
			"type":        "string",
			"enum":        languageEnum(),
			"default":     string(DefaultLanguage),
			"description": "Target programming language",
		},
	},
})

func languageEnum() []any {
	out := make([]any, 0, len(languages))
	for _, l := range languages {
		out = append(out, string(l))
	}
	return out
}

// ResolveArguments validates a raw input record and applies defaults.
//
// An absent `language` resolves to DefaultLanguage. A present value that is
// not a string in the enumeration (including null) is a *ValidationError.
// Unknown keys are ignored.
func ResolveArguments(input map[string]any) (Arguments, error) {
	if input == nil {
		input = map[string]any{}
	}
	if err := ArgumentsSchema.Validate(input); err != nil {
		return Arguments{}, err
	}

	args := Arguments{Language: DefaultLanguage}
	if v, ok := input["language"]; ok {
		s, _ := v.(string)
		args.Language = Language(s)
	}

	if err := validate.Struct(args); err != nil {
		return Arguments{}, validationErrorFromStruct(err)
	}
	return args, nil
}

// Map returns the arguments as a record, the inverse of ResolveArguments.
func (a Arguments) Map() map[string]any {
	return map[string]any{"language": string(a.Language)}
}
