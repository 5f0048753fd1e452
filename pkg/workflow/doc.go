// Package workflow runs the prompt structured output workflow.
//
// # Definition
//
// The workflow is declared in YAML and embedded at compile time from
// defaults/workflow.yaml. It names the tools and documents it uses, the
// places and transitions between them, the status and prompt templates,
// and the model to call:
//
//	start --greeting--> ready --prompt--> prompt_executed --add_file--> end
//
// Templates are text/template sources rendered with {{ .Language }}.
//
// # Runtime Customization
//
// Run 'promptflow init' to copy the default to .promptflow/workflow.yaml,
// then edit it. A definition given with --definition wins over both.
// Run 'promptflow init -r' to reset the copy to the embedded default.
//
// # Tools
//
// The package calls its collaborators only through tools.DocumentCreator
// and tools.DocumentGenerator. Concrete implementations live in pkg/tools.
package workflow
