package ai

import (
	"context"
	"fmt"
	"os/exec"
)

// GeminiCLI implements Client using the gemini CLI
type GeminiCLI struct {
	model string // e.g., "gemini-2.5-flash"
}

// NewGeminiCLI creates a Gemini CLI client
func NewGeminiCLI(model string) *GeminiCLI {
	return &GeminiCLI{model: model}
}

// IsGeminiCLIAvailable checks if gemini CLI is installed
func IsGeminiCLIAvailable() bool {
	_, err := exec.LookPath("gemini")
	return err == nil
}

func (c *GeminiCLI) args(prompt string) []string {
	args := []string{"-p", prompt, "-o", "text"}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	return args
}

// GenerateContent has no system prompt variant; the gemini CLI takes a
// single prompt, so callers concatenate.
func (c *GeminiCLI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, "gemini", c.args(prompt)...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("gemini CLI: %w", err)
	}
	return string(output), nil
}

func (c *GeminiCLI) Close() {
	// No cleanup needed
}
