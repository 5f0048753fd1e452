package ai

import (
	"context"
	"fmt"
	"os/exec"
)

// ClaudeCLI implements Client using the claude CLI
type ClaudeCLI struct {
	model string // e.g., "sonnet", "opus"
}

// NewClaudeCLI creates a Claude CLI client
func NewClaudeCLI(model string) *ClaudeCLI {
	return &ClaudeCLI{model: model}
}

// IsClaudeCLIAvailable checks if claude CLI is installed
func IsClaudeCLIAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

func (c *ClaudeCLI) args(systemPrompt, prompt string) []string {
	args := []string{"-p", prompt, "--output-format", "text"}
	if systemPrompt != "" {
		args = append(args, "--append-system-prompt", systemPrompt)
	}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}
	return args
}

func (c *ClaudeCLI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContentWithSystem(ctx, "", prompt)
}

func (c *ClaudeCLI) GenerateContentWithSystem(ctx context.Context, systemPrompt, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, "claude", c.args(systemPrompt, prompt)...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("claude CLI: %w", err)
	}
	return string(output), nil
}

func (c *ClaudeCLI) Close() {
	// No cleanup needed
}
