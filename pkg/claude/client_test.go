package claude

import (
	"errors"
	"strings"
	"testing"
)

func TestModelMapping(t *testing.T) {
	for _, model := range SupportedModels {
		t.Run(model, func(t *testing.T) {
			mapped, ok := modelMapping[model]
			if !ok {
				t.Fatalf("model %q not found in mapping", model)
			}
			if !strings.HasPrefix(mapped, model+"-") {
				t.Errorf("model %q mapped to %q, expected a dated ID", model, mapped)
			}
		})
	}
}

func TestIsModelSupported(t *testing.T) {
	for _, m := range []string{"claude-sonnet-4", "claude-opus-4-5"} {
		if !IsModelSupported(m) {
			t.Errorf("model %q should be supported", m)
		}
	}
	for _, m := range []string{"claude-3", "gpt-4o", "invalid"} {
		if IsModelSupported(m) {
			t.Errorf("model %q should not be supported", m)
		}
	}
}

func TestNewClientMapsModel(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	tests := []struct {
		input    string
		expected string
	}{
		{"", "claude-sonnet-4-20250514"},
		{"claude-sonnet-4-5", "claude-sonnet-4-5-20250929"},
		{"claude-custom-id", "claude-custom-id"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			client, err := NewClient(tt.input)
			if err != nil {
				t.Fatalf("NewClient(%q) failed: %v", tt.input, err)
			}
			if client.model != tt.expected {
				t.Errorf("NewClient(%q).model = %q, want %q", tt.input, client.model, tt.expected)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClient("")
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("Expected ANTHROPIC_API_KEY error, got %v", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("529 overloaded_error"), true},
		{errors.New("rate_limit_error"), true},
		{errors.New("401 authentication_error"), false},
	}
	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFormatAPIError(t *testing.T) {
	err := formatAPIError(errors.New("404 not_found_error"), "claude-x")
	if !strings.Contains(err.Error(), `"claude-x" not found`) {
		t.Errorf("Unexpected message: %v", err)
	}
}
