package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/loopstack-ai/prompt-structured-output-example-workflow/pkg/retry"
)

const DefaultModel = "gpt-4o"

// Shared by every client in the process.
var rateLimiter = retry.NewRateLimiter(1.0)

var SupportedModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-4.1-nano",
}

func IsModelSupported(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

type Client struct {
	client openai.Client
	model  string
	json   bool
}

// NewClient returns a client that asks for JSON-object responses.
func NewClient(model string) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
		json:   true,
	}, nil
}

// Model returns the model ID requests are sent to.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContentWithSystem(ctx, "", prompt)
}

// isRetryableError reports rate limiting and server-side failures.
func isRetryableError(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return errors.Is(err, context.DeadlineExceeded)
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
}

// formatAPIError converts API errors to user-friendly messages
func formatAPIError(err error, model string) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error: %w", err)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("openai API error: invalid API key. Check OPENAI_API_KEY environment variable")
	case http.StatusForbidden:
		return fmt.Errorf("openai API error: key does not have access to model %q", model)
	case http.StatusNotFound:
		return fmt.Errorf("openai API error: model %q not found. Verify the model name is correct", model)
	case http.StatusTooManyRequests:
		return fmt.Errorf("openai API error: rate limit exceeded for model %q. Please wait and try again", model)
	default:
		return fmt.Errorf("openai API error: %w", err)
	}
}

// GenerateContentWithSystem sends the system prompt as a separate message.
func (c *Client) GenerateContentWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(4096),
	}
	if c.json {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	return retry.Do(ctx, retry.DefaultConfig(), func() (string, error) {
		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isRetryableError(err) {
				return "", retry.Retryable(formatAPIError(err, c.model))
			}
			return "", formatAPIError(err, c.model)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		content := completion.Choices[0].Message.Content
		if content == "" {
			return "", fmt.Errorf("no text content in response")
		}
		return content, nil
	})
}

func (c *Client) Close() {
	// No cleanup needed for HTTP client
}
