package llmreview

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/pkg/logger"
)

// ClientName is the identifier for the Anthropic-backed client.
const ClientName = "anthropic"

const defaultModel = "claude-sonnet-4-5"
const maxResponseTokens = 4096

func init() {
	Register(ClientName, NewAnthropicClient)
}

// AnthropicClient generates suggestions via the Anthropic Messages API.
type AnthropicClient struct {
	config *ClientConfig
	sdk    *anthropic.Client
	logger *zap.Logger
}

// NewAnthropicClient builds the client the registry calls Create with.
func NewAnthropicClient(config *ClientConfig) (Client, error) {
	if config == nil {
		config = NewClientConfig(ClientName)
	}
	if config.DefaultModel == "" {
		config.DefaultModel = defaultModel
	}

	sdk := anthropic.NewClient(option.WithAPIKey(config.APIKey))

	return &AnthropicClient{
		config: config,
		sdk:    &sdk,
		logger: logger.Named("llmreview." + config.Name),
	}, nil
}

func (c *AnthropicClient) Name() string            { return c.config.Name }
func (c *AnthropicClient) GetConfig() *ClientConfig { return c.config }

// GenerateSuggestions calls the Messages API under a hard wall-clock
// timeout, retrying transient failures with a linearly growing delay
// (RetryDelay times the attempt number). Auth
// failures (401/403) are never retried.
func (c *AnthropicClient) GenerateSuggestions(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	timeout := c.config.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := BuildPrompt(in)

	maxRetries := c.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retryDelay := c.config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewClientError(c.config.Name, "generate", "context cancelled during retry backoff", ClassTimeout, 0, ctx.Err())
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		content, err := c.callOnce(ctx, prompt)
		if err == nil {
			return ParseResponse(content)
		}

		lastErr = err
		var clientErr *ClientError
		if errors.As(err, &clientErr) && !clientErr.Class.Retryable() {
			return nil, err
		}

		c.logger.Warn("llm call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, NewClientError(c.config.Name, "generate", "max retries exceeded", ClassUnknown, 0, lastErr)
}

func (c *AnthropicClient) callOnce(ctx context.Context, prompt string) (string, error) {
	message, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.DefaultModel),
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyAnthropicError(c.config.Name, err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", NewClientError(c.config.Name, "generate", "empty response content", ClassUnknown, 0, nil)
	}
	return text, nil
}

// classifyAnthropicError maps the SDK's error type to our ErrorClass
// taxonomy. Non-API errors (context deadline, DNS failures, connection
// resets) are treated as network errors, which are retryable.
func classifyAnthropicError(clientName string, err error) *ClientError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		class := ClassifyHTTPStatus(apiErr.StatusCode)
		return NewClientError(clientName, "generate", "anthropic api error", class, apiErr.StatusCode, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewClientError(clientName, "generate", "request timed out", ClassTimeout, 0, err)
	}

	return NewClientError(clientName, "generate", "network error calling anthropic api", ClassNetwork, 0, err)
}
