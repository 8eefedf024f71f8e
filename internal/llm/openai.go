package llm

import (
	"context"
	"math/rand"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIProvider talks to an OpenAI-compatible chat completion endpoint.
// Failures are not retried by default: the pipeline degrades to its fallback
// output instead of re-billing a paid completion on a transient error.
// Callers outside the request path can opt in with WithMaxRetries.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	logger     *zap.Logger
}

// OpenAIConfig configures an OpenAIProvider.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithProviderLogger sets a logger for retry and failure events.
func WithProviderLogger(l *zap.Logger) OpenAIOption {
	return func(p *OpenAIProvider) { p.logger = l }
}

// WithMaxRetries enables retries with exponential backoff for transient
// failures; n is the number of additional attempts after the first.
func WithMaxRetries(n int) OpenAIOption {
	return func(p *OpenAIProvider) { p.maxRetries = n }
}

// NewOpenAIProvider creates a provider against the configured endpoint.
// The API key is read from the environment; local servers accept any value.
func NewOpenAIProvider(cfg OpenAIConfig, opts ...OpenAIOption) *OpenAIProvider {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		key = "none"
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	p := &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete sends prompt as a single user message and returns the completion
// text. A single attempt is made unless retries were enabled.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			backoff += time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
			if p.logger != nil {
				p.logger.Warn("llm request failed, retrying",
					zap.Int("attempt", attempt),
					zap.Duration("backoff", backoff),
					zap.Error(lastErr))
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		text, err := p.complete(ctx, prompt, temperature, maxTokens)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (p *OpenAIProvider) complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoResponse
	}
	return resp.Choices[0].Message.Content, nil
}
