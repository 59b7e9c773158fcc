package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/draftflow/draftflow-go/internal/reliability"
)

// ModelConfig configures the chat model backend. Any OpenAI-compatible
// endpoint works, which covers most hosted and local model servers.
type ModelConfig struct {
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	APIKey      string        `json:"api_key" yaml:"api_key"`
	Model       string        `json:"model" yaml:"model"`
	Temperature *float32      `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	Retries     int           `json:"retries" yaml:"retries"`
}

// ChatClient is a Client backed by an eino chat model.
type ChatClient struct {
	chatModel model.BaseChatModel
	policy    reliability.RetryPolicy
}

// ChatOption configures a ChatClient.
type ChatOption func(*ChatClient)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy reliability.RetryPolicy) ChatOption {
	return func(c *ChatClient) { c.policy = policy }
}

// NewChatClient builds a client for an OpenAI-compatible backend.
func NewChatClient(ctx context.Context, cfg ModelConfig, opts ...ChatOption) (*ChatClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("completion: model name is required")
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 16 * 1024
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 600 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: create chat model: %w", err)
	}

	client := &ChatClient{
		chatModel: chatModel,
		policy:    reliability.NewExponentialBackoff(time.Second, 30*time.Second, 2.0, cfg.Retries),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewChatClientFromModel wraps an existing eino chat model.
func NewChatClientFromModel(chatModel model.BaseChatModel, opts ...ChatOption) *ChatClient {
	client := &ChatClient{chatModel: chatModel, policy: reliability.NoRetry{}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Complete implements Client.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	var content string
	err := reliability.Retry(ctx, c.policy, func(ctx context.Context) error {
		out, err := c.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
		if err != nil {
			return err
		}
		content = out.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return content, nil
}
