package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// OpenAIGenerator implements Generator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAIGenerator builds a new generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
	}, nil
}

// Model returns the configured model id.
func (g *OpenAIGenerator) Model() string {
	return g.cfg.Model
}

// Generate sends the prompt as a chat completion request.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return instrument(ctx, "openai", g.cfg.Model, func(ctx context.Context) (string, error) {
		messages := make([]openai.ChatCompletionMessage, 0, len(prompt.Messages)+1)
		if prompt.System != "" {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt.System,
			})
		}
		for _, m := range prompt.Messages {
			role := openai.ChatMessageRoleUser
			if m.Role == RoleAssistant {
				role = openai.ChatMessageRoleAssistant
			}
			messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
		}

		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       g.cfg.Model,
			Messages:    messages,
			MaxTokens:   firstPositiveInt(prompt.MaxTokens, g.cfg.MaxTokens),
			Temperature: float32(firstPositive(prompt.Temperature, g.cfg.Temperature)),
		})
		if err != nil {
			return "", mapOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}

		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: openai: %v", ErrUnavailable, err)
}
