package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicConfig configures the Anthropic generator.
type AnthropicConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// AnthropicGenerator implements Generator using the Anthropic messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
	cfg    AnthropicConfig
}

// NewAnthropicGenerator constructs a new generator.
func NewAnthropicGenerator(cfg AnthropicConfig) (*AnthropicGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicGenerator{client: &client, cfg: cfg}, nil
}

// Model returns the configured model id.
func (g *AnthropicGenerator) Model() string {
	return g.cfg.Model
}

// Generate sends the prompt through the messages API and joins the text blocks.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return instrument(ctx, "anthropic", g.cfg.Model, func(ctx context.Context) (string, error) {
		messages := make([]anthropic.MessageParam, len(prompt.Messages))
		for i, m := range prompt.Messages {
			role := anthropic.MessageParamRoleUser
			if m.Role == RoleAssistant {
				role = anthropic.MessageParamRoleAssistant
			}
			messages[i] = anthropic.MessageParam{
				Role:    role,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
			}
		}

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(g.cfg.Model),
			MaxTokens: int64(firstPositiveInt(prompt.MaxTokens, g.cfg.MaxTokens)),
			Messages:  messages,
		}
		if prompt.System != "" {
			params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
		}
		if temperature := firstPositive(prompt.Temperature, g.cfg.Temperature); temperature > 0 {
			params.Temperature = anthropic.Float(temperature)
		}

		msg, err := g.client.Messages.New(ctx, params)
		if err != nil {
			return "", mapAnthropicError(err)
		}

		var builder strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				builder.WriteString(block.Text)
			}
		}
		return strings.TrimSpace(builder.String()), nil
	})
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: anthropic: %v", ErrUnavailable, err)
}
