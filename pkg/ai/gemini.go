package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini generator.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// GeminiGenerator implements Generator on top of the Google Gen AI SDK.
type GeminiGenerator struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGeminiGenerator creates a Gemini backed generator.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, cfg: cfg}, nil
}

// Model returns the configured model id.
func (g *GeminiGenerator) Model() string {
	return g.cfg.Model
}

// Generate sends the prompt to Gemini and returns the response text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return instrument(ctx, "gemini", g.cfg.Model, func(ctx context.Context) (string, error) {
		config := &genai.GenerateContentConfig{}

		temperature := firstPositive(prompt.Temperature, g.cfg.Temperature)
		if temperature > 0 {
			t := float32(temperature)
			config.Temperature = &t
		}
		if maxTokens := firstPositiveInt(prompt.MaxTokens, g.cfg.MaxTokens); maxTokens > 0 {
			config.MaxOutputTokens = int32(maxTokens)
		}
		if prompt.System != "" {
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: prompt.System}},
			}
		}

		result, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, geminiContents(prompt.Messages), config)
		if err != nil {
			return "", mapGeminiError(err)
		}
		return result.Text(), nil
	})
}

func geminiContents(messages []Message) []*genai.Content {
	out := make([]*genai.Content, len(messages))
	for i, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: gemini: %v", ErrUnavailable, err)
}
