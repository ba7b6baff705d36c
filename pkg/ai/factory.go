package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config selects and configures a provider.
type Config struct {
	Provider        string
	Model           string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaURL       string
}

// New builds the Generator named by cfg.Provider. Gemini is the default.
func New(ctx context.Context, cfg Config) (Generator, error) {
	var (
		gen Generator
		err error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		gen, err = NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "openai":
		gen, err = NewOpenAIGenerator(OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "anthropic":
		gen, err = NewAnthropicGenerator(AnthropicConfig{
			APIKey:      cfg.AnthropicAPIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "ollama":
		gen, err = NewOllamaGenerator(OllamaConfig{
			ServerURL:   cfg.OllamaURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithTimeout(gen, cfg.Timeout), nil
}

// WithTimeout bounds every Generate call of gen by d. A non-positive d
// returns gen unchanged.
func WithTimeout(gen Generator, d time.Duration) Generator {
	if d <= 0 {
		return gen
	}
	return &timeoutGenerator{next: gen, timeout: d}
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

func (t *timeoutGenerator) Model() string {
	return t.next.Model()
}

func (t *timeoutGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, prompt)
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstPositiveInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
