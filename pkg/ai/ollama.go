package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaConfig configures a locally hosted model served by Ollama.
type OllamaConfig struct {
	ServerURL   string
	Model       string
	Temperature float64
	MaxTokens   int
}

// OllamaGenerator implements Generator with langchaingo's Ollama client.
type OllamaGenerator struct {
	llm *ollama.LLM
	cfg OllamaConfig
}

// NewOllamaGenerator creates the generator. No network call is made here.
func NewOllamaGenerator(cfg OllamaConfig) (*OllamaGenerator, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("ollama server url is required")
	}
	if cfg.Model == "" {
		cfg.Model = "qwen3:0.6b"
	}

	llm, err := ollama.New(ollama.WithServerURL(cfg.ServerURL), ollama.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaGenerator{llm: llm, cfg: cfg}, nil
}

// Model returns the configured model id.
func (g *OllamaGenerator) Model() string {
	return g.cfg.Model
}

// Generate runs the conversation through the local model.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return instrument(ctx, "ollama", g.cfg.Model, func(ctx context.Context) (string, error) {
		content := make([]llms.MessageContent, 0, len(prompt.Messages)+1)
		if prompt.System != "" {
			content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, prompt.System))
		}
		for _, m := range prompt.Messages {
			kind := llms.ChatMessageTypeHuman
			if m.Role == RoleAssistant {
				kind = llms.ChatMessageTypeAI
			}
			content = append(content, llms.TextParts(kind, m.Content))
		}

		opts := []llms.CallOption{}
		if temperature := firstPositive(prompt.Temperature, g.cfg.Temperature); temperature > 0 {
			opts = append(opts, llms.WithTemperature(temperature))
		}
		if maxTokens := firstPositiveInt(prompt.MaxTokens, g.cfg.MaxTokens); maxTokens > 0 {
			opts = append(opts, llms.WithMaxTokens(maxTokens))
		}

		resp, err := g.llm.GenerateContent(ctx, content, opts...)
		if err != nil {
			return "", fmt.Errorf("%w: ollama: %v", ErrUnavailable, err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}

		return stripThinking(resp.Choices[0].Content), nil
	})
}

// stripThinking drops a leading <think>...</think> block emitted by reasoning models.
func stripThinking(text string) string {
	if idx := strings.Index(text, "</think>"); idx >= 0 && strings.HasPrefix(strings.TrimSpace(text), "<think>") {
		text = text[idx+len("</think>"):]
	}
	return strings.TrimSpace(text)
}
