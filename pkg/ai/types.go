package ai

import (
	"context"
	"errors"
)

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles understood by every provider.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Prompt is the provider-neutral input of a text generation call.
type Prompt struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// SinglePrompt builds a prompt with an optional system instruction and one user turn.
func SinglePrompt(system, user string) Prompt {
	return Prompt{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Generator is a text generation backend. The returned text carries no
// structural guarantee; callers parse it with DecodeObject or similar.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Model() string
}

var (
	// ErrEmptyResponse is returned when a provider answers without any text.
	ErrEmptyResponse = errors.New("ai: empty response")
	// ErrRateLimited is wrapped when the provider rejected the call with 429.
	ErrRateLimited = errors.New("ai: rate limited")
	// ErrUnavailable is wrapped for transport failures and provider side errors.
	ErrUnavailable = errors.New("ai: provider unavailable")
)
