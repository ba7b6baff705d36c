package ai

import (
	"context"
	"sync"
)

// MockReply is a canned answer for MockGenerator.
type MockReply struct {
	Text string
	Err  error
}

// MockGenerator is a deterministic Generator for tests. Replies are returned
// in FIFO order; once the queue is drained the Fallback reply is used.
type MockGenerator struct {
	mu       sync.Mutex
	replies  []MockReply
	Fallback MockReply
	Calls    []Prompt
}

// NewMockGenerator creates a MockGenerator with the given canned text replies.
func NewMockGenerator(replies ...string) *MockGenerator {
	m := &MockGenerator{}
	for _, r := range replies {
		m.replies = append(m.replies, MockReply{Text: r})
	}
	return m
}

// Enqueue appends a canned reply.
func (m *MockGenerator) Enqueue(reply MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
}

// Generate records the prompt and returns the next canned reply.
func (m *MockGenerator) Generate(_ context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, prompt)

	reply := m.Fallback
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	if reply.Err != nil {
		return "", reply.Err
	}
	if reply.Text == "" {
		return "", ErrEmptyResponse
	}
	return reply.Text, nil
}

// Model returns "mock".
func (m *MockGenerator) Model() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent prompt, if any.
func (m *MockGenerator) LastCall() (Prompt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Prompt{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
