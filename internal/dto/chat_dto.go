package dto

import (
	"time"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// StartChatRequest opens a new chat session with a first message.
type StartChatRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ChatMessageRequest posts a message into an existing session.
type ChatMessageRequest struct {
	SessionID uint   `json:"session_id" validate:"required"`
	UserID    uint   `json:"user_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=user"`
}

// ChatMessageResponse represents a stored chat turn.
type ChatMessageResponse struct {
	ID        uint      `json:"id"`
	SessionID uint      `json:"session_id"`
	UserID    uint      `json:"user_id"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// StartChatResponse is returned after a session is opened.
type StartChatResponse struct {
	SessionID    uint                `json:"session_id"`
	SessionTitle string              `json:"session_title"`
	Message      ChatMessageResponse `json:"message"`
}

// ChatSessionResponse represents a chat session.
type ChatSessionResponse struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	SessionTitle string    `json:"session_title"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`
}

// NewChatMessageResponse converts a ChatMessage model.
func NewChatMessageResponse(m models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		Role:      m.Role,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

// NewChatMessageResponses converts a slice of chat messages.
func NewChatMessageResponses(items []models.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewChatMessageResponse(item))
	}
	return out
}

// NewChatSessionResponses converts a slice of sessions.
func NewChatSessionResponses(items []models.ChatSession) []ChatSessionResponse {
	out := make([]ChatSessionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, ChatSessionResponse{
			ID:           s.ID,
			UserID:       s.UserID,
			SessionTitle: s.SessionTitle,
			CreatedAt:    s.CreatedAt,
			LastActive:   s.LastActive,
		})
	}
	return out
}
