package dto

import (
	"time"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// StartThreadRequest opens a discussion thread with its first message.
// An empty title is generated from the content.
type StartThreadRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	UserID     uint   `json:"user_id" validate:"required"`
	Title      string `json:"title" validate:"omitempty,max=255"`
	Content    string `json:"content" validate:"required"`
}

// CreateDiscussionMessageRequest posts into an existing thread.
type CreateDiscussionMessageRequest struct {
	ThreadID uint   `json:"thread_id" validate:"required"`
	UserID   uint   `json:"user_id" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// ThreadResponse represents a discussion thread.
type ThreadResponse struct {
	ID         uint      `json:"id"`
	QuestionID uint      `json:"question_id"`
	UserID     uint      `json:"user_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DiscussionMessageResponse represents a message within a thread.
type DiscussionMessageResponse struct {
	ID        uint      `json:"id"`
	ThreadID  uint      `json:"thread_id"`
	UserID    uint      `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// StartThreadResponse is returned after a thread is opened.
type StartThreadResponse struct {
	Thread  ThreadResponse            `json:"thread"`
	Message DiscussionMessageResponse `json:"message"`
}

// NewThreadResponse converts a DiscussionThread model.
func NewThreadResponse(t models.DiscussionThread) ThreadResponse {
	return ThreadResponse{
		ID:         t.ID,
		QuestionID: t.QuestionID,
		UserID:     t.UserID,
		Title:      t.Title,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// NewThreadResponses converts a slice of threads.
func NewThreadResponses(items []models.DiscussionThread) []ThreadResponse {
	out := make([]ThreadResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewThreadResponse(item))
	}
	return out
}

// NewDiscussionMessageResponse converts a DiscussionMessage model.
func NewDiscussionMessageResponse(m models.DiscussionMessage) DiscussionMessageResponse {
	return DiscussionMessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// NewDiscussionMessageResponses converts a slice of messages.
func NewDiscussionMessageResponses(items []models.DiscussionMessage) []DiscussionMessageResponse {
	out := make([]DiscussionMessageResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewDiscussionMessageResponse(item))
	}
	return out
}
