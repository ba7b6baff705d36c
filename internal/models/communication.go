package models

import "time"

// Chat message roles.
const (
	ChatRoleUser = "user"
	ChatRoleAI   = "ai"
)

// ChatSession groups the messages of one assistant conversation.
type ChatSession struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"not null;index" json:"user_id"`
	SessionTitle string        `gorm:"size:255" json:"session_title"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActive   time.Time     `gorm:"index" json:"last_active"`
	Messages     []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ChatMessage is a single turn inside a chat session.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// DiscussionThread is a question-scoped discussion topic.
type DiscussionThread struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	QuestionID uint                `gorm:"not null;index" json:"question_id"`
	UserID     uint                `gorm:"not null;index" json:"user_id"`
	Title      string              `gorm:"size:255;not null" json:"title"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `gorm:"index" json:"updated_at"`
	Question   Question            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Messages   []DiscussionMessage `gorm:"foreignKey:ThreadID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// DiscussionMessage is a post inside a discussion thread.
type DiscussionMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"not null;index" json:"thread_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
