package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// ChatRepository persists assistant chat sessions and their messages.
type ChatRepository interface {
	// CreateSession stores session together with its opening messages in one
	// transaction.
	CreateSession(ctx context.Context, session *models.ChatSession, messages ...*models.ChatMessage) error
	GetSession(ctx context.Context, id uint) (models.ChatSession, error)
	ListSessions(ctx context.Context, userID uint, skip, limit int) ([]models.ChatSession, error)
	// AppendMessage stores message and refreshes the session's last_active.
	// It returns gorm.ErrRecordNotFound when the session does not exist.
	AppendMessage(ctx context.Context, message *models.ChatMessage) error
	// ListMessages returns messages oldest first. A non-positive limit returns all.
	ListMessages(ctx context.Context, sessionID uint, skip, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a GORM-backed chat repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateSession(ctx context.Context, session *models.ChatSession, messages ...*models.ChatMessage) error {
	if session.LastActive.IsZero() {
		session.LastActive = time.Now().UTC()
	}
	for _, message := range messages {
		if message.CreatedAt.After(session.LastActive) {
			session.LastActive = message.CreatedAt
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for _, message := range messages {
			message.SessionID = session.ID
			if message.CreatedAt.IsZero() {
				message.CreatedAt = session.LastActive
			}
			if err := tx.Create(message).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *chatRepository) GetSession(ctx context.Context, id uint) (models.ChatSession, error) {
	var session models.ChatSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.ChatSession{}, err
	}
	return session, nil
}

func (r *chatRepository) ListSessions(ctx context.Context, userID uint, skip, limit int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_active DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.ChatSession
		if err := tx.Select("id").First(&session, message.SessionID).Error; err != nil {
			return err
		}

		if message.CreatedAt.IsZero() {
			message.CreatedAt = time.Now().UTC()
		}
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&session).UpdateColumn("last_active", message.CreatedAt).Error
	})
}

func (r *chatRepository) ListMessages(ctx context.Context, sessionID uint, skip, limit int) ([]models.ChatMessage, error) {
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC")
	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
