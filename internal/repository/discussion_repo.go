package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// DiscussionRepository persists question discussion threads and messages.
type DiscussionRepository interface {
	CreateThread(ctx context.Context, thread *models.DiscussionThread, first *models.DiscussionMessage) error
	GetThread(ctx context.Context, id uint) (models.DiscussionThread, error)
	ListThreadsByQuestion(ctx context.Context, questionID uint, skip, limit int) ([]models.DiscussionThread, error)
	ListThreadsByUser(ctx context.Context, userID uint, skip, limit int) ([]models.DiscussionThread, error)
	// CreateMessage returns gorm.ErrRecordNotFound without inserting when the
	// thread does not exist.
	CreateMessage(ctx context.Context, message *models.DiscussionMessage) error
	ListMessages(ctx context.Context, threadID uint, skip, limit int) ([]models.DiscussionMessage, error)
	ListQuestionMessages(ctx context.Context, questionID uint, skip, limit int) ([]models.DiscussionMessage, error)
}

type discussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository constructs a GORM-backed repository.
func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) CreateThread(ctx context.Context, thread *models.DiscussionThread, first *models.DiscussionMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(thread).Error; err != nil {
			return err
		}
		if first == nil {
			return nil
		}
		first.ThreadID = thread.ID
		return tx.Create(first).Error
	})
}

func (r *discussionRepository) GetThread(ctx context.Context, id uint) (models.DiscussionThread, error) {
	var thread models.DiscussionThread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		return models.DiscussionThread{}, err
	}
	return thread, nil
}

func (r *discussionRepository) ListThreadsByQuestion(ctx context.Context, questionID uint, skip, limit int) ([]models.DiscussionThread, error) {
	return r.listThreads(ctx, "question_id = ?", questionID, skip, limit)
}

func (r *discussionRepository) ListThreadsByUser(ctx context.Context, userID uint, skip, limit int) ([]models.DiscussionThread, error) {
	return r.listThreads(ctx, "user_id = ?", userID, skip, limit)
}

func (r *discussionRepository) listThreads(ctx context.Context, where string, arg uint, skip, limit int) ([]models.DiscussionThread, error) {
	var threads []models.DiscussionThread
	if err := r.db.WithContext(ctx).
		Where(where, arg).
		Order("updated_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *discussionRepository) CreateMessage(ctx context.Context, message *models.DiscussionMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread models.DiscussionThread
		if err := tx.Select("id").First(&thread, message.ThreadID).Error; err != nil {
			return err
		}

		if message.CreatedAt.IsZero() {
			message.CreatedAt = time.Now().UTC()
		}
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&thread).UpdateColumn("updated_at", message.CreatedAt).Error
	})
}

func (r *discussionRepository) ListMessages(ctx context.Context, threadID uint, skip, limit int) ([]models.DiscussionMessage, error) {
	var messages []models.DiscussionMessage
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *discussionRepository) ListQuestionMessages(ctx context.Context, questionID uint, skip, limit int) ([]models.DiscussionMessage, error) {
	threads := r.db.WithContext(ctx).Model(&models.DiscussionThread{}).Select("id").Where("question_id = ?", questionID)

	var messages []models.DiscussionMessage
	if err := r.db.WithContext(ctx).
		Where("thread_id IN (?)", threads).
		Order("created_at ASC, id ASC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
