package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// SubmissionRepository persists code submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByUser(ctx context.Context, userID uint, skip, limit int) ([]models.Submission, error)
	ListByQuestion(ctx context.Context, questionID uint, skip, limit int) ([]models.Submission, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(submission).Error
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint, skip, limit int) ([]models.Submission, error) {
	return r.list(ctx, "user_id = ?", userID, skip, limit)
}

func (r *submissionRepository) ListByQuestion(ctx context.Context, questionID uint, skip, limit int) ([]models.Submission, error) {
	return r.list(ctx, "question_id = ?", questionID, skip, limit)
}

func (r *submissionRepository) list(ctx context.Context, where string, arg uint, skip, limit int) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Select("id").First(&submission, id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&submission).Omit(clause.Associations).Updates(fields).Error
	})
}
