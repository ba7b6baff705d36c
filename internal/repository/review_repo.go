package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// ReviewRepository persists submission reviews.
type ReviewRepository interface {
	// CreateForSubmission inserts review and, in the same transaction,
	// applies submissionFields to the reviewed submission.
	CreateForSubmission(ctx context.Context, review *models.Review, submissionFields map[string]interface{}) error
	GetByID(ctx context.Context, id uint) (models.Review, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.Review, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository constructs a GORM-backed repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) CreateForSubmission(ctx context.Context, review *models.Review, submissionFields map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Select("id").First(&submission, review.SubmissionID).Error; err != nil {
			return err
		}

		if len(submissionFields) > 0 {
			if err := tx.Model(&submission).Omit(clause.Associations).Updates(submissionFields).Error; err != nil {
				return err
			}
		}

		return tx.Create(review).Error
	})
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return models.Review{}, err
	}
	return review, nil
}

func (r *reviewRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Select("id").First(&review, id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&review).Updates(fields).Error
	})
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
