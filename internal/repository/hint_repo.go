package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// HintRepository persists generated hints.
type HintRepository interface {
	Create(ctx context.Context, hint *models.HintRequest) error
	// ListByUser returns the user's hints newest first, optionally limited to one question.
	ListByUser(ctx context.Context, userID uint, questionID *uint, skip, limit int) ([]models.HintRequest, error)
}

type hintRepository struct {
	db *gorm.DB
}

// NewHintRepository constructs a GORM-backed repository.
func NewHintRepository(db *gorm.DB) HintRepository {
	return &hintRepository{db: db}
}

func (r *hintRepository) Create(ctx context.Context, hint *models.HintRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(hint).Error
}

func (r *hintRepository) ListByUser(ctx context.Context, userID uint, questionID *uint, skip, limit int) ([]models.HintRequest, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if questionID != nil {
		query = query.Where("question_id = ?", *questionID)
	}

	var hints []models.HintRequest
	if err := query.
		Order("request_time DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&hints).Error; err != nil {
		return nil, err
	}
	return hints, nil
}
