package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// QuestionChanges describes a partial question update. Nil collections are
// left untouched; non-nil ones replace the stored rows.
type QuestionChanges struct {
	Fields      map[string]interface{}
	Examples    *[]models.QuestionExample
	Constraints *[]models.QuestionConstraint
	TestCases   *[]models.QuestionTestCase
}

// QuestionRepository persists questions and their owned collections.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (models.Question, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, skip, limit int) ([]models.Question, int64, error)
	Update(ctx context.Context, id uint, changes QuestionChanges) error
	Delete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository constructs a GORM-backed repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(question).Error
	})
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.withChildren(r.db.WithContext(ctx)).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (r *questionRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *questionRepository) List(ctx context.Context, skip, limit int) ([]models.Question, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []models.Question
	if err := r.withChildren(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (r *questionRepository) Update(ctx context.Context, id uint, changes QuestionChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.Select("id").First(&question, id).Error; err != nil {
			return err
		}

		if len(changes.Fields) > 0 {
			if err := tx.Model(&question).Omit(clause.Associations).Updates(changes.Fields).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&question).UpdateColumn("updated_at", tx.NowFunc()).Error; err != nil {
			return err
		}

		if changes.Examples != nil {
			if err := replaceChildren(tx, id, *changes.Examples); err != nil {
				return err
			}
		}
		if changes.Constraints != nil {
			if err := replaceChildren(tx, id, *changes.Constraints); err != nil {
				return err
			}
		}
		if changes.TestCases != nil {
			if err := replaceChildren(tx, id, *changes.TestCases); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the question and every row owned by it, directly or
// through its submissions and discussion threads.
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.Select("id").First(&question, id).Error; err != nil {
			return err
		}

		submissions := tx.Model(&models.Submission{}).Select("id").Where("question_id = ?", id)
		if err := tx.Where("submission_id IN (?)", submissions).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		threads := tx.Model(&models.DiscussionThread{}).Select("id").Where("question_id = ?", id)
		if err := tx.Where("thread_id IN (?)", threads).Delete(&models.DiscussionMessage{}).Error; err != nil {
			return err
		}

		for _, owned := range []interface{}{
			&models.Submission{},
			&models.DiscussionThread{},
			&models.HintRequest{},
			&models.QuestionExample{},
			&models.QuestionConstraint{},
			&models.QuestionTestCase{},
		} {
			if err := tx.Where("question_id = ?", id).Delete(owned).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Question{}, id).Error
	})
}

func (r *questionRepository) withChildren(db *gorm.DB) *gorm.DB {
	ordered := func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}
	return db.
		Preload("Examples", ordered).
		Preload("Constraints", ordered).
		Preload("TestCases", ordered)
}

type questionChild[T any] interface {
	*T
	SetQuestionID(id uint)
}

// replaceChildren swaps every row of one child collection for rows, owned by questionID.
func replaceChildren[T any, P questionChild[T]](tx *gorm.DB, questionID uint, rows []T) error {
	if err := tx.Where("question_id = ?", questionID).Delete(P(new(T))).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		P(&rows[i]).SetQuestionID(questionID)
	}
	return tx.Create(&rows).Error
}
