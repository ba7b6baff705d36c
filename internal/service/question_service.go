package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/models"
	"github.com/noah-isme/codecoach-api/internal/repository"
)

// QuestionService exposes question catalogue use-cases.
type QuestionService interface {
	Create(ctx context.Context, payload dto.CreateQuestionRequest) (dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	List(ctx context.Context, skip, limit int) (dto.QuestionListResponse, error)
	Update(ctx context.Context, id uint, payload dto.UpdateQuestionRequest) (dto.QuestionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type questionService struct {
	repo      repository.QuestionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuestionService constructs a question service.
func NewQuestionService(repo repository.QuestionRepository, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) Create(ctx context.Context, payload dto.CreateQuestionRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := models.Question{
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		Difficulty:  payload.DifficultyLevel,
		Examples:    examplesFromPayload(payload.Examples),
		Constraints: constraintsFromPayload(payload.Constraints),
		TestCases:   testCasesFromPayload(payload.TestCases),
	}

	if err := s.repo.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.logger.Info().Uint("question_id", question.ID).Str("difficulty", question.Difficulty).Msg("question created")

	return s.Get(ctx, question.ID)
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *questionService) List(ctx context.Context, skip, limit int) (dto.QuestionListResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return dto.QuestionListResponse{}, err
	}

	questions, total, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return dto.QuestionListResponse{}, err
	}

	return dto.NewQuestionListResponse(questions, total), nil
}

func (s *questionService) Update(ctx context.Context, id uint, payload dto.UpdateQuestionRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	changes := repository.QuestionChanges{Fields: map[string]interface{}{}}
	if payload.Title != nil {
		changes.Fields["title"] = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		changes.Fields["description"] = *payload.Description
	}
	if payload.DifficultyLevel != nil {
		changes.Fields["difficulty"] = *payload.DifficultyLevel
	}
	if payload.Examples != nil {
		examples := examplesFromPayload(*payload.Examples)
		changes.Examples = &examples
	}
	if payload.Constraints != nil {
		constraints := constraintsFromPayload(*payload.Constraints)
		changes.Constraints = &constraints
	}
	if payload.TestCases != nil {
		testCases := testCasesFromPayload(*payload.TestCases)
		changes.TestCases = &testCases
	}

	if err := s.repo.Update(ctx, id, changes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	s.logger.Info().Uint("question_id", id).Msg("question deleted")
	return nil
}

func examplesFromPayload(items []dto.ExamplePayload) []models.QuestionExample {
	out := make([]models.QuestionExample, 0, len(items))
	for i, item := range items {
		out = append(out, models.QuestionExample{
			Position: i,
			Input:    datatypes.JSON(item.Input),
			Output:   datatypes.JSON(item.Output),
		})
	}
	return out
}

func constraintsFromPayload(items []dto.ConstraintPayload) []models.QuestionConstraint {
	out := make([]models.QuestionConstraint, 0, len(items))
	for i, item := range items {
		out = append(out, models.QuestionConstraint{Position: i, Description: strings.TrimSpace(item.Description)})
	}
	return out
}

func testCasesFromPayload(items []dto.TestCasePayload) []models.QuestionTestCase {
	out := make([]models.QuestionTestCase, 0, len(items))
	for i, item := range items {
		out = append(out, models.QuestionTestCase{
			Position:       i,
			Input:          datatypes.JSON(item.Input),
			ExpectedOutput: datatypes.JSON(item.ExpectedOutput),
		})
	}
	return out
}
