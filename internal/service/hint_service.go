package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/models"
	"github.com/noah-isme/codecoach-api/internal/repository"
	"github.com/noah-isme/codecoach-api/pkg/ai"
)

// HintService generates and records hints for questions.
type HintService interface {
	Generate(ctx context.Context, payload dto.GenerateHintRequest) (dto.HintResponse, error)
	History(ctx context.Context, userID uint, questionID *uint, skip, limit int) ([]dto.HintResponse, error)
}

type hintService struct {
	hints     repository.HintRepository
	questions repository.QuestionRepository
	generator ai.Generator
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewHintService constructs a hint service.
func NewHintService(hints repository.HintRepository, questions repository.QuestionRepository, generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) HintService {
	return &hintService{
		hints:     hints,
		questions: questions,
		generator: generator,
		validator: validate,
		logger:    logger.With().Str("component", "hint_service").Logger(),
		now:       time.Now,
	}
}

func (s *hintService) Generate(ctx context.Context, payload dto.GenerateHintRequest) (dto.HintResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HintResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, payload.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HintResponse{}, ErrQuestionNotFound
		}
		return dto.HintResponse{}, err
	}

	text, err := s.generator.Generate(ctx, ai.HintPrompt(question.Title, question.Description, question.Difficulty))
	if err != nil {
		return dto.HintResponse{}, fmt.Errorf("generate hint: %w", err)
	}

	hint := models.HintRequest{
		UserID:       payload.UserID,
		QuestionID:   question.ID,
		HintResponse: cleanHint(text),
		RequestTime:  s.now().UTC(),
	}
	if err := s.hints.Create(ctx, &hint); err != nil {
		return dto.HintResponse{}, err
	}

	s.logger.Info().Uint("hint_id", hint.ID).Uint("user_id", hint.UserID).Uint("question_id", hint.QuestionID).Msg("hint generated")

	return dto.NewHintResponse(hint), nil
}

func (s *hintService) History(ctx context.Context, userID uint, questionID *uint, skip, limit int) ([]dto.HintResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	hints, err := s.hints.ListByUser(ctx, userID, questionID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewHintResponses(hints), nil
}

func cleanHint(text string) string {
	hint := strings.TrimSpace(text)
	for _, prefix := range []string{"Here's a hint:", "Hint:"} {
		if len(hint) >= len(prefix) && strings.EqualFold(hint[:len(prefix)], prefix) {
			hint = strings.TrimSpace(hint[len(prefix):])
		}
	}
	return hint
}
