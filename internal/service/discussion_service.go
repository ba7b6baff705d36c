package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/models"
	"github.com/noah-isme/codecoach-api/internal/repository"
	"github.com/noah-isme/codecoach-api/pkg/ai"
)

// DiscussionService exposes question discussion use-cases.
type DiscussionService interface {
	StartThread(ctx context.Context, payload dto.StartThreadRequest) (dto.StartThreadResponse, error)
	PostMessage(ctx context.Context, payload dto.CreateDiscussionMessageRequest) (dto.DiscussionMessageResponse, error)
	ListQuestionThreads(ctx context.Context, questionID uint, skip, limit int) ([]dto.ThreadResponse, error)
	ListUserThreads(ctx context.Context, userID uint, skip, limit int) ([]dto.ThreadResponse, error)
	ThreadMessages(ctx context.Context, threadID uint, skip, limit int) ([]dto.DiscussionMessageResponse, error)
	QuestionMessages(ctx context.Context, questionID uint, skip, limit int) ([]dto.DiscussionMessageResponse, error)
}

type discussionService struct {
	repo      repository.DiscussionRepository
	questions repository.QuestionRepository
	generator ai.Generator
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	titles    *bluemonday.Policy
	now       func() time.Time
}

// NewDiscussionService constructs a discussion service.
func NewDiscussionService(repo repository.DiscussionRepository, questions repository.QuestionRepository, generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) DiscussionService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &discussionService{
		repo:      repo,
		questions: questions,
		generator: generator,
		validator: validate,
		logger:    logger.With().Str("component", "discussion_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/codecoach-api/internal/service/discussion"),
		sanitizer: policy,
		titles:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *discussionService) StartThread(ctx context.Context, payload dto.StartThreadRequest) (dto.StartThreadResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StartThreadResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.StartThreadResponse{}, ErrEmptyContent
	}

	exists, err := s.questions.Exists(ctx, payload.QuestionID)
	if err != nil {
		return dto.StartThreadResponse{}, err
	}
	if !exists {
		return dto.StartThreadResponse{}, ErrQuestionNotFound
	}

	ctx, span := s.tracer.Start(ctx, "discussion.start", trace.WithAttributes(
		attribute.Int("discussion.question_id", int(payload.QuestionID)),
		attribute.Int("discussion.user_id", int(payload.UserID)),
	))
	defer span.End()

	title := strings.TrimSpace(html.UnescapeString(s.titles.Sanitize(payload.Title)))
	if title == "" {
		title = generateTitle(ctx, s.generator, s.titles, payload.Content, s.logger)
	}

	now := s.now().UTC()
	thread := models.DiscussionThread{
		QuestionID: payload.QuestionID,
		UserID:     payload.UserID,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	first := models.DiscussionMessage{
		UserID:    payload.UserID,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.repo.CreateThread(ctx, &thread, &first); err != nil {
		span.RecordError(err)
		return dto.StartThreadResponse{}, err
	}

	s.logger.Info().Uint("thread_id", thread.ID).Uint("question_id", thread.QuestionID).Msg("discussion thread started")

	return dto.StartThreadResponse{
		Thread:  dto.NewThreadResponse(thread),
		Message: dto.NewDiscussionMessageResponse(first),
	}, nil
}

func (s *discussionService) PostMessage(ctx context.Context, payload dto.CreateDiscussionMessageRequest) (dto.DiscussionMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DiscussionMessageResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.DiscussionMessageResponse{}, ErrEmptyContent
	}

	message := models.DiscussionMessage{
		ThreadID:  payload.ThreadID,
		UserID:    payload.UserID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateMessage(ctx, &message); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DiscussionMessageResponse{}, ErrThreadNotFound
		}
		return dto.DiscussionMessageResponse{}, err
	}

	s.logger.Debug().Uint("thread_id", message.ThreadID).Uint("message_id", message.ID).Msg("discussion message posted")

	return dto.NewDiscussionMessageResponse(message), nil
}

func (s *discussionService) ListQuestionThreads(ctx context.Context, questionID uint, skip, limit int) ([]dto.ThreadResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	threads, err := s.repo.ListThreadsByQuestion(ctx, questionID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewThreadResponses(threads), nil
}

func (s *discussionService) ListUserThreads(ctx context.Context, userID uint, skip, limit int) ([]dto.ThreadResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	threads, err := s.repo.ListThreadsByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewThreadResponses(threads), nil
}

func (s *discussionService) ThreadMessages(ctx context.Context, threadID uint, skip, limit int) ([]dto.DiscussionMessageResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetThread(ctx, threadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, threadID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewDiscussionMessageResponses(messages), nil
}

func (s *discussionService) QuestionMessages(ctx context.Context, questionID uint, skip, limit int) ([]dto.DiscussionMessageResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListQuestionMessages(ctx, questionID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewDiscussionMessageResponses(messages), nil
}
