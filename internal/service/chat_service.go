package service

import (
	"context"
	"errors"
	"fmt"
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

// ChatService runs coding assistant conversations.
type ChatService interface {
	Start(ctx context.Context, payload dto.StartChatRequest) (dto.StartChatResponse, error)
	SendMessage(ctx context.Context, payload dto.ChatMessageRequest) (dto.ChatMessageResponse, error)
	ListSessions(ctx context.Context, userID uint, skip, limit int) ([]dto.ChatSessionResponse, error)
	History(ctx context.Context, sessionID uint, skip, limit int) ([]dto.ChatMessageResponse, error)
}

type chatService struct {
	repo      repository.ChatRepository
	generator ai.Generator
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	titles    *bluemonday.Policy
	now       func() time.Time
}

// NewChatService constructs a chat service.
func NewChatService(repo repository.ChatRepository, generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) ChatService {
	return &chatService{
		repo:      repo,
		generator: generator,
		validator: validate,
		logger:    logger.With().Str("component", "chat_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/codecoach-api/internal/service/chat"),
		titles:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *chatService) Start(ctx context.Context, payload dto.StartChatRequest) (dto.StartChatResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StartChatResponse{}, err
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		return dto.StartChatResponse{}, ErrEmptyContent
	}

	ctx, span := s.tracer.Start(ctx, "chat.start", trace.WithAttributes(attribute.Int("chat.user_id", int(payload.UserID))))
	defer span.End()

	title := generateTitle(ctx, s.generator, s.titles, message, s.logger)

	userMessage := models.ChatMessage{
		UserID:    payload.UserID,
		Role:      models.ChatRoleUser,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	// Nothing is stored until the collaborator has answered.
	reply, err := s.answer(ctx, []models.ChatMessage{userMessage})
	if err != nil {
		span.RecordError(err)
		return dto.StartChatResponse{}, err
	}
	reply.UserID = payload.UserID
	reply.CreatedAt = after(s.now().UTC(), userMessage.CreatedAt)

	session := models.ChatSession{
		UserID:       payload.UserID,
		SessionTitle: title,
		LastActive:   reply.CreatedAt,
	}
	if err := s.repo.CreateSession(ctx, &session, &userMessage, &reply); err != nil {
		span.RecordError(err)
		return dto.StartChatResponse{}, err
	}

	s.logger.Info().Uint("session_id", session.ID).Uint("user_id", session.UserID).Msg("chat session started")

	return dto.StartChatResponse{
		SessionID:    session.ID,
		SessionTitle: session.SessionTitle,
		Message:      dto.NewChatMessageResponse(reply),
	}, nil
}

func (s *chatService) SendMessage(ctx context.Context, payload dto.ChatMessageRequest) (dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChatMessageResponse{}, err
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		return dto.ChatMessageResponse{}, ErrEmptyContent
	}

	ctx, span := s.tracer.Start(ctx, "chat.message", trace.WithAttributes(attribute.Int("chat.session_id", int(payload.SessionID))))
	defer span.End()

	if _, err := s.repo.GetSession(ctx, payload.SessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChatMessageResponse{}, ErrChatSessionNotFound
		}
		return dto.ChatMessageResponse{}, err
	}

	reply, err := s.exchange(ctx, payload.SessionID, payload.UserID, message)
	if err != nil {
		span.RecordError(err)
		return dto.ChatMessageResponse{}, err
	}

	return dto.NewChatMessageResponse(reply), nil
}

// exchange stores the user's message, asks the collaborator to answer the
// whole conversation and stores the reply.
func (s *chatService) exchange(ctx context.Context, sessionID, userID uint, message string) (models.ChatMessage, error) {
	userMessage := models.ChatMessage{
		SessionID: sessionID,
		UserID:    userID,
		Role:      models.ChatRoleUser,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, &userMessage); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ChatMessage{}, ErrChatSessionNotFound
		}
		return models.ChatMessage{}, err
	}

	history, err := s.repo.ListMessages(ctx, sessionID, 0, 0)
	if err != nil {
		return models.ChatMessage{}, err
	}

	reply, err := s.answer(ctx, history)
	if err != nil {
		return models.ChatMessage{}, err
	}
	reply.SessionID = sessionID
	reply.UserID = userID
	reply.CreatedAt = after(s.now().UTC(), userMessage.CreatedAt)
	if err := s.repo.AppendMessage(ctx, &reply); err != nil {
		return models.ChatMessage{}, err
	}

	return reply, nil
}

// answer asks the collaborator to continue history and returns the unsaved reply.
func (s *chatService) answer(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error) {
	turns := make([]ai.Message, 0, len(history))
	for _, item := range history {
		role := ai.RoleUser
		if item.Role == models.ChatRoleAI {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Message{Role: role, Content: item.Message})
	}

	text, err := s.generator.Generate(ctx, ai.ChatPrompt(turns))
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("generate chat reply: %w", err)
	}
	return models.ChatMessage{Role: models.ChatRoleAI, Message: strings.TrimSpace(text)}, nil
}

// after keeps a reply strictly later than the message it answers.
func after(now, previous time.Time) time.Time {
	if !now.After(previous) {
		return previous.Add(time.Microsecond)
	}
	return now
}

func (s *chatService) ListSessions(ctx context.Context, userID uint, skip, limit int) ([]dto.ChatSessionResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	sessions, err := s.repo.ListSessions(ctx, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewChatSessionResponses(sessions), nil
}

func (s *chatService) History(ctx context.Context, sessionID uint, skip, limit int) ([]dto.ChatMessageResponse, error) {
	if err := validatePage(s.validator, skip, limit); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatSessionNotFound
		}
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, sessionID, skip, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewChatMessageResponses(messages), nil
}
