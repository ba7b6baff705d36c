package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/service"
	"github.com/noah-isme/codecoach-api/internal/utils"
)

// ChatHandler exposes the tutoring chat endpoints.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes.
func (h *ChatHandler) Register(router fiber.Router, generation ...fiber.Handler) {
	router.Post("/start", chain(generation, h.start)...)
	router.Post("/message", chain(generation, h.message)...)
	router.Get("/sessions/:user_id", h.sessions)
	router.Get("/history/:session_id", h.history)
}

func (h *ChatHandler) start(c *fiber.Ctx) error {
	var payload dto.StartChatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, errInvalidRequestBody)
	}

	result, err := h.service.Start(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, result)
}

func (h *ChatHandler) message(c *fiber.Ctx) error {
	var payload dto.ChatMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, errInvalidRequestBody)
	}

	reply, err := h.service.SendMessage(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, reply)
}

func (h *ChatHandler) sessions(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	skip, limit, err := parsePage(c, defaultPageLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	sessions, err := h.service.ListSessions(withRequestContext(c), userID, skip, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, sessions)
}

func (h *ChatHandler) history(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "session_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	skip, limit, err := parsePage(c, defaultPageLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	messages, err := h.service.History(withRequestContext(c), sessionID, skip, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, messages)
}
