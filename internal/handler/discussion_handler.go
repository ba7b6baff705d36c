package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/service"
	"github.com/noah-isme/codecoach-api/internal/utils"
)

// DiscussionHandler exposes question discussion threads.
type DiscussionHandler struct {
	service service.DiscussionService
	logger  zerolog.Logger
}

// NewDiscussionHandler constructs a DiscussionHandler.
func NewDiscussionHandler(service service.DiscussionService, logger zerolog.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		service: service,
		logger:  logger.With().Str("component", "discussion_handler").Logger(),
	}
}

// Register binds discussion routes.
func (h *DiscussionHandler) Register(router fiber.Router) {
	router.Post("/start", h.startThread)
	router.Post("/message", h.postMessage)
	router.Get("/question/:question_id/messages", h.questionMessages)
	router.Get("/question/:question_id", h.questionThreads)
	router.Get("/user/:user_id", h.userThreads)
	router.Get("/thread/:thread_id", h.threadMessages)
}

func (h *DiscussionHandler) startThread(c *fiber.Ctx) error {
	var payload dto.StartThreadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, errInvalidRequestBody)
	}

	result, err := h.service.StartThread(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, result)
}

func (h *DiscussionHandler) postMessage(c *fiber.Ctx) error {
	var payload dto.CreateDiscussionMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, errInvalidRequestBody)
	}

	message, err := h.service.PostMessage(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusCreated, message)
}

func (h *DiscussionHandler) questionThreads(c *fiber.Ctx) error {
	questionID, err := parseUintParam(c, "question_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	skip, limit, err := parsePage(c, defaultPageLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	threads, err := h.service.ListQuestionThreads(withRequestContext(c), questionID, skip, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, threads)
}

func (h *DiscussionHandler) userThreads(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	skip, limit, err := parsePage(c, defaultPageLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	threads, err := h.service.ListUserThreads(withRequestContext(c), userID, skip, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, threads)
}

func (h *DiscussionHandler) threadMessages(c *fiber.Ctx) error {
	threadID, err := parseUintParam(c, "thread_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	skip, limit, err := parsePage(c, defaultPageLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	messages, err := h.service.ThreadMessages(withRequestContext(c), threadID, skip, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, messages)
}

func (h *DiscussionHandler) questionMessages(c *fiber.Ctx) error {
	questionID, err := parseUintParam(c, "question_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	skip, limit, err := parsePage(c, defaultPageLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	messages, err := h.service.QuestionMessages(withRequestContext(c), questionID, skip, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, messages)
}
