package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/service"
	"github.com/noah-isme/codecoach-api/internal/utils"
)

// HintHandler exposes hint generation and history.
type HintHandler struct {
	service service.HintService
	logger  zerolog.Logger
}

// NewHintHandler constructs a HintHandler.
func NewHintHandler(service service.HintService, logger zerolog.Logger) *HintHandler {
	return &HintHandler{
		service: service,
		logger:  logger.With().Str("component", "hint_handler").Logger(),
	}
}

// Register binds hint routes.
func (h *HintHandler) Register(router fiber.Router, generation ...fiber.Handler) {
	router.Post("/generate", chain(generation, h.generate)...)
	router.Get("/history/:user_id", h.history)
}

func (h *HintHandler) generate(c *fiber.Ctx) error {
	var payload dto.GenerateHintRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, errInvalidRequestBody)
	}

	hint, err := h.service.Generate(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, hint)
}

func (h *HintHandler) history(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	questionID, err := parseQueryUint(c, "question_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	skip, limit, err := parsePage(c, defaultPageLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	hints, err := h.service.History(withRequestContext(c), userID, questionID, skip, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, hints)
}
