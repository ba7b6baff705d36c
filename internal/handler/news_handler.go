package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/service"
	"github.com/noah-isme/codecoach-api/internal/utils"
)

// NewsHandler serves the aggregated AI news feed.
type NewsHandler struct {
	service service.NewsService
	logger  zerolog.Logger
}

// NewNewsHandler constructs a NewsHandler.
func NewNewsHandler(service service.NewsService, logger zerolog.Logger) *NewsHandler {
	return &NewsHandler{
		service: service,
		logger:  logger.With().Str("component", "news_handler").Logger(),
	}
}

// Register binds news routes.
func (h *NewsHandler) Register(router fiber.Router) {
	router.Get("/", h.latest)
}

func (h *NewsHandler) latest(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "days", service.DefaultNewsDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := parseQueryInt(c, "limit", service.DefaultNewsLimit)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Latest(withRequestContext(c), dto.NewsQuery{
		Days:         days,
		Limit:        limit,
		ForceRefresh: c.QueryBool("force_refresh", false),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}
