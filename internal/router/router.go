package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/codecoach-api/internal/config"
	"github.com/noah-isme/codecoach-api/internal/handler"
	"github.com/noah-isme/codecoach-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	QuestionHandler   *handler.QuestionHandler
	SubmissionHandler *handler.SubmissionHandler
	ReviewHandler     *handler.ReviewHandler
	ChatHandler       *handler.ChatHandler
	DiscussionHandler *handler.DiscussionHandler
	HintHandler       *handler.HintHandler
	NewsHandler       *handler.NewsHandler
	FeedHandler       *handler.FeedHandler

	// AdminMiddleware guards question mutations. Nil leaves them open.
	AdminMiddleware []fiber.Handler
	// GenerationMiddleware runs before every route that calls the text
	// generator, typically a rate limiter.
	GenerationMiddleware []fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	app.Get("/", handler.Root(cfg))
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(app.Group("/questions"), deps.AdminMiddleware...)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(app.Group("/submissions"), deps.GenerationMiddleware...)
	}
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(app.Group("/reviews"), deps.GenerationMiddleware...)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.Register(app.Group("/chat"), deps.GenerationMiddleware...)
	}
	if deps.DiscussionHandler != nil {
		deps.DiscussionHandler.Register(app.Group("/discuss"))
	}
	if deps.HintHandler != nil {
		deps.HintHandler.Register(app.Group("/hint"), deps.GenerationMiddleware...)
	}
	if deps.NewsHandler != nil {
		deps.NewsHandler.Register(app.Group("/news"))
	}
	if deps.FeedHandler != nil {
		deps.FeedHandler.Register(app.Group("/feed"))
	}
}
