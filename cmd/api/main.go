package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/internal/cache"
	"github.com/noah-isme/codecoach-api/internal/config"
	"github.com/noah-isme/codecoach-api/internal/database"
	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/events"
	"github.com/noah-isme/codecoach-api/internal/handler"
	"github.com/noah-isme/codecoach-api/internal/middleware"
	"github.com/noah-isme/codecoach-api/internal/repository"
	"github.com/noah-isme/codecoach-api/internal/router"
	"github.com/noah-isme/codecoach-api/internal/service"
	"github.com/noah-isme/codecoach-api/internal/utils"
	"github.com/noah-isme/codecoach-api/pkg/ai"
	"github.com/noah-isme/codecoach-api/pkg/news"
)

const newsCacheKey = "codecoach:news:latest"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx := context.Background()

	var newsSlot cache.Slot[dto.NewsResponse] = cache.NewMemorySlot[dto.NewsResponse]()
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		newsSlot = cache.NewRedisSlot[dto.NewsResponse](redisClient, newsCacheKey)
	}

	generator, err := ai.New(ctx, ai.Config{
		Provider:        cfg.AIProvider,
		Model:           cfg.AIModel,
		Temperature:     cfg.AITemperature,
		MaxTokens:       cfg.AIMaxTokens,
		Timeout:         cfg.AITimeout,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OllamaURL:       cfg.OllamaURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.AIProvider).Msg("failed to configure text generator")
	}
	logger.Info().Str("provider", cfg.AIProvider).Str("model", generator.Model()).Msg("text generator ready")

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()

	// Without NATS the broker is fed directly; with it every node relays the
	// shared subject so feeds see reviews finished on any node.
	broker := events.NewBroker(0)
	var publisher events.Publisher = broker
	if cfg.NATSURL != "" {
		conn, err := events.Connect(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer conn.Drain()
		if err := events.Relay(relayCtx, conn, broker, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to subscribe to review events")
		}
		publisher = events.NewNATSPublisher(conn)
	}

	feeds := make([]news.Feed, 0, len(cfg.NewsFeeds))
	for _, feed := range cfg.NewsFeeds {
		feeds = append(feeds, news.Feed{Name: feed.Name, URL: feed.URL})
	}
	aggregator := news.NewAggregator(feeds, news.Options{
		HTTPClient: &http.Client{Timeout: cfg.NewsHTTPTimeout},
		Logger:     logger,
	})

	validate := validator.New(validator.WithRequiredStructEnabled())

	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	chatRepo := repository.NewChatRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	hintRepo := repository.NewHintRepository(db)

	questionService := service.NewQuestionService(questionRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, questionRepo, reviewRepo, generator, publisher, validate, logger)
	reviewService := service.NewReviewService(reviewRepo, submissionRepo, generator, validate, logger)
	chatService := service.NewChatService(chatRepo, generator, validate, logger)
	discussionService := service.NewDiscussionService(discussionRepo, questionRepo, generator, validate, logger)
	hintService := service.NewHintService(hintRepo, questionRepo, generator, validate, logger)
	newsService := service.NewNewsService(aggregator, newsSlot, cfg.NewsCacheTTL, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: utils.ErrorHandler,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})

	deps := router.Dependencies{
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ReviewHandler:     handler.NewReviewHandler(reviewService, logger),
		ChatHandler:       handler.NewChatHandler(chatService, logger),
		DiscussionHandler: handler.NewDiscussionHandler(discussionService, logger),
		HintHandler:       handler.NewHintHandler(hintService, logger),
		NewsHandler:       handler.NewNewsHandler(newsService, logger),
		FeedHandler:       handler.NewFeedHandler(broker, logger, 30*time.Second),
		GenerationMiddleware: []fiber.Handler{
			middleware.RateLimit("generation", cfg.AIRateLimitMax, cfg.AIRateLimitWindow),
		},
	}
	if cfg.JWTSecret != "" {
		deps.AdminMiddleware = []fiber.Handler{
			middleware.JWTProtected(cfg.JWTSecret),
			middleware.RequireRole("admin"),
		}
	} else {
		logger.Warn().Msg("jwt secret not set, question management is unauthenticated")
	}
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.AppEnv == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
