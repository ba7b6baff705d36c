package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecoach-api/internal/events"
	"github.com/noah-isme/codecoach-api/internal/utils"
)

const (
	feedEventReady    = "ready"
	feedEventReviewed = "submission.reviewed"
)

// FeedMessage is one frame of the review feed.
type FeedMessage struct {
	Event string                     `json:"event"`
	Data  *events.SubmissionReviewed `json:"data,omitempty"`
}

// FeedHandler streams a user's finished reviews over SSE or a websocket.
type FeedHandler struct {
	broker    *events.Broker
	logger    zerolog.Logger
	keepAlive time.Duration
}

// NewFeedHandler constructs a FeedHandler.
func NewFeedHandler(broker *events.Broker, logger zerolog.Logger, keepAlive time.Duration) *FeedHandler {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &FeedHandler{
		broker:    broker,
		logger:    logger.With().Str("component", "feed_handler").Logger(),
		keepAlive: keepAlive,
	}
}

// Register binds feed routes.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/reviews/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, err := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64)
		if err != nil || userID == 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid user_id")
		}
		c.Locals("feed_user_id", uint(userID))
		return c.Next()
	})
	router.Get("/reviews/ws", websocket.New(h.socket))
	router.Get("/reviews/:user_id/stream", h.stream)
}

func (h *FeedHandler) stream(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	feed, cancel := h.broker.Subscribe(userID)
	logger := requestLogger(h.logger, c).With().Uint("user_id", userID).Logger()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeFeedEvent(w, FeedMessage{Event: feedEventReady}); err != nil {
			return
		}

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-feed:
				if !ok {
					return
				}
				if err := writeFeedEvent(w, FeedMessage{Event: feedEventReviewed, Data: &event}); err != nil {
					logger.Debug().Err(err).Msg("review feed client went away")
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}

func (h *FeedHandler) socket(conn *websocket.Conn) {
	userID, _ := conn.Locals("feed_user_id").(uint)
	feed, cancel := h.broker.Subscribe(userID)
	defer cancel()

	logger := h.logger.With().Uint("user_id", userID).Logger()
	logger.Info().Msg("review feed websocket connected")
	defer logger.Info().Msg("review feed websocket disconnected")

	// The read loop only notices the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(FeedMessage{Event: feedEventReady}); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-feed:
			if !ok {
				return
			}
			if err := conn.WriteJSON(FeedMessage{Event: feedEventReviewed, Data: &event}); err != nil {
				logger.Debug().Err(err).Msg("failed to write review event")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func writeFeedEvent(w *bufio.Writer, message FeedMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", message.Event, payload); err != nil {
		return err
	}
	return w.Flush()
}
