package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/pkg/ai"
)

func TestChatHandlerConversation(t *testing.T) {
	env := newTestEnv(t)
	env.generator.Enqueue(aiReply("Reversing Linked Lists"))
	env.generator.Enqueue(aiReply("Flip each next pointer as you walk."))
	env.generator.Enqueue(aiReply("Glad to help."))

	resp := env.do(t, http.MethodPost, "/chat/start", map[string]interface{}{
		"user_id": 3, "message": "How do I reverse a linked list?",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var started dto.StartChatResponse
	decodeBody(t, resp, &started)
	require.Equal(t, "Reversing Linked Lists", started.SessionTitle)

	resp = env.do(t, http.MethodPost, "/chat/message", map[string]interface{}{
		"session_id": started.SessionID, "user_id": 3, "message": "thanks", "role": "user",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var reply dto.ChatMessageResponse
	decodeBody(t, resp, &reply)
	require.Equal(t, "ai", reply.Role)
	require.Equal(t, "Glad to help.", reply.Message)

	resp = env.do(t, http.MethodGet, "/chat/history/"+itoa(started.SessionID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var history []dto.ChatMessageResponse
	decodeBody(t, resp, &history)
	require.Len(t, history, 4)
	require.Equal(t, []string{"user", "ai", "user", "ai"},
		[]string{history[0].Role, history[1].Role, history[2].Role, history[3].Role})

	resp = env.do(t, http.MethodGet, "/chat/sessions/3", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var sessions []dto.ChatSessionResponse
	decodeBody(t, resp, &sessions)
	require.Len(t, sessions, 1)

	resp = env.do(t, http.MethodGet, "/chat/history/999", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestChatHandlerSurfacesGeneratorFailure(t *testing.T) {
	env := newTestEnv(t)
	env.generator.Fallback = ai.MockReply{Err: errors.New("upstream unavailable")}

	resp := env.do(t, http.MethodPost, "/chat/start", map[string]interface{}{
		"user_id": 3, "message": "hello there",
	})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var failure map[string]string
	decodeBody(t, resp, &failure)
	require.Equal(t, "internal server error", failure["detail"])
}

func TestDiscussionHandlerThreads(t *testing.T) {
	env := newTestEnv(t)
	question := env.createQuestion(t)

	resp := env.do(t, http.MethodPost, "/discuss/start", map[string]interface{}{
		"question_id": question.ID, "user_id": 4, "title": "Hash map approach",
		"content": "Is a single pass enough?<script>alert(1)</script>",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var started dto.StartThreadResponse
	decodeBody(t, resp, &started)
	require.Equal(t, "Hash map approach", started.Thread.Title)
	require.NotContains(t, started.Message.Content, "<script>")

	resp = env.do(t, http.MethodPost, "/discuss/message", map[string]interface{}{
		"thread_id": started.Thread.ID, "user_id": 5, "content": "Yes, store complements.",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/discuss/thread/"+itoa(started.Thread.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var messages []dto.DiscussionMessageResponse
	decodeBody(t, resp, &messages)
	require.Len(t, messages, 2)

	resp = env.do(t, http.MethodGet, "/discuss/question/"+itoa(question.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var threads []dto.ThreadResponse
	decodeBody(t, resp, &threads)
	require.Len(t, threads, 1)

	resp = env.do(t, http.MethodGet, "/discuss/question/"+itoa(question.ID)+"/messages", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &messages)
	require.Len(t, messages, 2)

	resp = env.do(t, http.MethodGet, "/discuss/user/4", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &threads)
	require.Len(t, threads, 1)

	resp = env.do(t, http.MethodPost, "/discuss/message", map[string]interface{}{
		"thread_id": 999, "user_id": 5, "content": "orphan",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHintHandlerHistory(t *testing.T) {
	env := newTestEnv(t)
	question := env.createQuestion(t)
	env.generator.Enqueue(aiReply("Hint: consider what number pairs with each element."))

	resp := env.do(t, http.MethodPost, "/hint/generate", map[string]interface{}{"user_id": 6, "question_id": question.ID})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var hint dto.HintResponse
	decodeBody(t, resp, &hint)
	require.Equal(t, "consider what number pairs with each element.", hint.Hint)

	resp = env.do(t, http.MethodGet, "/hint/history/6?question_id="+itoa(question.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var history []dto.HintResponse
	decodeBody(t, resp, &history)
	require.Len(t, history, 1)

	resp = env.do(t, http.MethodGet, "/hint/history/6?question_id=999", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &history)
	require.Empty(t, history)

	resp = env.do(t, http.MethodPost, "/hint/generate", map[string]interface{}{"user_id": 6, "question_id": 999})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNewsHandlerCachesUntilForced(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/news?days=7&limit=10", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var first dto.NewsResponse
	decodeBody(t, resp, &first)
	require.Equal(t, 3, first.TotalCount)
	require.Equal(t, "Machine learning & more", first.Articles[0].Content)

	resp = env.do(t, http.MethodGet, "/news?days=1&limit=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var second dto.NewsResponse
	decodeBody(t, resp, &second)
	require.Equal(t, first.Articles, second.Articles)
	require.EqualValues(t, 1, env.feedHits.Load())

	resp = env.do(t, http.MethodGet, "/news?limit=2&force_refresh=true", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var forced dto.NewsResponse
	decodeBody(t, resp, &forced)
	require.Len(t, forced.Articles, 2)
	require.EqualValues(t, 2, env.feedHits.Load())
	require.NotEqual(t, first.Articles[0].Title, forced.Articles[0].Title)

	resp = env.do(t, http.MethodGet, "/news?limit=1001", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
	var health map[string]interface{}
	decodeBody(t, resp, &health)
	require.Equal(t, "ok", health["status"])

	resp = env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
