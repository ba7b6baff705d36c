package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

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

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	generator *ai.MockGenerator
	broker    *events.Broker
	feedHits  *atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	hits := &atomic.Int32{}
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit := hits.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, rssFeed(hit, time.Now().UTC()))
	}))
	t.Cleanup(feed.Close)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()
	generator := ai.NewMockGenerator()
	broker := events.NewBroker(4)

	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	aggregator := news.NewAggregator([]news.Feed{{Name: "test", URL: feed.URL}}, news.Options{
		HTTPClient: feed.Client(),
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, config.Config{AppName: "CodeCoach Test", AppEnv: "test"}, router.Dependencies{
		QuestionHandler: handler.NewQuestionHandler(
			service.NewQuestionService(questionRepo, validate, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(
			service.NewSubmissionService(submissionRepo, questionRepo, reviewRepo, generator, broker, validate, logger), logger),
		ReviewHandler: handler.NewReviewHandler(
			service.NewReviewService(reviewRepo, submissionRepo, generator, validate, logger), logger),
		ChatHandler: handler.NewChatHandler(
			service.NewChatService(repository.NewChatRepository(db), generator, validate, logger), logger),
		DiscussionHandler: handler.NewDiscussionHandler(
			service.NewDiscussionService(repository.NewDiscussionRepository(db), questionRepo, generator, validate, logger), logger),
		HintHandler: handler.NewHintHandler(
			service.NewHintService(repository.NewHintRepository(db), questionRepo, generator, validate, logger), logger),
		NewsHandler: handler.NewNewsHandler(
			service.NewNewsService(aggregator, cache.NewMemorySlot[dto.NewsResponse](), time.Hour, validate, logger), logger),
		FeedHandler: handler.NewFeedHandler(broker, logger, 100*time.Millisecond),
	})

	return &testEnv{app: app, db: db, generator: generator, broker: broker, feedHits: hits}
}

func rssFeed(hit int32, now time.Time) string {
	var items bytes.Buffer
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&items, `<item>
  <title>AI research update %d-%d</title>
  <link>https://news.test/%d/%d</link>
  <description><![CDATA[<p>Machine learning &amp; more</p>]]></description>
  <pubDate>%s</pubDate>
</item>`, hit, i, hit, i, now.Add(-time.Duration(i+1)*time.Hour).Format(time.RFC1123Z))
	}
	fmt.Fprintf(&items, `<item>
  <title>Gardening tips</title>
  <link>https://news.test/garden</link>
  <description>Tomatoes</description>
  <pubDate>%s</pubDate>
</item>`, now.Add(-time.Hour).Format(time.RFC1123Z))

	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test</title><link>https://news.test</link><description>t</description>` +
		items.String() + `</channel></rss>`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func twoSumPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":            "Two Sum",
		"description":      "Return indices of the two numbers adding up to target.",
		"difficulty_level": "Easy",
		"examples": []map[string]interface{}{
			{"input": map[string]interface{}{"nums": []int{2, 7, 11, 15}, "target": 9}, "output": []int{0, 1}},
		},
		"constraints": []map[string]string{
			{"description": "Only one valid answer exists."},
		},
		"test_cases": []map[string]interface{}{
			{"input": map[string]interface{}{"nums": []int{3, 2, 4}, "target": 6}, "expected_output": []int{1, 2}},
			{"input": map[string]interface{}{"nums": []int{3, 3}, "target": 6}, "expected_output": []int{0, 1}},
		},
	}
}

func (e *testEnv) createQuestion(t *testing.T) dto.QuestionResponse {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/questions", twoSumPayload())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var question dto.QuestionResponse
	decodeBody(t, resp, &question)
	return question
}
