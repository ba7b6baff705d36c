package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/models"
	"github.com/noah-isme/codecoach-api/pkg/ai"
)

const submitAndReviewSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["submission_id", "submission", "review"],
  "properties": {
    "submission_id": {"type": "integer", "minimum": 1},
    "submission": {
      "type": "object",
      "required": ["id", "user_id", "question_id", "code", "language", "result", "test_cases_passed", "total_test_cases", "compliance_check"],
      "properties": {
        "result": {"enum": ["Accepted", "Partially Accepted", "Failed", "Error", null]},
        "test_cases_passed": {"type": "integer", "minimum": 0},
        "total_test_cases": {"type": "integer", "minimum": 0},
        "compliance_check": {"type": "boolean"}
      }
    },
    "review": {
      "type": ["object", "null"],
      "required": ["id", "submission_id", "review_type", "review_text"],
      "properties": {
        "review_type": {"enum": ["test_results", "recommendation", "analysis"]}
      }
    }
  }
}`

const compileOutput = `{
  "test_results": [
    {"test_case_id": 1, "expected_output": [1,2], "actual_output": [1,2], "passed": true},
    {"test_case_id": 2, "expected_output": [0,1], "actual_output": [0,1], "passed": true}
  ],
  "summary": {"total_tests": 2, "passed": 2, "failed": 0},
  "compliance_check": true
}`

const recommendOutput = "```json\n" + `{
  "complexity_analysis": {"current_time": "O(n)"},
  "improvement_suggestions": [],
  "overall_assessment": "Optimal."
}` + "\n```"

func aiReply(text string) ai.MockReply {
	return ai.MockReply{Text: text}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestSubmitAndReviewContract(t *testing.T) {
	env := newTestEnv(t)
	question := env.createQuestion(t)
	env.generator.Enqueue(aiReply(compileOutput))
	env.generator.Enqueue(aiReply(recommendOutput))

	schema, err := jsonschema.CompileString("submit_and_review.schema.json", submitAndReviewSchema)
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/submissions/submit-and-review", map[string]interface{}{
		"user_id": 5, "question_id": question.ID, "code": "def two_sum(): ...", "language": "Python",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))

	var result dto.SubmitAndReviewResponse
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, models.SubmissionResultAccepted, *result.Submission.Result)
	require.Equal(t, 2, result.Submission.TestCasesPassed)
	require.Equal(t, "Optimal.", result.Review.ReviewText)

	resp = env.do(t, http.MethodGet, "/submissions/"+itoa(result.SubmissionID)+"/with-reviews", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var withReviews dto.SubmissionWithReviewsResponse
	decodeBody(t, resp, &withReviews)
	require.Len(t, withReviews.Reviews, 2)
	require.Equal(t, models.ReviewTypeRecommendation, withReviews.Reviews[0].ReviewType)
	require.Equal(t, models.ReviewTypeTestResults, withReviews.Reviews[1].ReviewType)
}

func TestSubmitAndReviewUnparseableOutput(t *testing.T) {
	env := newTestEnv(t)
	question := env.createQuestion(t)
	env.generator.Fallback = aiReply("I am unable to execute code.")

	resp := env.do(t, http.MethodPost, "/submissions/submit-and-review", map[string]interface{}{
		"user_id": 5, "question_id": question.ID, "code": "print(1)", "language": "python",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.SubmitAndReviewResponse
	decodeBody(t, resp, &result)
	require.Equal(t, models.SubmissionResultError, *result.Submission.Result)
	require.Zero(t, result.Submission.TotalTestCases)
	require.Zero(t, result.Submission.TestCasesPassed)
}

func TestSubmitAndReviewUnknownQuestion(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/submissions/submit-and-review", map[string]interface{}{
		"user_id": 5, "question_id": 404, "code": "print(1)", "language": "python",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Zero(t, env.generator.CallCount())

	resp = env.do(t, http.MethodPost, "/submissions/submit-and-review", map[string]interface{}{
		"user_id": 5, "code": "print(1)",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionHandlerCompileRecommendAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	question := env.createQuestion(t)

	resp := env.do(t, http.MethodPost, "/submissions", map[string]interface{}{
		"user_id": 8, "question_id": question.ID, "code": "x", "language": "go",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created dto.SubmissionResponse
	decodeBody(t, resp, &created)
	require.Nil(t, created.Result)

	env.generator.Enqueue(aiReply(compileOutput))
	resp = env.do(t, http.MethodPost, "/submissions/compile/"+itoa(created.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var compiled dto.CompileResponse
	decodeBody(t, resp, &compiled)
	require.Equal(t, models.SubmissionResultAccepted, compiled.Result)
	require.Len(t, compiled.TestResults, 2)

	env.generator.Enqueue(aiReply(recommendOutput))
	resp = env.do(t, http.MethodPost, "/submissions/recommend/"+itoa(created.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var recommended dto.RecommendationResponse
	decodeBody(t, resp, &recommended)
	require.NotZero(t, recommended.ReviewID)

	resp = env.do(t, http.MethodPut, "/submissions/"+itoa(created.ID), map[string]interface{}{
		"test_cases_passed": 3, "total_test_cases": 2,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/submissions/"+itoa(created.ID), map[string]interface{}{"code": "y"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/submissions/user/8?limit=10", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var byUser []dto.SubmissionResponse
	decodeBody(t, resp, &byUser)
	require.Len(t, byUser, 1)
	require.Equal(t, "y", byUser[0].Code)

	resp = env.do(t, http.MethodGet, "/submissions/question/"+itoa(question.ID)+"?limit=1001", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/submissions/compile/999", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReviewHandlerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	question := env.createQuestion(t)

	resp := env.do(t, http.MethodPost, "/submissions", map[string]interface{}{
		"user_id": 8, "question_id": question.ID, "code": "x", "language": "go",
	})
	var submission dto.SubmissionResponse
	decodeBody(t, resp, &submission)

	resp = env.do(t, http.MethodPost, "/reviews", map[string]interface{}{
		"submission_id":      submission.ID,
		"review_text":        "Readable.",
		"code_quality_score": 8,
		"compliance_status":  true,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var review dto.ReviewResponse
	decodeBody(t, resp, &review)

	resp = env.do(t, http.MethodGet, "/reviews/submission/"+itoa(submission.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed []dto.ReviewResponse
	decodeBody(t, resp, &listed)
	require.Len(t, listed, 1)

	env.generator.Enqueue(aiReply(`{"code_quality_score": 12, "compliance_status": true, "overall_review": "Fine."}`))
	resp = env.do(t, http.MethodPost, "/reviews/generate/"+itoa(submission.ID), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var generated dto.ReviewResponse
	decodeBody(t, resp, &generated)
	require.Equal(t, 10, *generated.CodeQualityScore)

	resp = env.do(t, http.MethodDelete, "/reviews/"+itoa(review.ID), nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/reviews/"+itoa(review.ID), nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/reviews/submission/999", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
