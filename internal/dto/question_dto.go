package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// ExamplePayload is an input/output pair shown with a question.
type ExamplePayload struct {
	Input  json.RawMessage `json:"input" validate:"required"`
	Output json.RawMessage `json:"output" validate:"required"`
}

// ConstraintPayload is one textual constraint.
type ConstraintPayload struct {
	Description string `json:"description" validate:"required"`
}

// TestCasePayload is a hidden test case.
type TestCasePayload struct {
	Input          json.RawMessage `json:"input" validate:"required"`
	ExpectedOutput json.RawMessage `json:"expected_output" validate:"required"`
}

// CreateQuestionRequest is the payload for POST /questions.
type CreateQuestionRequest struct {
	Title           string              `json:"title" validate:"required,max=255"`
	Description     string              `json:"description" validate:"required"`
	DifficultyLevel string              `json:"difficulty_level" validate:"required,oneof=Easy Medium Hard"`
	Examples        []ExamplePayload    `json:"examples" validate:"dive"`
	Constraints     []ConstraintPayload `json:"constraints" validate:"dive"`
	TestCases       []TestCasePayload   `json:"test_cases" validate:"dive"`
}

// UpdateQuestionRequest is a partial update. Child collections are replaced
// only when present.
type UpdateQuestionRequest struct {
	Title           *string              `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string              `json:"description" validate:"omitempty,min=1"`
	DifficultyLevel *string              `json:"difficulty_level" validate:"omitempty,oneof=Easy Medium Hard"`
	Examples        *[]ExamplePayload    `json:"examples" validate:"omitempty,dive"`
	Constraints     *[]ConstraintPayload `json:"constraints" validate:"omitempty,dive"`
	TestCases       *[]TestCasePayload   `json:"test_cases" validate:"omitempty,dive"`
}

// ExampleResponse describes a stored example.
type ExampleResponse struct {
	ID     uint            `json:"id"`
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output"`
}

// ConstraintResponse describes a stored constraint.
type ConstraintResponse struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
}

// TestCaseResponse describes a stored test case.
type TestCaseResponse struct {
	ID             uint            `json:"id"`
	Input          json.RawMessage `json:"input"`
	ExpectedOutput json.RawMessage `json:"expected_output"`
}

// QuestionResponse represents a question with its owned collections.
type QuestionResponse struct {
	ID              uint                 `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	DifficultyLevel string               `json:"difficulty_level"`
	Examples        []ExampleResponse    `json:"examples"`
	Constraints     []ConstraintResponse `json:"constraints"`
	TestCases       []TestCaseResponse   `json:"test_cases"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// QuestionListResponse is a page of questions plus the overall count.
type QuestionListResponse struct {
	Total     int64              `json:"total"`
	Questions []QuestionResponse `json:"questions"`
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(q models.Question) QuestionResponse {
	response := QuestionResponse{
		ID:              q.ID,
		Title:           q.Title,
		Description:     q.Description,
		DifficultyLevel: q.Difficulty,
		Examples:        make([]ExampleResponse, 0, len(q.Examples)),
		Constraints:     make([]ConstraintResponse, 0, len(q.Constraints)),
		TestCases:       make([]TestCaseResponse, 0, len(q.TestCases)),
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}

	for _, e := range q.Examples {
		response.Examples = append(response.Examples, ExampleResponse{
			ID:     e.ID,
			Input:  json.RawMessage(e.Input),
			Output: json.RawMessage(e.Output),
		})
	}
	for _, c := range q.Constraints {
		response.Constraints = append(response.Constraints, ConstraintResponse{ID: c.ID, Description: c.Description})
	}
	for _, tc := range q.TestCases {
		response.TestCases = append(response.TestCases, TestCaseResponse{
			ID:             tc.ID,
			Input:          json.RawMessage(tc.Input),
			ExpectedOutput: json.RawMessage(tc.ExpectedOutput),
		})
	}

	return response
}

// NewQuestionListResponse converts a page of questions.
func NewQuestionListResponse(questions []models.Question, total int64) QuestionListResponse {
	items := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		items = append(items, NewQuestionResponse(q))
	}
	return QuestionListResponse{Total: total, Questions: items}
}
