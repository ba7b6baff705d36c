package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// CreateSubmissionRequest is the payload for creating or submitting code.
type CreateSubmissionRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	QuestionID uint   `json:"question_id" validate:"required"`
	Code       string `json:"code" validate:"required"`
	Language   string `json:"language" validate:"required,max=32"`
}

// UpdateSubmissionRequest is a partial update of a submission.
type UpdateSubmissionRequest struct {
	Code            *string `json:"code" validate:"omitempty,min=1"`
	Language        *string `json:"language" validate:"omitempty,min=1,max=32"`
	Result          *string `json:"result" validate:"omitempty,oneof=Accepted 'Partially Accepted' Failed Error"`
	TestCasesPassed *int    `json:"test_cases_passed" validate:"omitempty,gte=0"`
	TotalTestCases  *int    `json:"total_test_cases" validate:"omitempty,gte=0"`
	ComplianceCheck *bool   `json:"compliance_check"`
}

// SubmissionResponse represents a submission to API consumers.
type SubmissionResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	QuestionID      uint      `json:"question_id"`
	Code            string    `json:"code"`
	Language        string    `json:"language"`
	Result          *string   `json:"result"`
	TestCasesPassed int       `json:"test_cases_passed"`
	TotalTestCases  int       `json:"total_test_cases"`
	ComplianceCheck bool      `json:"compliance_check"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SubmissionWithReviewsResponse includes every review, newest first.
type SubmissionWithReviewsResponse struct {
	SubmissionResponse
	Reviews []ReviewResponse `json:"ai_reviews"`
}

// SubmitAndReviewResponse is the combined result of the review pipeline.
type SubmitAndReviewResponse struct {
	SubmissionID uint               `json:"submission_id"`
	Submission   SubmissionResponse `json:"submission"`
	Review       *ReviewResponse    `json:"review"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(s models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		QuestionID:      s.QuestionID,
		Code:            s.Code,
		Language:        s.Language,
		Result:          s.Result,
		TestCasesPassed: s.TestCasesPassed,
		TotalTestCases:  s.TotalTestCases,
		ComplianceCheck: s.ComplianceCheck,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// NewSubmissionResponses converts a slice of submissions.
func NewSubmissionResponses(items []models.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewSubmissionResponse(item))
	}
	return out
}

// NewSubmissionWithReviewsResponse converts a submission and its reviews.
func NewSubmissionWithReviewsResponse(s models.Submission, reviews []models.Review) SubmissionWithReviewsResponse {
	return SubmissionWithReviewsResponse{
		SubmissionResponse: NewSubmissionResponse(s),
		Reviews:            NewReviewResponses(reviews),
	}
}

// CompileResponse summarizes a simulated test run.
type CompileResponse struct {
	SubmissionID    uint                `json:"submission_id"`
	ReviewID        uint                `json:"review_id"`
	Result          string              `json:"result"`
	TestCasesPassed int                 `json:"test_cases_passed"`
	TotalTestCases  int                 `json:"total_test_cases"`
	ComplianceCheck bool                `json:"compliance_check"`
	TestResults     []models.TestResult `json:"test_results"`
}

// RecommendationResponse carries the structured improvement advice.
type RecommendationResponse struct {
	SubmissionID    uint            `json:"submission_id"`
	ReviewID        uint            `json:"review_id"`
	Recommendations json.RawMessage `json:"recommendations"`
}
