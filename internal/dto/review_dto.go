package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// TestResultPayload is a single judged test case supplied by a client.
type TestResultPayload struct {
	Name          string   `json:"test_name" validate:"required"`
	Passed        bool     `json:"passed"`
	Message       string   `json:"message"`
	ExecutionTime *float64 `json:"execution_time" validate:"omitempty,gte=0"`
}

// CreateReviewRequest is the payload for POST /reviews.
type CreateReviewRequest struct {
	SubmissionID     uint                `json:"submission_id" validate:"required"`
	ReviewText       string              `json:"review_text" validate:"required"`
	CodeQualityScore *int                `json:"code_quality_score" validate:"required,min=1,max=10"`
	ComplianceStatus *bool               `json:"compliance_status" validate:"required"`
	TestResults      []TestResultPayload `json:"test_results" validate:"omitempty,dive"`
	Suggestions      string              `json:"suggestions"`
	SecurityIssues   string              `json:"security_issues"`
	PerformanceNotes string              `json:"performance_notes"`
}

// UpdateReviewRequest is a partial update of a review.
type UpdateReviewRequest struct {
	ReviewText       *string              `json:"review_text" validate:"omitempty,min=1"`
	CodeQualityScore *int                 `json:"code_quality_score" validate:"omitempty,min=1,max=10"`
	ComplianceStatus *bool                `json:"compliance_status"`
	TestResults      *[]TestResultPayload `json:"test_results" validate:"omitempty,dive"`
	Suggestions      *string              `json:"suggestions"`
	SecurityIssues   *string              `json:"security_issues"`
	PerformanceNotes *string              `json:"performance_notes"`
}

// ReviewResponse represents a review to API consumers.
type ReviewResponse struct {
	ID               uint                `json:"id"`
	SubmissionID     uint                `json:"submission_id"`
	ReviewType       string              `json:"review_type"`
	ReviewText       string              `json:"review_text"`
	CodeQualityScore *int                `json:"code_quality_score"`
	ComplianceStatus *bool               `json:"compliance_status"`
	TestResults      []models.TestResult `json:"test_results"`
	Suggestions      string              `json:"suggestions"`
	SecurityIssues   string              `json:"security_issues"`
	PerformanceNotes string              `json:"performance_notes"`
	Details          json.RawMessage     `json:"details,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// NewReviewResponse converts a Review model. Stored test results that fail to
// decode are reported as absent.
func NewReviewResponse(r models.Review) ReviewResponse {
	response := ReviewResponse{
		ID:               r.ID,
		SubmissionID:     r.SubmissionID,
		ReviewType:       r.ReviewType,
		ReviewText:       r.ReviewText,
		CodeQualityScore: r.CodeQualityScore,
		ComplianceStatus: r.ComplianceStatus,
		TestResults:      DecodeTestResults(r.TestResults),
		Suggestions:      r.Suggestions,
		SecurityIssues:   r.SecurityIssues,
		PerformanceNotes: r.PerformanceNotes,
		CreatedAt:        r.CreatedAt,
	}
	if len(r.Details) > 0 && json.Valid(r.Details) {
		response.Details = json.RawMessage(r.Details)
	}
	return response
}

// NewReviewResponses converts a slice of reviews.
func NewReviewResponses(items []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewReviewResponse(item))
	}
	return out
}

// DecodeTestResults parses a serialized test result list, returning nil when
// the payload is empty or malformed.
func DecodeTestResults(raw []byte) []models.TestResult {
	if len(raw) == 0 {
		return nil
	}
	var results []models.TestResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil
	}
	return results
}

// TestResultsFromPayload converts client supplied results into model values.
func TestResultsFromPayload(items []TestResultPayload) []models.TestResult {
	out := make([]models.TestResult, 0, len(items))
	for _, item := range items {
		out = append(out, models.TestResult{
			Name:          item.Name,
			Passed:        item.Passed,
			Message:       item.Message,
			ExecutionTime: item.ExecutionTime,
		})
	}
	return out
}
