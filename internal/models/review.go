package models

import (
	"time"

	"gorm.io/datatypes"
)

// Review types written by the submission pipeline and the review endpoints.
const (
	ReviewTypeTestResults    = "test_results"
	ReviewTypeRecommendation = "recommendation"
	ReviewTypeAnalysis       = "analysis"
)

// Review is an evaluation attached to a submission.
type Review struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SubmissionID     uint           `gorm:"not null;index" json:"submission_id"`
	ReviewType       string         `gorm:"size:32;not null;default:analysis" json:"review_type"`
	ReviewText       string         `gorm:"type:text" json:"review_text"`
	CodeQualityScore *int           `json:"code_quality_score"`
	ComplianceStatus *bool          `json:"compliance_status"`
	TestResults      datatypes.JSON `json:"test_results"`
	Suggestions      string         `gorm:"type:text" json:"suggestions"`
	SecurityIssues   string         `gorm:"type:text" json:"security_issues"`
	PerformanceNotes string         `gorm:"type:text" json:"performance_notes"`
	Details          datatypes.JSON `json:"details"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TestResult is one judged test case as stored in Review.TestResults.
type TestResult struct {
	Name          string   `json:"test_name"`
	Passed        bool     `json:"passed"`
	Message       string   `json:"message"`
	ExecutionTime *float64 `json:"execution_time"`
}
