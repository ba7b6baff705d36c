package models

import "time"

// Submission results derived from the judged pass ratio.
const (
	SubmissionResultAccepted          = "Accepted"
	SubmissionResultPartiallyAccepted = "Partially Accepted"
	SubmissionResultFailed            = "Failed"
	SubmissionResultError             = "Error"
)

// Submission is a single code attempt by a user for a question.
type Submission struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	QuestionID      uint      `gorm:"not null;index" json:"question_id"`
	Code            string    `gorm:"type:text;not null" json:"code"`
	Language        string    `gorm:"size:32;not null" json:"language"`
	Result          *string   `gorm:"size:32" json:"result"`
	TestCasesPassed int       `gorm:"not null;default:0" json:"test_cases_passed"`
	TotalTestCases  int       `gorm:"not null;default:0" json:"total_test_cases"`
	ComplianceCheck bool      `gorm:"not null;default:false" json:"compliance_check"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Question        Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Reviews         []Review  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ResultFromCounts maps a pass count to the submission result label.
// A zero total is reported as an error since nothing was judged.
func ResultFromCounts(passed, total int) string {
	if total <= 0 {
		return SubmissionResultError
	}

	ratio := float64(passed) / float64(total)
	switch {
	case ratio >= 1.0:
		return SubmissionResultAccepted
	case ratio >= 0.8:
		return SubmissionResultPartiallyAccepted
	default:
		return SubmissionResultFailed
	}
}
