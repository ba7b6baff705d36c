package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question difficulty levels.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// IsValidDifficulty reports whether level is one of the supported difficulty values.
func IsValidDifficulty(level string) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Question is a programming problem statement with its owned examples,
// constraints and hidden test cases.
type Question struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Title       string               `gorm:"size:255;not null" json:"title"`
	Description string               `gorm:"type:text;not null" json:"description"`
	Difficulty  string               `gorm:"size:16;not null;index" json:"difficulty_level"`
	CreatedAt   time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Examples    []QuestionExample    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"examples"`
	Constraints []QuestionConstraint `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"constraints"`
	TestCases   []QuestionTestCase   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test_cases"`
}

// QuestionExample is a worked input/output pair shown to users.
type QuestionExample struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	QuestionID uint           `gorm:"index;not null" json:"question_id"`
	Position   int            `gorm:"not null;default:0" json:"position"`
	Input      datatypes.JSON `gorm:"type:text;not null" json:"input"`
	Output     datatypes.JSON `gorm:"type:text;not null" json:"output"`
}

// QuestionConstraint is a single textual constraint of a question.
type QuestionConstraint struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	QuestionID  uint   `gorm:"index;not null" json:"question_id"`
	Position    int    `gorm:"not null;default:0" json:"position"`
	Description string `gorm:"type:text;not null" json:"description"`
}

// QuestionTestCase is an input and its expected output used when judging submissions.
type QuestionTestCase struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	QuestionID     uint           `gorm:"index;not null" json:"question_id"`
	Position       int            `gorm:"not null;default:0" json:"position"`
	Input          datatypes.JSON `gorm:"type:text;not null" json:"input"`
	ExpectedOutput datatypes.JSON `gorm:"type:text;not null" json:"expected_output"`
}

// SetQuestionID attaches the example to its question.
func (e *QuestionExample) SetQuestionID(id uint) { e.QuestionID = id }

// SetQuestionID attaches the constraint to its question.
func (c *QuestionConstraint) SetQuestionID(id uint) { c.QuestionID = id }

// SetQuestionID attaches the test case to its question.
func (tc *QuestionTestCase) SetQuestionID(id uint) { tc.QuestionID = id }
