package models

import "time"

// HintRequest records a hint generated for a user on a question.
type HintRequest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	QuestionID   uint      `gorm:"not null;index" json:"question_id"`
	HintResponse string    `gorm:"type:text" json:"hint_response"`
	RequestTime  time.Time `gorm:"not null;index" json:"request_time"`
	Question     Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
