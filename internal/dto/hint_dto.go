package dto

import (
	"time"

	"github.com/noah-isme/codecoach-api/internal/models"
)

// GenerateHintRequest asks for a hint on a question.
type GenerateHintRequest struct {
	UserID     uint `json:"user_id" validate:"required"`
	QuestionID uint `json:"question_id" validate:"required"`
}

// HintResponse is a generated hint and its request record.
type HintResponse struct {
	RequestID   uint      `json:"request_id"`
	UserID      uint      `json:"user_id"`
	QuestionID  uint      `json:"question_id"`
	Hint        string    `json:"hint"`
	RequestTime time.Time `json:"request_time"`
}

// NewHintResponse converts a HintRequest model.
func NewHintResponse(h models.HintRequest) HintResponse {
	return HintResponse{
		RequestID:   h.ID,
		UserID:      h.UserID,
		QuestionID:  h.QuestionID,
		Hint:        h.HintResponse,
		RequestTime: h.RequestTime,
	}
}

// NewHintResponses converts a slice of hint requests.
func NewHintResponses(items []models.HintRequest) []HintResponse {
	out := make([]HintResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewHintResponse(item))
	}
	return out
}
