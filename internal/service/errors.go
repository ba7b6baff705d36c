package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/codecoach-api/internal/dto"
)

var (
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSubmissionNotFound indicates the referenced submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrReviewNotFound indicates the referenced review does not exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrChatSessionNotFound indicates the referenced chat session does not exist.
	ErrChatSessionNotFound = errors.New("chat session not found")
	// ErrThreadNotFound indicates the referenced discussion thread does not exist.
	ErrThreadNotFound = errors.New("discussion thread not found")
	// ErrInvalidPagination is returned for skip/limit values outside the accepted range.
	ErrInvalidPagination = errors.New("invalid pagination parameters")
	// ErrEmptyContent is returned when a message is empty after sanitization.
	ErrEmptyContent = errors.New("content must not be empty")
	// ErrInvalidTestCounts is returned when passed test cases exceed the total.
	ErrInvalidTestCounts = errors.New("test_cases_passed cannot exceed total_test_cases")
)

func validatePage(validate *validator.Validate, skip, limit int) error {
	if err := validate.Struct(dto.PageQuery{Skip: skip, Limit: limit}); err != nil {
		return fmt.Errorf("%w: skip must be >= 0 and limit between 1 and %d", ErrInvalidPagination, dto.MaxPageLimit)
	}
	return nil
}
