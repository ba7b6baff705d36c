package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestQuestionServiceCreateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db), newValidator(), testLogger())

	created, err := svc.Create(context.Background(), twoSumRequest())
	require.NoError(t, err)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Two Sum", fetched.Title)
	require.Equal(t, "Easy", fetched.DifficultyLevel)
	require.Len(t, fetched.Examples, 1)
	require.JSONEq(t, `[0,1]`, string(fetched.Examples[0].Output))
	require.Len(t, fetched.Constraints, 2)
	require.Equal(t, "2 <= nums.length <= 10^4", fetched.Constraints[0].Description)
	require.Len(t, fetched.TestCases, 2)
	require.JSONEq(t, `{"nums":[3,3],"target":6}`, string(fetched.TestCases[1].Input))
}

func TestQuestionServiceRejectsInvalidDifficulty(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db), newValidator(), testLogger())

	payload := twoSumRequest()
	payload.DifficultyLevel = "Impossible"

	_, err := svc.Create(context.Background(), payload)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestQuestionServicePartialUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db), newValidator(), testLogger())
	created := seedTwoSum(t, db)

	hard := "Hard"
	constraints := []dto.ConstraintPayload{{Description: "No extra memory."}}
	updated, err := svc.Update(context.Background(), created.ID, dto.UpdateQuestionRequest{
		DifficultyLevel: &hard,
		Constraints:     &constraints,
	})
	require.NoError(t, err)
	require.Equal(t, "Hard", updated.DifficultyLevel)
	require.Equal(t, created.Title, updated.Title)
	require.Len(t, updated.Constraints, 1)
	require.Len(t, updated.TestCases, 2)

	_, err = svc.Update(context.Background(), created.ID+50, dto.UpdateQuestionRequest{DifficultyLevel: &hard})
	require.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionServiceListPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db), newValidator(), testLogger())
	seedTwoSum(t, db)
	seedTwoSum(t, db)

	page, err := svc.List(context.Background(), 0, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	require.Len(t, page.Questions, 1)

	_, err = svc.List(context.Background(), 0, 1001)
	require.ErrorIs(t, err, ErrInvalidPagination)
	_, err = svc.List(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrInvalidPagination)
	_, err = svc.List(context.Background(), -1, 10)
	require.ErrorIs(t, err, ErrInvalidPagination)
}

func TestQuestionServiceDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db), newValidator(), testLogger())
	created := seedTwoSum(t, db)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err := svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrQuestionNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrQuestionNotFound)

	payload := twoSumRequest()
	payload.Examples = []dto.ExamplePayload{{Input: json.RawMessage(`1`)}}
	_, err = svc.Create(context.Background(), payload)
	require.Error(t, err, "examples need both input and output")
}
