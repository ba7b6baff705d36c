package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/database"
	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func twoSumRequest() dto.CreateQuestionRequest {
	return dto.CreateQuestionRequest{
		Title:           "Two Sum",
		Description:     "Return indices of the two numbers adding up to target.",
		DifficultyLevel: "Easy",
		Examples: []dto.ExamplePayload{
			{Input: json.RawMessage(`{"nums":[2,7,11,15],"target":9}`), Output: json.RawMessage(`[0,1]`)},
		},
		Constraints: []dto.ConstraintPayload{
			{Description: "2 <= nums.length <= 10^4"},
			{Description: "Only one valid answer exists."},
		},
		TestCases: []dto.TestCasePayload{
			{Input: json.RawMessage(`{"nums":[3,2,4],"target":6}`), ExpectedOutput: json.RawMessage(`[1,2]`)},
			{Input: json.RawMessage(`{"nums":[3,3],"target":6}`), ExpectedOutput: json.RawMessage(`[0,1]`)},
		},
	}
}

func seedTwoSum(t *testing.T, db *gorm.DB) dto.QuestionResponse {
	t.Helper()

	svc := NewQuestionService(repository.NewQuestionRepository(db), newValidator(), testLogger())
	question, err := svc.Create(context.Background(), twoSumRequest())
	require.NoError(t, err)
	return question
}
