package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/codecoach-api/internal/database"
	"github.com/noah-isme/codecoach-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

func seedQuestion(t *testing.T, db *gorm.DB, title string) models.Question {
	t.Helper()

	question := models.Question{
		Title:       title,
		Description: "Return the sum of two integers.",
		Difficulty:  models.DifficultyEasy,
		Examples: []models.QuestionExample{
			{Position: 0, Input: datatypes.JSON(`[1,2]`), Output: datatypes.JSON(`3`)},
		},
		Constraints: []models.QuestionConstraint{
			{Position: 0, Description: "-1000 <= a, b <= 1000"},
		},
		TestCases: []models.QuestionTestCase{
			{Position: 0, Input: datatypes.JSON(`[2,2]`), ExpectedOutput: datatypes.JSON(`4`)},
			{Position: 1, Input: datatypes.JSON(`[0,5]`), ExpectedOutput: datatypes.JSON(`5`)},
		},
	}
	require.NoError(t, NewQuestionRepository(db).Create(context.Background(), &question))
	return question
}

func TestQuestionRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)

	created := seedQuestion(t, db, "Two Sum")

	loaded, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Two Sum", loaded.Title)
	require.Len(t, loaded.Examples, 1)
	require.Len(t, loaded.Constraints, 1)
	require.Len(t, loaded.TestCases, 2)
	require.JSONEq(t, `[2,2]`, string(loaded.TestCases[0].Input))
	require.JSONEq(t, `3`, string(loaded.Examples[0].Output))
	require.JSONEq(t, `5`, string(loaded.TestCases[1].ExpectedOutput))

	exists, err := repo.Exists(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(context.Background(), created.ID+100)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.GetByID(context.Background(), created.ID+100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuestionRepositoryListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)

	first := seedQuestion(t, db, "First")
	second := seedQuestion(t, db, "Second")
	third := seedQuestion(t, db, "Third")

	items, total, err := repo.List(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	require.Equal(t, third.ID, items[0].ID)
	require.Equal(t, second.ID, items[1].ID)

	items, _, err = repo.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, first.ID, items[0].ID)
}

func TestQuestionRepositoryUpdateReplacesChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	question := seedQuestion(t, db, "Two Sum")

	testCases := []models.QuestionTestCase{
		{Position: 0, Input: datatypes.JSON(`[9,1]`), ExpectedOutput: datatypes.JSON(`10`)},
	}
	err := repo.Update(context.Background(), question.ID, QuestionChanges{
		Fields:    map[string]interface{}{"title": "Add Two"},
		TestCases: &testCases,
	})
	require.NoError(t, err)

	loaded, err := repo.GetByID(context.Background(), question.ID)
	require.NoError(t, err)
	require.Equal(t, "Add Two", loaded.Title)
	require.Len(t, loaded.TestCases, 1)
	require.JSONEq(t, `10`, string(loaded.TestCases[0].ExpectedOutput))
	require.Equal(t, question.ID, loaded.TestCases[0].QuestionID)
	require.Len(t, loaded.Examples, 1, "untouched collections are kept")

	examples := []models.QuestionExample{
		{Position: 0, Input: datatypes.JSON(`[4,4]`), Output: datatypes.JSON(`8`)},
		{Position: 1, Input: datatypes.JSON(`[1,-1]`), Output: datatypes.JSON(`0`)},
	}
	constraints := []models.QuestionConstraint{{Position: 0, Description: "Inputs fit in int32."}}
	err = repo.Update(context.Background(), question.ID, QuestionChanges{Examples: &examples, Constraints: &constraints})
	require.NoError(t, err)

	loaded, err = repo.GetByID(context.Background(), question.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Examples, 2)
	require.JSONEq(t, `0`, string(loaded.Examples[1].Output))
	require.Equal(t, "Inputs fit in int32.", loaded.Constraints[0].Description)
	require.Len(t, loaded.TestCases, 1)

	var orphans int64
	require.NoError(t, db.Model(&models.QuestionTestCase{}).Where("question_id <> ?", question.ID).Count(&orphans).Error)
	require.Zero(t, orphans)

	err = repo.Update(context.Background(), question.ID+100, QuestionChanges{})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuestionRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	question := seedQuestion(t, db, "Two Sum")
	other := seedQuestion(t, db, "Other")

	submissions := NewSubmissionRepository(db)
	submission := models.Submission{UserID: 1, QuestionID: question.ID, Code: "print(1)", Language: "python"}
	require.NoError(t, submissions.Create(ctx, &submission))
	keep := models.Submission{UserID: 1, QuestionID: other.ID, Code: "print(2)", Language: "python"}
	require.NoError(t, submissions.Create(ctx, &keep))

	review := models.Review{SubmissionID: submission.ID, ReviewType: models.ReviewTypeAnalysis, ReviewText: "ok"}
	require.NoError(t, NewReviewRepository(db).CreateForSubmission(ctx, &review, nil))

	thread := models.DiscussionThread{QuestionID: question.ID, UserID: 1, Title: "Help"}
	require.NoError(t, NewDiscussionRepository(db).CreateThread(ctx, &thread, &models.DiscussionMessage{UserID: 1, Content: "stuck"}))
	require.NoError(t, NewHintRepository(db).Create(ctx, &models.HintRequest{UserID: 1, QuestionID: question.ID, HintResponse: "think", RequestTime: time.Now()}))

	require.NoError(t, NewQuestionRepository(db).Delete(ctx, question.ID))

	counts := map[string]interface{}{
		"questions":           &models.Question{},
		"question_test_cases": &models.QuestionTestCase{},
		"submissions":         &models.Submission{},
		"reviews":             &models.Review{},
		"discussion_threads":  &models.DiscussionThread{},
		"discussion_messages": &models.DiscussionMessage{},
		"hint_requests":       &models.HintRequest{},
	}
	expected := map[string]int64{
		"questions":           1,
		"question_test_cases": 2,
		"submissions":         1,
		"reviews":             0,
		"discussion_threads":  0,
		"discussion_messages": 0,
		"hint_requests":       0,
	}
	for name, model := range counts {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.Equal(t, expected[name], count, name)
	}

	require.ErrorIs(t, NewQuestionRepository(db).Delete(ctx, question.ID), gorm.ErrRecordNotFound)
}

func TestSubmissionRepositoryListAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	question := seedQuestion(t, db, "Two Sum")
	repo := NewSubmissionRepository(db)

	older := models.Submission{UserID: 7, QuestionID: question.ID, Code: "a", Language: "go", CreatedAt: time.Now().Add(-time.Hour)}
	newer := models.Submission{UserID: 7, QuestionID: question.ID, Code: "b", Language: "go"}
	stranger := models.Submission{UserID: 8, QuestionID: question.ID, Code: "c", Language: "go"}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))
	require.NoError(t, repo.Create(ctx, &stranger))

	byUser, err := repo.ListByUser(ctx, 7, 0, 10)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	require.Equal(t, newer.ID, byUser[0].ID)

	byQuestion, err := repo.ListByQuestion(ctx, question.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, byQuestion, 2)

	require.NoError(t, repo.Update(ctx, older.ID, map[string]interface{}{"test_cases_passed": 2, "total_test_cases": 2}))
	loaded, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.TestCasesPassed)

	require.ErrorIs(t, repo.Update(ctx, 999, map[string]interface{}{"code": "x"}), gorm.ErrRecordNotFound)
}

func TestReviewRepositoryCreateForSubmissionAppliesFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	question := seedQuestion(t, db, "Two Sum")
	submission := models.Submission{UserID: 1, QuestionID: question.ID, Code: "a", Language: "go"}
	require.NoError(t, NewSubmissionRepository(db).Create(ctx, &submission))

	repo := NewReviewRepository(db)
	first := models.Review{SubmissionID: submission.ID, ReviewType: models.ReviewTypeTestResults, CreatedAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.CreateForSubmission(ctx, &first, map[string]interface{}{
		"result":            models.SubmissionResultAccepted,
		"test_cases_passed": 2,
		"total_test_cases":  2,
	}))
	second := models.Review{SubmissionID: submission.ID, ReviewType: models.ReviewTypeRecommendation}
	require.NoError(t, repo.CreateForSubmission(ctx, &second, nil))

	loaded, err := NewSubmissionRepository(db).GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Result)
	require.Equal(t, models.SubmissionResultAccepted, *loaded.Result)

	reviews, err := repo.ListBySubmission(ctx, submission.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	require.Equal(t, second.ID, reviews[0].ID)

	missing := models.Review{SubmissionID: 999}
	require.ErrorIs(t, repo.CreateForSubmission(ctx, &missing, nil), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.ErrorIs(t, repo.Delete(ctx, first.ID), gorm.ErrRecordNotFound)
}

func TestChatRepositoryAppendMessageRefreshesSession(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewChatRepository(db)

	stale := models.ChatSession{UserID: 3, SessionTitle: "old", LastActive: time.Now().Add(-2 * time.Hour)}
	fresh := models.ChatSession{UserID: 3, SessionTitle: "new", LastActive: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.CreateSession(ctx, &stale))
	require.NoError(t, repo.CreateSession(ctx, &fresh))

	base := time.Now()
	require.NoError(t, repo.AppendMessage(ctx, &models.ChatMessage{SessionID: stale.ID, UserID: 3, Role: models.ChatRoleUser, Message: "hi", CreatedAt: base}))
	require.NoError(t, repo.AppendMessage(ctx, &models.ChatMessage{SessionID: stale.ID, UserID: 3, Role: models.ChatRoleAI, Message: "hello", CreatedAt: base.Add(time.Second)}))

	sessions, err := repo.ListSessions(ctx, 3, 0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, stale.ID, sessions[0].ID, "most recently active session first")

	messages, err := repo.ListMessages(ctx, stale.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, models.ChatRoleUser, messages[0].Role)
	require.Equal(t, models.ChatRoleAI, messages[1].Role)

	err = repo.AppendMessage(ctx, &models.ChatMessage{SessionID: 999, UserID: 3, Role: models.ChatRoleUser, Message: "lost"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiscussionRepositoryCreateMessageRequiresThread(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	question := seedQuestion(t, db, "Two Sum")
	repo := NewDiscussionRepository(db)

	thread := models.DiscussionThread{QuestionID: question.ID, UserID: 1, Title: "Approach"}
	require.NoError(t, repo.CreateThread(ctx, &thread, &models.DiscussionMessage{UserID: 1, Content: "first"}))

	reply := models.DiscussionMessage{ThreadID: thread.ID, UserID: 2, Content: "second", CreatedAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.CreateMessage(ctx, &reply))

	err := repo.CreateMessage(ctx, &models.DiscussionMessage{ThreadID: 999, UserID: 2, Content: "orphan"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.DiscussionMessage{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	messages, err := repo.ListQuestionMessages(ctx, question.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "first", messages[0].Content)

	threads, err := repo.ListThreadsByUser(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.False(t, threads[0].UpdatedAt.Before(reply.CreatedAt.Add(-time.Second)))
}

func TestHintRepositoryListByUserFiltersQuestion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	one := seedQuestion(t, db, "One")
	two := seedQuestion(t, db, "Two")
	repo := NewHintRepository(db)

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &models.HintRequest{UserID: 5, QuestionID: one.ID, HintResponse: "a", RequestTime: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.HintRequest{UserID: 5, QuestionID: two.ID, HintResponse: "b", RequestTime: now}))

	all, err := repo.ListByUser(ctx, 5, nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "b", all[0].HintResponse)

	filtered, err := repo.ListByUser(ctx, 5, &one.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "a", filtered[0].HintResponse)
}
