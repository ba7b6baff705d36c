package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codecoach-api/internal/dto"
	"github.com/noah-isme/codecoach-api/internal/models"
	"github.com/noah-isme/codecoach-api/internal/repository"
	"github.com/noah-isme/codecoach-api/pkg/ai"
)

func TestDiscussionServiceThreadLifecycle(t *testing.T) {
	db := newTestDB(t)
	question := seedTwoSum(t, db)
	generator := ai.NewMockGenerator("Hash Map Approach Question")
	svc := NewDiscussionService(repository.NewDiscussionRepository(db), repository.NewQuestionRepository(db), generator, newValidator(), testLogger())

	started, err := svc.StartThread(context.Background(), dto.StartThreadRequest{
		QuestionID: question.ID,
		UserID:     4,
		Content:    "<script>alert(1)</script>Is a hash map the intended approach?",
	})
	require.NoError(t, err)
	require.Equal(t, "Hash Map Approach Question", started.Thread.Title)
	require.Equal(t, "Is a hash map the intended approach?", started.Message.Content)

	reply, err := svc.PostMessage(context.Background(), dto.CreateDiscussionMessageRequest{
		ThreadID: started.Thread.ID, UserID: 5, Content: "Yes, one pass is enough.",
	})
	require.NoError(t, err)
	require.Equal(t, started.Thread.ID, reply.ThreadID)

	messages, err := svc.ThreadMessages(context.Background(), started.Thread.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	all, err := svc.QuestionMessages(context.Background(), question.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byQuestion, err := svc.ListQuestionThreads(context.Background(), question.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, byQuestion, 1)

	byUser, err := svc.ListUserThreads(context.Background(), 4, 0, 100)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
}

func TestDiscussionServiceUnknownThreadInsertsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewDiscussionService(repository.NewDiscussionRepository(db), repository.NewQuestionRepository(db), ai.NewMockGenerator(), newValidator(), testLogger())

	_, err := svc.PostMessage(context.Background(), dto.CreateDiscussionMessageRequest{ThreadID: 31, UserID: 1, Content: "anyone?"})
	require.ErrorIs(t, err, ErrThreadNotFound)

	var count int64
	require.NoError(t, db.Model(&models.DiscussionMessage{}).Count(&count).Error)
	require.Zero(t, count)

	_, err = svc.ThreadMessages(context.Background(), 31, 0, 10)
	require.ErrorIs(t, err, ErrThreadNotFound)
}

func TestDiscussionServiceValidation(t *testing.T) {
	db := newTestDB(t)
	question := seedTwoSum(t, db)
	svc := NewDiscussionService(repository.NewDiscussionRepository(db), repository.NewQuestionRepository(db), ai.NewMockGenerator(), newValidator(), testLogger())

	_, err := svc.StartThread(context.Background(), dto.StartThreadRequest{QuestionID: question.ID, UserID: 1, Title: "Empty", Content: "<script>x</script>"})
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.StartThread(context.Background(), dto.StartThreadRequest{QuestionID: 404, UserID: 1, Title: "Lost", Content: "hello"})
	require.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = svc.ListUserThreads(context.Background(), 1, 0, 5000)
	require.ErrorIs(t, err, ErrInvalidPagination)
}
