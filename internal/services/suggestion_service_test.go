package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/session"
)

type stubCompleter struct {
	content string
	err     error
	got     openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.got = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: s.content}}},
	}, nil
}

type ownedBoards struct {
	repository.BoardRepository
	owner uint64
}

func (b ownedBoards) FindOwned(ctx context.Context, id, userID uint64) (*models.Board, error) {
	if userID != b.owner {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Board{ID: id, UserID: userID}, nil
}

func TestSuggestTasks_NilClientIsUnavailable(t *testing.T) {
	svc := NewSuggestionService(NewOpenAIClient(""), ownedBoards{owner: 1})

	_, err := svc.SuggestTasks(session.WithUserID(context.Background(), 1), 7, SuggestInput{Text: "buy milk"})
	require.Error(t, err)
	assert.Equal(t, apierrors.KindUnavailable, apierrors.KindOf(err))
}

func TestSuggestTasks_ParsesFencedJSONAndDropsInvalid(t *testing.T) {
	stub := &stubCompleter{content: "```json\n[" +
		`{"title": "Buy milk", "description": "2 liters", "due_date": "2024-01-04T09:00:00Z"},` +
		`{"title": "   ", "description": "blank title"},` +
		`{"title": "Call mom", "due_date": "sometime"}` +
		"]\n```"}
	svc := NewSuggestionService(stub, ownedBoards{owner: 1})

	drafts, err := svc.SuggestTasks(session.WithUserID(context.Background(), 1), 7, SuggestInput{Text: "buy milk tomorrow, call mom"})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Buy milk", drafts[0].Title)
	require.NotNil(t, drafts[0].BoardID)
	assert.Equal(t, uint64(7), *drafts[0].BoardID)

	assert.Equal(t, openai.GPT4o, stub.got.Model)
	assert.Contains(t, stub.got.Messages[0].Content, "call mom")
}

func TestSuggestTasks_Failures(t *testing.T) {
	ctx := session.WithUserID(context.Background(), 1)

	svc := NewSuggestionService(&stubCompleter{err: errors.New("rate limited")}, ownedBoards{owner: 1})
	_, err := svc.SuggestTasks(ctx, 7, SuggestInput{Text: "x"})
	assert.Equal(t, apierrors.KindUnavailable, apierrors.KindOf(err))

	svc = NewSuggestionService(&stubCompleter{content: "Sure! Here are your tasks."}, ownedBoards{owner: 1})
	_, err = svc.SuggestTasks(ctx, 7, SuggestInput{Text: "x"})
	assert.Equal(t, apierrors.KindUnavailable, apierrors.KindOf(err))

	svc = NewSuggestionService(&stubCompleter{content: "[]"}, ownedBoards{owner: 2})
	_, err = svc.SuggestTasks(ctx, 7, SuggestInput{Text: "x"})
	assert.Equal(t, apierrors.KindNotFound, apierrors.KindOf(err))

	_, err = svc.SuggestTasks(ctx, 7, SuggestInput{Text: ""})
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))

	_, err = svc.SuggestTasks(context.Background(), 7, SuggestInput{Text: "x"})
	assert.Equal(t, apierrors.KindUnauthenticated, apierrors.KindOf(err))
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, "[]", stripFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripFence("```\n[]\n```"))
	assert.Equal(t, "[1]", stripFence("  [1] "))
}
