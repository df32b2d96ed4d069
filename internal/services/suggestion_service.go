package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/tracker-api/internal/constants"
	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/validation"
)

// ChatCompleter is the part of the OpenAI client the suggestion service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SuggestionService extracts task suggestions from free text with an LLM.
// Suggestions are returned for review and never stored.
type SuggestionService struct {
	client ChatCompleter
	boards repository.BoardRepository
	now    func() time.Time
}

// NewSuggestionService creates a SuggestionService. A nil client makes every
// call fail as unavailable.
func NewSuggestionService(client ChatCompleter, boards repository.BoardRepository) *SuggestionService {
	return &SuggestionService{client: client, boards: boards, now: time.Now}
}

// NewOpenAIClient returns a client for apiKey, or nil when no key is configured.
func NewOpenAIClient(apiKey string) ChatCompleter {
	if apiKey == "" {
		return nil
	}
	return openai.NewClient(apiKey)
}

// SuggestInput is the text to extract tasks from.
type SuggestInput struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type suggestion struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

const suggestionPrompt = `You extract actionable tasks from text.

Current time: %s

Text:
%s

Reply with a JSON array only, no prose:
[{"title": "short task title", "description": "details", "due_date": "RFC 3339 timestamp or null"}]

Rules:
- Reply [] when the text contains no tasks.
- Convert relative deadlines such as "tomorrow" or "next week" to absolute timestamps.
- Use null when no deadline is stated.`

// SuggestTasks returns task drafts for boardID extracted from input.Text.
// Drafts failing the task schema are dropped.
func (s *SuggestionService) SuggestTasks(ctx context.Context, boardID uint64, input SuggestInput) ([]CreateTaskInput, error) {
	const op = "SuggestTasks"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if s.client == nil {
		return nil, fail(op, userID, apierrors.Unavailable(op, "Task suggestions are not configured"))
	}
	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	if _, err := s.boards.FindOwned(ctx, boardID, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgBoardNotFound)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(suggestionPrompt, s.now().UTC().Format(time.RFC3339), input.Text),
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fail(op, userID, &apierrors.Error{Kind: apierrors.KindUnavailable, Op: op, Message: "Suggestion provider failed", Err: err})
	}
	if len(resp.Choices) == 0 {
		return nil, fail(op, userID, apierrors.Unavailable(op, "Suggestion provider returned no answer"))
	}

	var raw []suggestion
	if err := json.Unmarshal([]byte(stripFence(resp.Choices[0].Message.Content)), &raw); err != nil {
		return nil, fail(op, userID, &apierrors.Error{Kind: apierrors.KindUnavailable, Op: op, Message: "Suggestion provider returned malformed output", Err: err})
	}

	drafts := make([]CreateTaskInput, 0, len(raw))
	for _, r := range raw {
		if len(drafts) == constants.MaxAIGeneratedTasks {
			break
		}
		draft := CreateTaskInput{
			Title:       strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Description),
			DueDate:     r.DueDate,
			BoardID:     &boardID,
		}
		if fields := validation.Struct(draft); fields != nil {
			log.WithFields(log.Fields{"op": op, "user": userID, "fields": fields}).Debug("dropping invalid suggestion")
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// stripFence removes a surrounding markdown code fence.
func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
