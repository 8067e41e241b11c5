package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/workbridg/workbridg-web/internal/constants"
)

var (
	ErrBriefRequired  = errors.New("describe the project first")
	ErrBriefTooLong   = errors.New("project description is too long")
	ErrDraftEmpty     = errors.New("AI did not return a usable draft")
	ErrDraftMalformed = errors.New("AI returned an unreadable draft")
)

// DraftService turns a client's free-text brief into a project draft.
type DraftService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// ProjectDraft is a suggested project; the client reviews it before posting.
type ProjectDraft struct {
	Title       string
	Description string
	Deadline    *time.Time
}

func NewDraftService(apiKey string) *DraftService {
	return NewDraftServiceWithConfig(openai.DefaultConfig(apiKey))
}

func NewDraftServiceWithConfig(config openai.ClientConfig) *DraftService {
	return &DraftService{
		client: openai.NewClientWithConfig(config),
		model:  openai.GPT4oMini,
		now:    time.Now,
	}
}

type draftPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    *string `json:"deadline"`
}

// DraftProject asks the model for a title, a description and a deadline.
func (s *DraftService) DraftProject(ctx context.Context, brief string) (*ProjectDraft, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, ErrBriefRequired
	}
	if len([]rune(brief)) > constants.MaxDraftBriefLength {
		return nil, ErrBriefTooLong
	}

	today := s.now().Format("2006-01-02")
	prompt := fmt.Sprintf(`You help clients of a freelance marketplace post projects.
Today is %s.

Client brief:
%s

Reply with a JSON object only:
{
  "title": "short project title",
  "description": "clear description a freelancer can bid on",
  "deadline": "YYYY-MM-DD, or null when the brief gives no timing"
}
Turn relative timing ("in two weeks", "by Friday") into a date.`, today, brief)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrDraftEmpty
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDraftMalformed, err)
	}

	draft := &ProjectDraft{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
	}
	if draft.Title == "" {
		return nil, ErrDraftEmpty
	}
	if payload.Deadline != nil {
		if d, err := time.Parse("2006-01-02", strings.TrimSpace(*payload.Deadline)); err == nil && !d.Before(s.startOfToday()) {
			draft.Deadline = &d
		}
	}
	return draft, nil
}

func (s *DraftService) startOfToday() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
