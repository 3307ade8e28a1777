package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
)

var ErrAIUnavailable = fmt.Errorf("%w: goal suggestions are not configured", apierrors.ErrKindUnavailable)

// GoalDrafter suggests goals from free text.
type GoalDrafter interface {
	DraftGoals(ctx context.Context, categoryTitle, text string) ([]GoalDraft, error)
}

type AIService struct {
	client *openai.Client
}

// GoalDraft is a suggested goal. Drafts are never stored.
type GoalDraft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.GoalPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// NewAIService returns a service without a client when apiKey is empty.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// DraftGoals extracts goal suggestions from text using OpenAI GPT
func (s *AIService) DraftGoals(ctx context.Context, categoryTitle, text string) ([]GoalDraft, error) {
	if s.client == nil {
		return nil, ErrAIUnavailable
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", apierrors.ErrKindValidation)
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You help people plan. Extract concrete, achievable goals for the category %q from the text below.

Current time: %s

Text:
%s

Return a JSON array of goals in this format:
[
  {
    "title": "short goal title",
    "description": "what done looks like",
    "priority": "one of low, medium, high, critical",
    "due_date": "deadline in ISO8601 (e.g. 2025-10-28T23:59:59Z) or null when none is stated"
  }
]

Rules:
- Return [] when the text contains no goals
- Convert relative dates ("tomorrow", "next week") into absolute ones
- Return at most %d goals
- Return JSON only, no prose`, categoryTitle, currentTime, text, constants.MaxAIGeneratedGoals)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGoalDrafts(resp.Choices[0].Message.Content)
}

// parseGoalDrafts decodes the model output, tolerating a markdown code fence,
// and drops drafts without a title.
func parseGoalDrafts(content string) ([]GoalDraft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var drafts []GoalDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	out := make([]GoalDraft, 0, len(drafts))
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if len([]rune(d.Title)) > constants.MaxGoalTitleLength {
			d.Title = string([]rune(d.Title)[:constants.MaxGoalTitleLength])
		}
		if !d.Priority.Valid() {
			d.Priority = models.GoalPriorityMedium
		}
		out = append(out, d)
		if len(out) == constants.MaxAIGeneratedGoals {
			break
		}
	}
	return out, nil
}
