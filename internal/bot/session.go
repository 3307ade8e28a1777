package bot

import (
	"context"
	"errors"
)

// State is the step a chat conversation is in.
type State string

const (
	StateAwaitingCommand           State = "awaiting_command"
	StateAwaitingCategorySelection State = "awaiting_category_selection"
	StateAwaitingGoalTitle         State = "awaiting_goal_title"
)

// Session is the per-chat conversation state. CategoryID is set once a
// category has been chosen.
type Session struct {
	State      State  `json:"state"`
	CategoryID uint64 `json:"category_id,omitempty"`
}

// ErrNoSession is returned by SessionStore.Get for a chat without a conversation.
var ErrNoSession = errors.New("no session")

// SessionStore keeps conversation sessions by chat id. Implementations expire
// sessions that have not been saved for their TTL.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Save(ctx context.Context, chatID int64, session Session) error
	Delete(ctx context.Context, chatID int64) error
}
