package bot

import (
	"context"
	"time"
)

// Update is one incoming bot update. Message is nil for update kinds the bot
// does not handle.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// Sender delivers a text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Transport is the messaging platform the bot talks to.
type Transport interface {
	Sender
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}
