package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramClient implements Transport against the Telegram Bot API.
type TelegramClient struct {
	api *tgbotapi.BotAPI
}

// NewTelegramClient creates a client for the bot identified by token.
// httpClient may be nil. No request is made until the first call.
func NewTelegramClient(apiURL, token string, httpClient tgbotapi.HTTPClient) *TelegramClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	api := &tgbotapi.BotAPI{
		Token:  token,
		Client: httpClient,
		Buffer: 100,
	}
	api.SetAPIEndpoint(strings.TrimRight(apiURL, "/") + "/bot%s/%s")
	return &TelegramClient{api: api}
}

// GetUpdates long-polls for updates with ids >= offset.
func (c *TelegramClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = int(timeout.Seconds())
	cfg.AllowedUpdates = []string{"message"}

	var raw []tgbotapi.Update
	err := c.do(ctx, "getUpdates", func() (err error) {
		raw, err = c.api.GetUpdates(cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, fromTelegramUpdate(u))
	}
	return updates, nil
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.do(ctx, "sendMessage", func() error {
		_, err := c.api.Request(tgbotapi.NewMessage(chatID, text))
		return err
	})
}

// do runs fn and returns early when ctx ends. The library has no context
// support, so an abandoned call finishes on the http client's own timeout.
func (c *TelegramClient) do(ctx context.Context, method string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err == nil {
			return nil
		}
		return fmt.Errorf("%s failed: %w", method, redactURL(err))
	}
}

// redactURL drops the request URL from transport errors. The URL path
// carries the bot token.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func fromTelegramUpdate(u tgbotapi.Update) Update {
	update := Update{UpdateID: int64(u.UpdateID)}
	if u.Message == nil {
		return update
	}
	msg := &Message{
		MessageID: int64(u.Message.MessageID),
		Text:      u.Message.Text,
	}
	if u.Message.Chat != nil {
		msg.Chat.ID = u.Message.Chat.ID
	}
	update.Message = msg
	return update
}
