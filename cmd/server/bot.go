package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yukikurage/goal-boards-api/internal/bot"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the chat bot long-polling loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			return a.runBot(cmd.Context())
		},
	}
}

func (a *app) runBot(ctx context.Context) error {
	client := a.newTelegramClient()
	if client == nil {
		return errors.New("BOT_TOKEN is not set")
	}

	sessions, closeSessions, err := a.newSessionStore(ctx)
	if err != nil {
		return err
	}
	defer closeSessions()

	publisher, closePublisher := a.newPublisher()
	defer closePublisher()

	svc := a.buildServices(publisher, client)
	engine := bot.NewEngine(svc.BotUsers, svc.Goals, svc.Categories, sessions, client, a.log)
	poller := bot.NewPoller(client, engine, time.Duration(a.cfg.Bot.PollTimeout), a.log)

	a.log.Info("bot polling started", zap.String("session_backend", a.cfg.Bot.SessionBackend))
	return poller.Run(ctx)
}

func (a *app) newSessionStore(ctx context.Context) (bot.SessionStore, func(), error) {
	ttl := time.Duration(a.cfg.Bot.SessionTTL)
	if a.cfg.Bot.SessionBackend == "memory" {
		store := bot.NewMemorySessionStore(ttl)
		return store, store.Close, nil
	}

	client := a.newRedisClient()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return bot.NewRedisSessionStore(client, ttl), func() { _ = client.Close() }, nil
}
