package main

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yukikurage/goal-boards-api/internal/bot"
	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/handlers"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/services"
)

// newPublisher returns the AMQP publisher when a broker is configured. The
// returned close func is always safe to call.
func (a *app) newPublisher() (events.Publisher, func()) {
	if a.cfg.AMQP.URL == "" {
		return events.NopPublisher{}, func() {}
	}

	publisher, err := events.NewAMQPPublisher(a.cfg.AMQP.URL, a.cfg.AMQP.Exchange)
	if err != nil {
		// Events are best effort; the API keeps working without a broker.
		a.log.Warn("event publishing disabled", zap.Error(err))
		return events.NopPublisher{}, func() {}
	}
	return publisher, publisher.Close
}

// newTelegramClient returns nil when no bot token is configured.
func (a *app) newTelegramClient() *bot.TelegramClient {
	if a.cfg.Bot.Token == "" {
		return nil
	}
	timeout := time.Duration(a.cfg.Bot.PollTimeout) + 15*time.Second
	return bot.NewTelegramClient(a.cfg.Bot.APIURL, a.cfg.Bot.Token, &http.Client{Timeout: timeout})
}

func (a *app) newRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr(),
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
}

func (a *app) buildServices(publisher events.Publisher, notifier services.ChatNotifier) handlers.Services {
	store := repository.NewStore(a.db)
	engine := policy.NewEngine(store)
	emitter := events.NewEmitter(publisher, a.log)

	svc := handlers.Services{
		Auth:       services.NewAuthService(store.Users()),
		Boards:     services.NewBoardService(store, engine, emitter),
		Categories: services.NewCategoryService(store, engine, emitter),
		Goals:      services.NewGoalService(store, engine, emitter),
		Comments:   services.NewCommentService(store, engine, emitter),
		BotUsers:   services.NewBotUserService(store, notifier, emitter, a.log),
	}
	if a.cfg.OpenAI.APIKey != "" {
		svc.Drafter = services.NewAIService(a.cfg.OpenAI.APIKey)
	}
	return svc
}
