package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

const botVerifiedMessage = "Bot token verified"

var (
	ErrChatNotRegistered       = fmt.Errorf("%w: chat is not registered", apierrors.ErrKindNotFound)
	ErrInvalidVerificationCode = fmt.Errorf("%w: Invalid verification code", apierrors.ErrKindValidation)
	ErrChatAlreadyVerified     = fmt.Errorf("%w: chat is already linked to a user", apierrors.ErrKindConflict)
)

// ChatNotifier sends a text message to a chat.
type ChatNotifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// BotUserService links chats to application users.
type BotUserService struct {
	store    repository.Store
	notifier ChatNotifier
	events   *events.Emitter
	log      *zap.Logger
}

// NewBotUserService creates a new BotUserService. notifier may be nil when no
// bot token is configured.
func NewBotUserService(store repository.Store, notifier ChatNotifier, emitter *events.Emitter, log *zap.Logger) *BotUserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BotUserService{
		store:    store,
		notifier: notifier,
		events:   emitter,
		log:      log,
	}
}

// FindByChat returns the chat link, or ErrChatNotRegistered for a chat never seen.
func (s *BotUserService) FindByChat(ctx context.Context, chatID int64) (*models.BotUser, error) {
	botUser, err := s.store.BotUsers().FindByChatID(ctx, chatID)
	if err != nil {
		return nil, lookupError(err, ErrChatNotRegistered, "chat")
	}
	return botUser, nil
}

// IssueCode stores and returns a fresh verification code for the chat.
func (s *BotUserService) IssueCode(ctx context.Context, chatID int64) (string, error) {
	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return "", err
	}
	if _, err := s.store.BotUsers().SaveCode(ctx, chatID, code); err != nil {
		return "", fmt.Errorf("failed to save verification code: %w", err)
	}
	return code, nil
}

// Verify links the chat holding code to userID and notifies the chat.
func (s *BotUserService) Verify(ctx context.Context, userID uint64, code string) (*models.BotUser, error) {
	code = utils.NormalizeVerificationCode(code)
	if code == "" {
		return nil, ErrInvalidVerificationCode
	}

	botUser, err := s.store.BotUsers().FindByVerificationCode(ctx, code)
	if err != nil {
		return nil, lookupError(err, ErrInvalidVerificationCode, "chat")
	}
	if botUser.IsVerified() {
		return nil, ErrChatAlreadyVerified
	}

	if err := s.store.BotUsers().Link(ctx, botUser.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to link chat: %w", err)
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}
	botUser.UserID = &userID
	botUser.User = user
	botUser.VerificationCode = nil

	if s.notifier != nil {
		if err := s.notifier.SendMessage(ctx, botUser.ChatID, botVerifiedMessage); err != nil {
			s.log.Warn("failed to notify chat about verification",
				zap.Int64("chat_id", botUser.ChatID),
				zap.Error(err),
			)
		}
	}

	s.events.Emit(ctx, events.BotChatVerified, botUser.ID, 0, userID)
	return botUser, nil
}
