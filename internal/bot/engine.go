package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/metrics"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/services"
)

// Replies sent by the bot.
const (
	ReplyHello            = "Hello"
	ReplyVerificationCode = "Your verification code: %s"
	ReplyGoalsHeader      = "Your goals:"
	ReplyNoGoals          = "You have no goals"
	ReplySelectCategory   = "Select category to create goal:"
	ReplyNoCategories     = "You have no categories"
	ReplyCanceled         = "Canceled"
	ReplyUnknownCommand   = "Command not found"
	ReplyCategoryNotFound = "Category not found"
	ReplyCategoryReadOnly = "You cannot create a goal in the selected category."
	ReplySetGoalTitle     = "Set goal title"
	ReplyGoalCreated      = "New goal created"
	ReplyGoalCreateFailed = "Error when creating a goal. Try again."
	ReplySomethingWrong   = "Something went wrong. Try again later."
)

const (
	commandGoals    = "/goals"
	commandCreate   = "/create"
	commandCancel   = "/cancel"
	outcomeHandled  = "handled"
	outcomeDropped  = "dropped"
	outcomeFailed   = "failed"
	stateUnverified = "unverified"
)

// ChatUsers resolves chats to linked users.
type ChatUsers interface {
	FindByChat(ctx context.Context, chatID int64) (*models.BotUser, error)
	IssueCode(ctx context.Context, chatID int64) (string, error)
}

// Goals is the part of the goal service the bot drives.
type Goals interface {
	ListGoals(ctx context.Context, filter repository.GoalFilter) ([]models.Goal, int64, error)
	CategoryForNewGoal(ctx context.Context, userID, categoryID uint64) (*models.GoalCategory, error)
	CreateGoal(ctx context.Context, input services.CreateGoalInput) (*models.Goal, error)
}

// Categories lists and loads the categories a user can see.
type Categories interface {
	ListCategories(ctx context.Context, filter repository.CategoryFilter) ([]models.GoalCategory, int64, error)
	GetCategory(ctx context.Context, userID, categoryID uint64) (*models.GoalCategory, error)
}

// Engine runs the per-chat conversation.
type Engine struct {
	users      ChatUsers
	goals      Goals
	categories Categories
	sessions   SessionStore
	sender     Sender
	log        *zap.Logger
}

func NewEngine(users ChatUsers, goals Goals, categories Categories, sessions SessionStore, sender Sender, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		users:      users,
		goals:      goals,
		categories: categories,
		sessions:   sessions,
		sender:     sender,
		log:        log,
	}
}

// HandleUpdate processes one update. Failures are answered in the chat and
// logged; nothing is returned to the poller.
func (e *Engine) HandleUpdate(ctx context.Context, update Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	log := e.log.With(zap.Int64("chat_id", chatID), zap.Int64("update_id", update.UpdateID))

	botUser, err := e.users.FindByChat(ctx, chatID)
	switch {
	case errors.Is(err, services.ErrChatNotRegistered):
		e.greet(ctx, log, chatID)
		return
	case err != nil:
		log.Error("failed to load chat", zap.Error(err))
		e.reply(ctx, log, chatID, ReplySomethingWrong)
		metrics.IncrementBotUpdate(stateUnverified, outcomeFailed)
		return
	case !botUser.IsVerified():
		e.greet(ctx, log, chatID)
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if strings.HasPrefix(text, "/") {
		e.command(ctx, log, chatID, *botUser.UserID, text)
		return
	}

	session, err := e.sessions.Get(ctx, chatID)
	if errors.Is(err, ErrNoSession) {
		metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeDropped)
		return
	}
	if err != nil {
		e.sessionFailure(ctx, log, chatID, StateAwaitingCommand, err)
		return
	}

	e.dispatch(ctx, log, chatID, *botUser.UserID, session, text)
}

// greet issues a fresh verification code to an unverified chat.
func (e *Engine) greet(ctx context.Context, log *zap.Logger, chatID int64) {
	code, err := e.users.IssueCode(ctx, chatID)
	if err != nil {
		log.Error("failed to issue verification code", zap.Error(err))
		e.reply(ctx, log, chatID, ReplySomethingWrong)
		metrics.IncrementBotUpdate(stateUnverified, outcomeFailed)
		return
	}
	e.reply(ctx, log, chatID, ReplyHello)
	e.reply(ctx, log, chatID, fmt.Sprintf(ReplyVerificationCode, code))
	metrics.IncrementBotUpdate(stateUnverified, outcomeHandled)
}

func (e *Engine) command(ctx context.Context, log *zap.Logger, chatID int64, userID uint64, text string) {
	switch text {
	case commandGoals:
		e.listGoals(ctx, log, chatID, userID)
	case commandCreate:
		e.startCreate(ctx, log, chatID, userID)
	case commandCancel:
		if err := e.sessions.Delete(ctx, chatID); err != nil {
			log.Warn("failed to delete session", zap.Error(err))
		}
		e.reply(ctx, log, chatID, ReplyCanceled)
		metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeHandled)
	default:
		e.reply(ctx, log, chatID, ReplyUnknownCommand)
		metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeHandled)
	}
}

func (e *Engine) dispatch(ctx context.Context, log *zap.Logger, chatID int64, userID uint64, session Session, text string) {
	switch session.State {
	case StateAwaitingCategorySelection:
		e.selectCategory(ctx, log, chatID, userID, text)
	case StateAwaitingGoalTitle:
		e.createGoal(ctx, log, chatID, userID, session, text)
	default:
		metrics.IncrementBotUpdate(string(session.State), outcomeDropped)
	}
}

func (e *Engine) listGoals(ctx context.Context, log *zap.Logger, chatID int64, userID uint64) {
	goals, _, err := e.goals.ListGoals(ctx, repository.GoalFilter{ViewerID: userID, ExcludeArchived: true})
	if err != nil {
		log.Error("failed to list goals", zap.Error(err))
		e.reply(ctx, log, chatID, ReplySomethingWrong)
		metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeFailed)
		return
	}

	if len(goals) == 0 {
		e.reply(ctx, log, chatID, ReplyNoGoals)
	} else {
		lines := make([]string, 0, len(goals)+1)
		lines = append(lines, ReplyGoalsHeader)
		for _, g := range goals {
			lines = append(lines, fmt.Sprintf("%d) %s", g.ID, g.Title))
		}
		e.reply(ctx, log, chatID, strings.Join(lines, "\n"))
	}
	metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeHandled)
}

func (e *Engine) startCreate(ctx context.Context, log *zap.Logger, chatID int64, userID uint64) {
	categories, _, err := e.categories.ListCategories(ctx, repository.CategoryFilter{ViewerID: userID})
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		e.reply(ctx, log, chatID, ReplySomethingWrong)
		metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeFailed)
		return
	}
	if len(categories) == 0 {
		e.reply(ctx, log, chatID, ReplyNoCategories)
		metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeHandled)
		return
	}

	if err := e.sessions.Save(ctx, chatID, Session{State: StateAwaitingCategorySelection}); err != nil {
		e.sessionFailure(ctx, log, chatID, StateAwaitingCommand, err)
		return
	}

	lines := make([]string, 0, len(categories)+1)
	lines = append(lines, ReplySelectCategory)
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("%d) %s", c.ID, c.Title))
	}
	e.reply(ctx, log, chatID, strings.Join(lines, "\n"))
	metrics.IncrementBotUpdate(string(StateAwaitingCommand), outcomeHandled)
}

func (e *Engine) selectCategory(ctx context.Context, log *zap.Logger, chatID int64, userID uint64, text string) {
	state := string(StateAwaitingCategorySelection)

	categoryID, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		e.reply(ctx, log, chatID, ReplyCategoryNotFound)
		metrics.IncrementBotUpdate(state, outcomeHandled)
		return
	}

	// Categories on boards the user cannot see are reported as missing.
	category, err := e.categories.GetCategory(ctx, userID, categoryID)
	if err == nil {
		category, err = e.goals.CategoryForNewGoal(ctx, userID, category.ID)
	}
	switch {
	case errors.Is(err, apierrors.ErrKindForbiddenCreation):
		e.reply(ctx, log, chatID, ReplyCategoryReadOnly)
		metrics.IncrementBotUpdate(state, outcomeHandled)
		return
	case errors.Is(err, apierrors.ErrKindValidation), errors.Is(err, apierrors.ErrKindNotFound):
		e.reply(ctx, log, chatID, ReplyCategoryNotFound)
		metrics.IncrementBotUpdate(state, outcomeHandled)
		return
	case err != nil:
		log.Error("failed to load category", zap.Uint64("category_id", categoryID), zap.Error(err))
		e.reply(ctx, log, chatID, ReplySomethingWrong)
		metrics.IncrementBotUpdate(state, outcomeFailed)
		return
	}

	if err := e.sessions.Save(ctx, chatID, Session{State: StateAwaitingGoalTitle, CategoryID: category.ID}); err != nil {
		e.sessionFailure(ctx, log, chatID, StateAwaitingCategorySelection, err)
		return
	}
	e.reply(ctx, log, chatID, ReplySetGoalTitle)
	metrics.IncrementBotUpdate(state, outcomeHandled)
}

func (e *Engine) createGoal(ctx context.Context, log *zap.Logger, chatID int64, userID uint64, session Session, text string) {
	state := string(StateAwaitingGoalTitle)

	_, createErr := e.goals.CreateGoal(ctx, services.CreateGoalInput{
		UserID:     userID,
		CategoryID: session.CategoryID,
		Title:      text,
		Source:     services.SourceBot,
	})

	if err := e.sessions.Delete(ctx, chatID); err != nil {
		log.Warn("failed to delete session", zap.Error(err))
	}

	if createErr != nil {
		log.Info("goal creation failed",
			zap.Uint64("category_id", session.CategoryID),
			zap.Error(createErr),
		)
		e.reply(ctx, log, chatID, ReplyGoalCreateFailed)
		metrics.IncrementBotUpdate(state, outcomeFailed)
		return
	}
	e.reply(ctx, log, chatID, ReplyGoalCreated)
	metrics.IncrementBotUpdate(state, outcomeHandled)
}

// sessionFailure answers a transient session store error and drops the
// conversation so the chat starts over.
func (e *Engine) sessionFailure(ctx context.Context, log *zap.Logger, chatID int64, state State, err error) {
	log.Error("session store failed", zap.Error(err))
	if delErr := e.sessions.Delete(ctx, chatID); delErr != nil {
		log.Warn("failed to delete session", zap.Error(delErr))
	}
	e.reply(ctx, log, chatID, ReplySomethingWrong)
	metrics.IncrementBotUpdate(string(state), outcomeFailed)
}

func (e *Engine) reply(ctx context.Context, log *zap.Logger, chatID int64, text string) {
	if err := e.sender.SendMessage(ctx, chatID, text); err != nil {
		log.Warn("failed to send message", zap.Error(err))
	}
}
