package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/services"
	"github.com/yukikurage/goal-boards-api/internal/testutil"
)

type recordingSender struct {
	mu       sync.Mutex
	messages map[int64][]string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{messages: make(map[int64][]string)}
}

func (s *recordingSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[chatID] = append(s.messages[chatID], text)
	return nil
}

// take returns and clears the messages sent to chatID.
func (s *recordingSender) take(chatID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[chatID]
	delete(s.messages, chatID)
	return msgs
}

type botEnv struct {
	db       *gorm.DB
	engine   *Engine
	sender   *recordingSender
	sessions SessionStore
	chats    *services.BotUserService

	owner    *models.User
	reader   *models.User
	category *models.GoalCategory
	updateID int64
}

func setupBotEnv(t *testing.T, sessions SessionStore, log *zap.Logger) *botEnv {
	t.Helper()

	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	engine := policy.NewEngine(store)

	owner := testutil.CreateUser(t, db, "owner")
	reader := testutil.CreateUser(t, db, "reader")
	board := testutil.CreateBoard(t, db, "Home", owner, map[*models.User]models.Role{reader: models.RoleReader})
	category := testutil.CreateCategory(t, db, board, owner, "Work")

	if sessions == nil {
		memory := NewMemorySessionStore(time.Hour)
		t.Cleanup(memory.Close)
		sessions = memory
	}
	sender := newRecordingSender()
	chats := services.NewBotUserService(store, nil, nil, nil)

	return &botEnv{
		db: db,
		engine: NewEngine(
			chats,
			services.NewGoalService(store, engine, nil),
			services.NewCategoryService(store, engine, nil),
			sessions,
			sender,
			log,
		),
		sender:   sender,
		sessions: sessions,
		chats:    chats,
		owner:    owner,
		reader:   reader,
		category: category,
	}
}

func (env *botEnv) send(chatID int64, text string) []string {
	env.updateID++
	env.engine.HandleUpdate(context.Background(), Update{
		UpdateID: env.updateID,
		Message:  &Message{MessageID: env.updateID, Chat: Chat{ID: chatID}, Text: text},
	})
	return env.sender.take(chatID)
}

// link verifies chatID for user through the greeting flow.
func (env *botEnv) link(t *testing.T, chatID int64, user *models.User) {
	t.Helper()
	replies := env.send(chatID, "hi")
	require.Len(t, replies, 2)
	code := strings.TrimPrefix(replies[1], "Your verification code: ")
	_, err := env.chats.Verify(context.Background(), user.ID, code)
	require.NoError(t, err)
}

func TestEngine_CreateGoalConversation(t *testing.T) {
	env := setupBotEnv(t, nil, nil)
	const chatID = 100

	replies := env.send(chatID, "hi")
	require.Len(t, replies, 2)
	assert.Equal(t, "Hello", replies[0])
	assert.Regexp(t, `^Your verification code: [0-9A-F]{4}-[0-9A-F]{4}$`, replies[1])

	_, err := env.chats.Verify(context.Background(), env.owner.ID, strings.TrimPrefix(replies[1], "Your verification code: "))
	require.NoError(t, err)

	assert.Equal(t, []string{"You have no goals"}, env.send(chatID, "/goals"))
	assert.Equal(t, []string{"Select category to create goal:\n1) Work"}, env.send(chatID, "/create"))
	assert.Equal(t, []string{"Set goal title"}, env.send(chatID, "1"))

	session, err := env.sessions.Get(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, Session{State: StateAwaitingGoalTitle, CategoryID: env.category.ID}, session)

	assert.Equal(t, []string{"New goal created"}, env.send(chatID, "Buy milk"))
	_, err = env.sessions.Get(context.Background(), chatID)
	assert.ErrorIs(t, err, ErrNoSession)

	var goal models.Goal
	require.NoError(t, env.db.Where("title = ?", "Buy milk").First(&goal).Error)
	assert.Equal(t, env.owner.ID, goal.UserID)
	assert.Equal(t, env.category.ID, goal.CategoryID)

	assert.Equal(t, []string{"Your goals:\n1) Buy milk"}, env.send(chatID, "/goals"))
	assert.Equal(t, []string{"Canceled"}, env.send(chatID, "/cancel"))
}

func TestEngine_UnverifiedChatGetsNewCodeEachTime(t *testing.T) {
	env := setupBotEnv(t, nil, nil)

	first := env.send(7, "/goals")
	second := env.send(7, "hello?")
	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[1], second[1])

	botUser, err := env.chats.FindByChat(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, botUser.IsVerified())
}

func TestEngine_ReaderCannotPickCategory(t *testing.T) {
	env := setupBotEnv(t, nil, nil)
	const chatID = 200
	env.link(t, chatID, env.reader)

	require.Equal(t, []string{"Select category to create goal:\n1) Work"}, env.send(chatID, "/create"))
	assert.Equal(t, []string{"You cannot create a goal in the selected category."}, env.send(chatID, "1"))
	assert.Equal(t, []string{"Category not found"}, env.send(chatID, "not a number"))
	assert.Equal(t, []string{"Category not found"}, env.send(chatID, "999"))

	session, err := env.sessions.Get(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingCategorySelection, session.State)

	assert.Equal(t, []string{"Canceled"}, env.send(chatID, "/cancel"))
	assert.Empty(t, env.send(chatID, "1"))
}

func TestEngine_OutsiderHasNoCategories(t *testing.T) {
	env := setupBotEnv(t, nil, nil)
	outsider := testutil.CreateUser(t, env.db, "outsider")
	const chatID = 300
	env.link(t, chatID, outsider)

	assert.Equal(t, []string{"You have no categories"}, env.send(chatID, "/create"))
	_, err := env.sessions.Get(context.Background(), chatID)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Empty(t, env.send(chatID, "1"), "text without a conversation is dropped")
	assert.Equal(t, []string{"Command not found"}, env.send(chatID, "/start"))
}

func TestEngine_CategoryOnOtherBoardIsNotFound(t *testing.T) {
	env := setupBotEnv(t, nil, nil)
	outsider := testutil.CreateUser(t, env.db, "outsider")
	ownBoard := testutil.CreateBoard(t, env.db, "Own", outsider, nil)
	testutil.CreateCategory(t, env.db, ownBoard, outsider, "Mine")
	const chatID = 301
	env.link(t, chatID, outsider)

	require.Equal(t, []string{"Select category to create goal:\n2) Mine"}, env.send(chatID, "/create"))
	assert.Equal(t, []string{"Category not found"}, env.send(chatID, "1"))
}

func TestEngine_GoalCreateFailureClearsSession(t *testing.T) {
	env := setupBotEnv(t, nil, nil)
	const chatID = 400
	env.link(t, chatID, env.owner)

	env.send(chatID, "/create")
	require.Equal(t, []string{"Set goal title"}, env.send(chatID, "1"))

	// The category goes away between selection and title.
	require.NoError(t, env.db.Model(env.category).Update("is_deleted", true).Error)

	assert.Equal(t, []string{"Error when creating a goal. Try again."}, env.send(chatID, "Buy milk"))
	_, err := env.sessions.Get(context.Background(), chatID)
	assert.ErrorIs(t, err, ErrNoSession)
}

type failingSessionStore struct {
	SessionStore
	failSave bool
	failGet  bool
}

var errRedisDown = errors.New("redis down")

func (s *failingSessionStore) Get(ctx context.Context, chatID int64) (Session, error) {
	if s.failGet {
		return Session{}, errRedisDown
	}
	return s.SessionStore.Get(ctx, chatID)
}

func (s *failingSessionStore) Save(ctx context.Context, chatID int64, session Session) error {
	if s.failSave {
		return errRedisDown
	}
	return s.SessionStore.Save(ctx, chatID, session)
}

func TestEngine_SessionStoreFailure(t *testing.T) {
	memory := NewMemorySessionStore(time.Hour)
	t.Cleanup(memory.Close)
	store := &failingSessionStore{SessionStore: memory}
	core, logs := observer.New(zap.ErrorLevel)
	env := setupBotEnv(t, store, zap.New(core))
	const chatID = 500
	env.link(t, chatID, env.owner)

	store.failSave = true
	assert.Equal(t, []string{"Something went wrong. Try again later."}, env.send(chatID, "/create"))

	store.failSave = false
	env.send(chatID, "/create")
	require.Equal(t, []string{"Set goal title"}, env.send(chatID, "1"))

	store.failGet = true
	assert.Equal(t, []string{"Something went wrong. Try again later."}, env.send(chatID, "Buy milk"))
	store.failGet = false

	_, err := store.Get(context.Background(), chatID)
	assert.ErrorIs(t, err, ErrNoSession, "failed conversations are dropped")

	entries := logs.FilterMessage("session store failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(chatID), entries[0].ContextMap()["chat_id"])
}
