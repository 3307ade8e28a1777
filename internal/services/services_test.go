package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/testutil"
)

type serviceEnv struct {
	db         *gorm.DB
	store      repository.Store
	recorder   *events.Recorder
	boards     *BoardService
	categories *CategoryService
	goals      *GoalService
	comments   *CommentService

	owner    *models.User
	writer   *models.User
	reader   *models.User
	outsider *models.User
	board    *models.Board
	category *models.GoalCategory
	goal     *models.Goal
}

func setupServiceEnv(t *testing.T) serviceEnv {
	t.Helper()

	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	engine := policy.NewEngine(store)
	recorder := &events.Recorder{}
	emitter := events.NewEmitter(recorder, nil)

	owner := testutil.CreateUser(t, db, "owner")
	writer := testutil.CreateUser(t, db, "writer")
	reader := testutil.CreateUser(t, db, "reader")
	outsider := testutil.CreateUser(t, db, "outsider")

	board := testutil.CreateBoard(t, db, "Home", owner, map[*models.User]models.Role{
		writer: models.RoleWriter,
		reader: models.RoleReader,
	})
	category := testutil.CreateCategory(t, db, board, owner, "Work")
	goal := testutil.CreateGoal(t, db, category, owner, "Ship release")

	return serviceEnv{
		db:         db,
		store:      store,
		recorder:   recorder,
		boards:     NewBoardService(store, engine, emitter),
		categories: NewCategoryService(store, engine, emitter),
		goals:      NewGoalService(store, engine, emitter),
		comments:   NewCommentService(store, engine, emitter),
		owner:      owner,
		writer:     writer,
		reader:     reader,
		outsider:   outsider,
		board:      board,
		category:   category,
		goal:       goal,
	}
}

func strPtr(s string) *string { return &s }
