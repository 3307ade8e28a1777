package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/testutil"
)

func rolePtr(r models.Role) *models.Role { return &r }

func TestDecide(t *testing.T) {
	const me, someoneElse uint64 = 1, 2

	cases := []struct {
		name   string
		role   *models.Role
		kind   Kind
		op     Op
		author uint64
		allow  bool
	}{
		{name: "non participant read board", role: nil, kind: KindBoard, op: OpRead, allow: false},
		{name: "non participant read comment", role: nil, kind: KindComment, op: OpRead, allow: false},
		{name: "non participant write own comment", role: nil, kind: KindComment, op: OpWrite, author: me, allow: false},

		{name: "reader read board", role: rolePtr(models.RoleReader), kind: KindBoard, op: OpRead, allow: true},
		{name: "reader read goal", role: rolePtr(models.RoleReader), kind: KindGoal, op: OpRead, allow: true},
		{name: "reader read comment", role: rolePtr(models.RoleReader), kind: KindComment, op: OpRead, allow: true},
		{name: "reader write board", role: rolePtr(models.RoleReader), kind: KindBoard, op: OpWrite, allow: false},
		{name: "reader write category", role: rolePtr(models.RoleReader), kind: KindCategory, op: OpWrite, allow: false},
		{name: "reader write goal", role: rolePtr(models.RoleReader), kind: KindGoal, op: OpWrite, allow: false},
		{name: "reader write own comment", role: rolePtr(models.RoleReader), kind: KindComment, op: OpWrite, author: me, allow: true},

		{name: "writer write board", role: rolePtr(models.RoleWriter), kind: KindBoard, op: OpWrite, allow: false},
		{name: "writer write category", role: rolePtr(models.RoleWriter), kind: KindCategory, op: OpWrite, allow: true},
		{name: "writer write goal", role: rolePtr(models.RoleWriter), kind: KindGoal, op: OpWrite, allow: true},
		{name: "writer write other comment", role: rolePtr(models.RoleWriter), kind: KindComment, op: OpWrite, author: someoneElse, allow: false},

		{name: "owner write board", role: rolePtr(models.RoleOwner), kind: KindBoard, op: OpWrite, allow: true},
		{name: "owner write goal", role: rolePtr(models.RoleOwner), kind: KindGoal, op: OpWrite, allow: true},
		{name: "owner write other comment", role: rolePtr(models.RoleOwner), kind: KindComment, op: OpWrite, author: someoneElse, allow: false},
		{name: "owner write own comment", role: rolePtr(models.RoleOwner), kind: KindComment, op: OpWrite, author: me, allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.role, tc.kind, tc.op, me, tc.author)
			assert.Equal(t, tc.allow, got)
		})
	}
}

func TestDecide_Unauthenticated(t *testing.T) {
	assert.False(t, Decide(rolePtr(models.RoleOwner), KindBoard, OpRead, 0, 0))
}

type engineFixture struct {
	engine   *Engine
	owner    *models.User
	writer   *models.User
	reader   *models.User
	outsider *models.User
	board    *models.Board
	category *models.GoalCategory
	goal     *models.Goal
	comment  *models.GoalComment
}

func setupEngine(t *testing.T) engineFixture {
	t.Helper()
	db := testutil.NewDB(t)

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
	comment := testutil.CreateComment(t, db, goal, reader, "nice")

	return engineFixture{
		engine:   NewEngine(repository.NewStore(db)),
		owner:    owner,
		writer:   writer,
		reader:   reader,
		outsider: outsider,
		board:    board,
		category: category,
		goal:     goal,
		comment:  comment,
	}
}

func TestEngine_Authorize(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	require.NoError(t, f.engine.Authorize(ctx, User(f.reader.ID), GoalTarget(f.goal), OpRead))
	require.NoError(t, f.engine.Authorize(ctx, User(f.writer.ID), GoalTarget(f.goal), OpWrite))
	require.NoError(t, f.engine.Authorize(ctx, User(f.owner.ID), BoardTarget(f.board), OpWrite))
	require.NoError(t, f.engine.Authorize(ctx, User(f.reader.ID), CommentTarget(f.comment), OpWrite))

	err := f.engine.Authorize(ctx, User(f.writer.ID), BoardTarget(f.board), OpWrite)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, apierrors.ErrKindForbidden)

	err = f.engine.Authorize(ctx, User(f.owner.ID), CommentTarget(f.comment), OpWrite)
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.engine.Authorize(ctx, User(f.outsider.ID), CategoryTarget(f.category), OpRead)
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.engine.Authorize(ctx, Subject{}, BoardTarget(f.board), OpRead)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEngine_CreationChecks(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	require.NoError(t, f.engine.CanCreateCategory(ctx, User(f.writer.ID), f.board))
	require.NoError(t, f.engine.CanCreateGoal(ctx, User(f.owner.ID), f.category))
	require.NoError(t, f.engine.CanCreateComment(ctx, User(f.writer.ID), f.goal))

	err := f.engine.CanCreateGoal(ctx, User(f.reader.ID), f.category)
	assert.ErrorIs(t, err, ErrForbiddenCreation)
	assert.ErrorIs(t, err, apierrors.ErrKindForbiddenCreation)
	assert.False(t, errors.Is(err, apierrors.ErrKindForbidden))

	err = f.engine.CanCreateCategory(ctx, User(f.outsider.ID), f.board)
	assert.ErrorIs(t, err, ErrForbiddenCreation)

	deletedCategory := *f.category
	deletedCategory.IsDeleted = true
	err = f.engine.CanCreateGoal(ctx, User(f.owner.ID), &deletedCategory)
	assert.ErrorIs(t, err, apierrors.ErrKindValidation)

	deletedBoard := *f.board
	deletedBoard.IsDeleted = true
	err = f.engine.CanCreateCategory(ctx, User(f.owner.ID), &deletedBoard)
	assert.ErrorIs(t, err, ErrDeletedBoard)
}
