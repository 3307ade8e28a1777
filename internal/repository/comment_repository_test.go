package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/testutil"
)

func TestCommentRepository_ListNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	reader := testutil.CreateUser(t, db, "reader")
	outsider := testutil.CreateUser(t, db, "outsider")
	board := testutil.CreateBoard(t, db, "Home", owner, map[*models.User]models.Role{reader: models.RoleReader})
	category := testutil.CreateCategory(t, db, board, owner, "Work")
	goal := testutil.CreateGoal(t, db, category, owner, "Ship release")

	first := testutil.CreateComment(t, db, goal, owner, "first")
	second := testutil.CreateComment(t, db, goal, owner, "second")
	require.NoError(t, db.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)

	repo := NewCommentRepository(db)
	ctx := context.Background()

	comments, total, err := repo.List(ctx, CommentFilter{ViewerID: reader.ID, GoalID: &goal.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, "owner", comments[0].User.Username)

	comments, _, err = repo.List(ctx, CommentFilter{ViewerID: outsider.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	board := testutil.CreateBoard(t, db, "Home", owner, nil)
	category := testutil.CreateCategory(t, db, board, owner, "Work")
	goal := testutil.CreateGoal(t, db, category, owner, "Ship release")
	comment := testutil.CreateComment(t, db, goal, owner, "draft")

	repo := NewCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpdateText(ctx, comment.ID, "final"))
	reloaded, err := repo.FindVisibleByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", reloaded.Text)

	require.NoError(t, repo.Delete(ctx, comment.ID))
	_, err = repo.FindVisibleByID(ctx, comment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStore_AtomicRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	board := testutil.CreateBoard(t, db, "Home", owner, nil)

	store := NewStore(db)
	ctx := context.Background()

	err := store.Atomic(ctx, func(tx Store) error {
		if err := tx.Boards().UpdateTitle(ctx, board.ID, "Renamed"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	reloaded, err := store.Boards().FindByID(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", reloaded.Title)
}

func TestBotUserRepository_SaveCodeAndLink(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "alice")
	repo := NewBotUserRepository(db)
	ctx := context.Background()

	first, err := repo.SaveCode(ctx, 42, "AAAA-1111")
	require.NoError(t, err)
	second, err := repo.SaveCode(ctx, 42, "BBBB-2222")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = repo.FindByVerificationCode(ctx, "AAAA-1111")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByVerificationCode(ctx, "BBBB-2222")
	require.NoError(t, err)
	assert.False(t, found.IsVerified())

	require.NoError(t, repo.Link(ctx, found.ID, user.ID))
	linked, err := repo.FindByChatID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, linked.IsVerified())
	assert.Nil(t, linked.VerificationCode)
}
