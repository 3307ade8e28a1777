// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/goal-boards-api/internal/database"
	"github.com/yukikurage/goal-boards-api/internal/models"
)

// NewDB opens a migrated in-memory sqlite database and registers it with
// database.SetDB.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	database.SetDB(db)

	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateBoard inserts a board owned by owner plus the extra participants.
func CreateBoard(t *testing.T, db *gorm.DB, title string, owner *models.User, extra map[*models.User]models.Role) *models.Board {
	t.Helper()
	board := &models.Board{Title: title}
	require.NoError(t, db.Omit("Participants", "Categories").Create(board).Error)

	participants := []models.BoardParticipant{{BoardID: board.ID, UserID: owner.ID, Role: models.RoleOwner}}
	for user, role := range extra {
		participants = append(participants, models.BoardParticipant{BoardID: board.ID, UserID: user.ID, Role: role})
	}
	require.NoError(t, db.Omit("Board", "User").Create(&participants).Error)
	return board
}

func CreateCategory(t *testing.T, db *gorm.DB, board *models.Board, author *models.User, title string) *models.GoalCategory {
	t.Helper()
	category := &models.GoalCategory{
		Title:   title,
		BoardID: board.ID,
		UserID:  author.ID,
	}
	require.NoError(t, db.Omit("User", "Board").Create(category).Error)
	return category
}

func CreateGoal(t *testing.T, db *gorm.DB, category *models.GoalCategory, author *models.User, title string) *models.Goal {
	t.Helper()
	goal := &models.Goal{
		Title:      title,
		CategoryID: category.ID,
		UserID:     author.ID,
		Status:     models.GoalStatusToDo,
		Priority:   models.GoalPriorityMedium,
	}
	require.NoError(t, db.Omit("User", "Category").Create(goal).Error)
	return goal
}

func CreateComment(t *testing.T, db *gorm.DB, goal *models.Goal, author *models.User, text string) *models.GoalComment {
	t.Helper()
	comment := &models.GoalComment{
		Text:   text,
		GoalID: goal.ID,
		UserID: author.ID,
	}
	require.NoError(t, db.Omit("User", "Goal").Create(comment).Error)
	return comment
}
