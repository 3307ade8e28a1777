package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// VisibleBoards keeps boards that are not soft-deleted and on which userID
// holds a participant row.
func VisibleBoards(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN board_participants ON board_participants.board_id = boards.id AND board_participants.user_id = ?", userID).
			Where("boards.is_deleted = ?", false)
	}
}

// VisibleCategories keeps categories whose own flag and board flag are clear.
func VisibleCategories(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN boards ON boards.id = goal_categories.board_id").
		Where("goal_categories.is_deleted = ? AND boards.is_deleted = ?", false, false)
}

// VisibleGoals keeps goals whose whole ancestor chain is live.
func VisibleGoals(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN goal_categories ON goal_categories.id = goals.category_id").
		Joins("JOIN boards ON boards.id = goal_categories.board_id").
		Where("goals.is_deleted = ? AND goal_categories.is_deleted = ? AND boards.is_deleted = ?", false, false, false)
}

// ParticipantOf restricts a query that already joins boards to boards userID
// participates in.
func ParticipantOf(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN board_participants ON board_participants.board_id = boards.id AND board_participants.user_id = ?", userID)
	}
}
