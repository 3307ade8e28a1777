package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/database"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

// ErrParticipantExists is returned by AddParticipants when a user already
// belongs to the board.
var ErrParticipantExists = fmt.Errorf("%w: user is already a participant of the board", apierrors.ErrKindConflict)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

// CreateWithOwner creates a board and its owner participant in a transaction
func (r *GormBoardRepository) CreateWithOwner(ctx context.Context, board *models.Board, ownerID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants", "Categories").Create(board).Error; err != nil {
			return err
		}

		owner := models.BoardParticipant{
			BoardID: board.ID,
			UserID:  ownerID,
			Role:    models.RoleOwner,
		}
		if err := tx.Omit("Board", "User").Create(&owner).Error; err != nil {
			return err
		}

		board.Participants = []models.BoardParticipant{owner}
		return nil
	})
}

func (r *GormBoardRepository) FindByID(ctx context.Context, id uint64) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *GormBoardRepository) FindVisibleByID(ctx context.Context, id uint64) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// ListForUser lists live boards the user participates in, newest first
func (r *GormBoardRepository) ListForUser(ctx context.Context, userID uint64, page utils.PaginationParams) ([]models.Board, int64, error) {
	query := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Board{}).
			Scopes(database.VisibleBoards(userID))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boards []models.Board
	if err := query().
		Order("boards.created_at DESC, boards.id DESC").
		Scopes(database.Paginate(page)).
		Find(&boards).Error; err != nil {
		return nil, 0, err
	}

	return boards, total, nil
}

func (r *GormBoardRepository) UpdateTitle(ctx context.Context, id uint64, title string) error {
	return r.db.WithContext(ctx).
		Model(&models.Board{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// SoftDelete flags the board and its categories and archives every goal under
// them. The flags are never cleared again.
func (r *GormBoardRepository) SoftDelete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Board{}).
			Where("id = ?", id).
			Update("is_deleted", true).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.GoalCategory{}).
			Where("board_id = ?", id).
			Update("is_deleted", true).Error; err != nil {
			return err
		}

		categoryIDs := tx.Model(&models.GoalCategory{}).Select("id").Where("board_id = ?", id)
		return tx.Model(&models.Goal{}).
			Where("category_id IN (?)", categoryIDs).
			Update("status", models.GoalStatusArchived).Error
	})
}

// ListParticipants lists every participant of a board
func (r *GormBoardRepository) ListParticipants(ctx context.Context, boardID uint64) ([]models.BoardParticipant, error) {
	var participants []models.BoardParticipant
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// FindParticipant finds a specific board participant
func (r *GormBoardRepository) FindParticipant(ctx context.Context, boardID, userID uint64) (*models.BoardParticipant, error) {
	var participant models.BoardParticipant
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *GormBoardRepository) AddParticipants(ctx context.Context, participants []models.BoardParticipant) error {
	if len(participants) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Omit("Board", "User").Create(&participants).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrParticipantExists
	}
	return err
}

func (r *GormBoardRepository) UpdateParticipantRole(ctx context.Context, participantID uint64, role models.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.BoardParticipant{}).
		Where("id = ?", participantID).
		Update("role", role).Error
}

func (r *GormBoardRepository) RemoveParticipants(ctx context.Context, boardID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id IN ?", boardID, userIDs).
		Delete(&models.BoardParticipant{}).Error
}
