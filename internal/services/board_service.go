package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/membership"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

// BoardService provides business logic for boards and their participants.
type BoardService struct {
	store  repository.Store
	policy *policy.Engine
	events *events.Emitter
}

// NewBoardService creates a new BoardService.
func NewBoardService(store repository.Store, engine *policy.Engine, emitter *events.Emitter) *BoardService {
	return &BoardService{
		store:  store,
		policy: engine,
		events: emitter,
	}
}

// CreateBoardInput represents parameters to create a new board.
type CreateBoardInput struct {
	Title   string
	OwnerID uint64
}

// CreateBoard creates a board with the caller as its owner.
func (s *BoardService) CreateBoard(ctx context.Context, input CreateBoardInput) (*models.Board, error) {
	title, err := normalizeTitle(input.Title, constants.MaxBoardTitleLength)
	if err != nil {
		return nil, err
	}

	board := &models.Board{Title: title}
	if err := s.store.Boards().CreateWithOwner(ctx, board, input.OwnerID); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	s.events.Emit(ctx, events.BoardCreated, board.ID, board.ID, input.OwnerID)
	return board, nil
}

// ListBoards returns live boards the user participates in.
func (s *BoardService) ListBoards(ctx context.Context, userID uint64, page utils.PaginationParams) ([]models.Board, int64, error) {
	boards, total, err := s.store.Boards().ListForUser(ctx, userID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list boards: %w", err)
	}
	return boards, total, nil
}

// GetBoard returns a board with its participants.
func (s *BoardService) GetBoard(ctx context.Context, userID, boardID uint64) (*models.Board, error) {
	board, err := s.readableBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.Boards().ListParticipants(ctx, board.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	board.Participants = participants
	return board, nil
}

// ParticipantInput names a participant by username.
type ParticipantInput struct {
	Username string
	Role     models.Role
}

// UpdateBoardInput holds the optional board changes. A nil Participants
// leaves membership untouched; an empty slice removes everyone but the owner.
type UpdateBoardInput struct {
	Title        *string
	Participants *[]ParticipantInput
}

// UpdateBoard renames the board and reconciles its participants.
func (s *BoardService) UpdateBoard(ctx context.Context, userID, boardID uint64, input UpdateBoardInput) (*models.Board, error) {
	board, err := s.readableBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(ctx, policy.User(userID), policy.BoardTarget(board), policy.OpWrite); err != nil {
		return nil, writeError(err, ErrNotBoardOwner)
	}

	var title *string
	if input.Title != nil {
		normalized, err := normalizeTitle(*input.Title, constants.MaxBoardTitleLength)
		if err != nil {
			return nil, err
		}
		title = &normalized
	}

	if input.Participants == nil {
		if title != nil && *title != board.Title {
			if err := s.store.Boards().UpdateTitle(ctx, board.ID, *title); err != nil {
				return nil, fmt.Errorf("failed to update board: %w", err)
			}
			board.Title = *title
		}
	} else {
		desired, err := s.resolveParticipants(ctx, *input.Participants)
		if err != nil {
			return nil, err
		}
		if _, err := membership.Reconcile(ctx, s.store, board, userID, desired, title); err != nil {
			return nil, err
		}
	}

	s.events.Emit(ctx, events.BoardUpdated, board.ID, board.ID, userID)
	return s.GetBoard(ctx, userID, board.ID)
}

// DeleteBoard soft-deletes the board and cascades to its categories and goals.
func (s *BoardService) DeleteBoard(ctx context.Context, userID, boardID uint64) error {
	board, err := s.readableBoard(ctx, userID, boardID)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(ctx, policy.User(userID), policy.BoardTarget(board), policy.OpWrite); err != nil {
		return writeError(err, ErrNotBoardOwner)
	}

	if err := s.store.Boards().SoftDelete(ctx, board.ID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	s.events.Emit(ctx, events.BoardDeleted, board.ID, board.ID, userID)
	return nil
}

func (s *BoardService) readableBoard(ctx context.Context, userID, boardID uint64) (*models.Board, error) {
	board, err := s.store.Boards().FindVisibleByID(ctx, boardID)
	if err != nil {
		return nil, lookupError(err, ErrBoardNotFound, "board")
	}
	if err := s.policy.Authorize(ctx, policy.User(userID), policy.BoardTarget(board), policy.OpRead); err != nil {
		return nil, readError(err, ErrBoardNotFound)
	}
	return board, nil
}

func (s *BoardService) resolveParticipants(ctx context.Context, inputs []ParticipantInput) ([]membership.Desired, error) {
	desired := make([]membership.Desired, 0, len(inputs))
	var unknown []string
	for _, in := range inputs {
		username := strings.TrimSpace(in.Username)
		user, err := s.store.Users().FindByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				unknown = append(unknown, username)
				continue
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		desired = append(desired, membership.Desired{UserID: user.ID, Role: in.Role})
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown users: %s", apierrors.ErrKindValidation, strings.Join(unknown, ", "))
	}
	return desired, nil
}
