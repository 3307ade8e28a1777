// Package policy decides who may read or modify boards and everything under
// them. Every decision is derived from the subject's participant row on the
// owning board at call time.
package policy

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/repository"
)

type Kind string

const (
	KindBoard    Kind = "board"
	KindCategory Kind = "category"
	KindGoal     Kind = "goal"
	KindComment  Kind = "comment"
)

type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

var (
	ErrForbidden         = fmt.Errorf("%w: access denied", apierrors.ErrKindForbidden)
	ErrForbiddenCreation = fmt.Errorf("%w: you are not allowed to create objects here", apierrors.ErrKindForbiddenCreation)

	ErrDeletedBoard    = fmt.Errorf("%w: creation is not allowed in a deleted board", apierrors.ErrKindValidation)
	ErrDeletedCategory = fmt.Errorf("%w: creation is not allowed in a deleted category", apierrors.ErrKindValidation)
	ErrDeletedGoal     = fmt.Errorf("%w: creation is not allowed in a deleted goal", apierrors.ErrKindValidation)
)

// Subject is the caller. The zero value is unauthenticated.
type Subject struct {
	UserID uint64
}

func User(id uint64) Subject { return Subject{UserID: id} }

func (s Subject) Authenticated() bool { return s.UserID != 0 }

// Target identifies the object being accessed. Build it with the *Target
// constructors so the owning board can be resolved.
type Target struct {
	Kind       Kind
	ID         uint64
	BoardID    uint64
	CategoryID uint64
	GoalID     uint64
	AuthorID   uint64
}

func BoardTarget(b *models.Board) Target {
	return Target{Kind: KindBoard, ID: b.ID, BoardID: b.ID}
}

func CategoryTarget(c *models.GoalCategory) Target {
	return Target{Kind: KindCategory, ID: c.ID, BoardID: c.BoardID, AuthorID: c.UserID}
}

func GoalTarget(g *models.Goal) Target {
	return Target{Kind: KindGoal, ID: g.ID, CategoryID: g.CategoryID, AuthorID: g.UserID}
}

func CommentTarget(c *models.GoalComment) Target {
	return Target{Kind: KindComment, ID: c.ID, GoalID: c.GoalID, AuthorID: c.UserID}
}

// Decide is the permission matrix. role is nil when the subject has no
// participant row on the owning board.
func Decide(role *models.Role, kind Kind, op Op, subjectID, authorID uint64) bool {
	if role == nil || subjectID == 0 {
		return false
	}
	if op == OpRead {
		return true
	}
	switch kind {
	case KindBoard:
		return *role == models.RoleOwner
	case KindCategory, KindGoal:
		return role.CanWrite()
	case KindComment:
		return subjectID == authorID
	default:
		return false
	}
}

type Engine struct {
	store repository.Store
}

func NewEngine(store repository.Store) *Engine {
	return &Engine{store: store}
}

// Authorize returns nil when subject may perform op on target, an error
// wrapping ErrForbidden when it may not, and any other error when the store
// failed.
func (e *Engine) Authorize(ctx context.Context, subject Subject, target Target, op Op) error {
	_, err := e.AuthorizeOnBoard(ctx, subject, target, op)
	return err
}

// AuthorizeOnBoard is Authorize that also returns the id of the board owning
// target.
func (e *Engine) AuthorizeOnBoard(ctx context.Context, subject Subject, target Target, op Op) (uint64, error) {
	if !subject.Authenticated() {
		return 0, ErrForbidden
	}

	boardID, err := e.owningBoard(ctx, target)
	if err != nil {
		return 0, err
	}

	role, err := e.RoleOf(ctx, subject, boardID)
	if err != nil {
		return 0, err
	}

	if !Decide(role, target.Kind, op, subject.UserID, target.AuthorID) {
		return 0, ErrForbidden
	}
	return boardID, nil
}

// RoleOf returns the subject's role on the board, or nil when it holds none.
func (e *Engine) RoleOf(ctx context.Context, subject Subject, boardID uint64) (*models.Role, error) {
	if !subject.Authenticated() {
		return nil, nil
	}
	participant, err := e.store.Boards().FindParticipant(ctx, boardID, subject.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	return &participant.Role, nil
}

// CanCreateCategory checks that board is live and subject may write to it.
func (e *Engine) CanCreateCategory(ctx context.Context, subject Subject, board *models.Board) error {
	if board.IsDeleted {
		return ErrDeletedBoard
	}
	return e.canCreateOn(ctx, subject, board.ID)
}

// CanCreateGoal checks that category is live and subject may write to its board.
func (e *Engine) CanCreateGoal(ctx context.Context, subject Subject, category *models.GoalCategory) error {
	if category.IsDeleted {
		return ErrDeletedCategory
	}
	return e.canCreateOn(ctx, subject, category.BoardID)
}

// CanCreateComment checks that goal is live and subject may write to its board.
func (e *Engine) CanCreateComment(ctx context.Context, subject Subject, goal *models.Goal) error {
	if goal.IsDeleted {
		return ErrDeletedGoal
	}
	category, err := e.store.Categories().FindByID(ctx, goal.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category.IsDeleted {
		return ErrDeletedCategory
	}
	return e.canCreateOn(ctx, subject, category.BoardID)
}

func (e *Engine) canCreateOn(ctx context.Context, subject Subject, boardID uint64) error {
	role, err := e.RoleOf(ctx, subject, boardID)
	if err != nil {
		return err
	}
	if role == nil || !role.CanWrite() {
		return ErrForbiddenCreation
	}
	return nil
}

func (e *Engine) owningBoard(ctx context.Context, target Target) (uint64, error) {
	switch target.Kind {
	case KindBoard, KindCategory:
		return target.BoardID, nil
	case KindGoal:
		return e.boardOfCategory(ctx, target.CategoryID)
	case KindComment:
		goal, err := e.store.Goals().FindByID(ctx, target.GoalID)
		if err != nil {
			return 0, fmt.Errorf("failed to load goal: %w", err)
		}
		return e.boardOfCategory(ctx, goal.CategoryID)
	default:
		return 0, fmt.Errorf("unknown target kind %q", target.Kind)
	}
}

func (e *Engine) boardOfCategory(ctx context.Context, categoryID uint64) (uint64, error) {
	category, err := e.store.Categories().FindByID(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to load category: %w", err)
	}
	return category.BoardID, nil
}
