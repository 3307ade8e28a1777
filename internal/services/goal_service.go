package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/metrics"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
)

// Goal creation sources, used as a metrics label.
const (
	SourceAPI = "api"
	SourceBot = "bot"
)

// GoalService provides business logic for goals.
type GoalService struct {
	store  repository.Store
	policy *policy.Engine
	events *events.Emitter
}

// NewGoalService creates a new GoalService.
func NewGoalService(store repository.Store, engine *policy.Engine, emitter *events.Emitter) *GoalService {
	return &GoalService{
		store:  store,
		policy: engine,
		events: emitter,
	}
}

// CreateGoalInput represents parameters to create a new goal.
type CreateGoalInput struct {
	UserID      uint64
	CategoryID  uint64
	Title       string
	Description *string
	Status      models.GoalStatus
	Priority    models.GoalPriority
	DueDate     *time.Time
	Source      string
}

// CreateGoal creates a goal in a category the caller can write to.
func (s *GoalService) CreateGoal(ctx context.Context, input CreateGoalInput) (*models.Goal, error) {
	title, err := normalizeTitle(input.Title, constants.MaxGoalTitleLength)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.GoalStatusToDo
	}
	if !status.Valid() {
		return nil, ErrInvalidGoalStatus
	}

	priority := input.Priority
	if priority == "" {
		priority = models.GoalPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	category, err := s.CategoryForNewGoal(ctx, input.UserID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:      input.UserID,
		CategoryID:  category.ID,
		Title:       title,
		Description: normalizeDescription(input.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
	}
	if err := s.store.Goals().Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	source := input.Source
	if source == "" {
		source = SourceAPI
	}
	metrics.IncrementGoalsCreated(source)
	s.events.Emit(ctx, events.GoalCreated, goal.ID, category.BoardID, input.UserID)
	return goal, nil
}

// CategoryForNewGoal loads a category and checks that userID may add goals
// to it. An unknown category id is a validation error; a category on a board
// where the user is not an owner or writer gives ErrForbiddenCreation.
func (s *GoalService) CategoryForNewGoal(ctx context.Context, userID, categoryID uint64) (*models.GoalCategory, error) {
	category, err := s.store.Categories().FindByID(ctx, categoryID)
	if err != nil {
		return nil, lookupError(err, ErrParentCategoryNotFound, "category")
	}

	if err := s.policy.CanCreateGoal(ctx, policy.User(userID), category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListGoals returns visible goals on the viewer's boards.
func (s *GoalService) ListGoals(ctx context.Context, filter repository.GoalFilter) ([]models.Goal, int64, error) {
	goals, total, err := s.store.Goals().List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, total, nil
}

// GetGoal returns a visible goal the caller can read.
func (s *GoalService) GetGoal(ctx context.Context, userID, goalID uint64) (*models.Goal, error) {
	goal, err := s.store.Goals().FindVisibleByID(ctx, goalID)
	if err != nil {
		return nil, lookupError(err, ErrGoalNotFound, "goal")
	}
	if err := s.policy.Authorize(ctx, policy.User(userID), policy.GoalTarget(goal), policy.OpRead); err != nil {
		return nil, readError(err, ErrGoalNotFound)
	}
	return goal, nil
}

// UpdateGoalInput holds the optional goal changes.
type UpdateGoalInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *models.GoalStatus
	Priority         *models.GoalPriority
	DueDate          *time.Time
	ClearDueDate     bool
}

// UpdateGoal applies a partial update. The creator and category never change.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID uint64, input UpdateGoalInput) (*models.Goal, error) {
	goal, boardID, err := s.writableGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := normalizeTitle(*input.Title, constants.MaxGoalTitleLength)
		if err != nil {
			return nil, err
		}
		goal.Title = title
	}
	if input.ClearDescription {
		goal.Description = nil
	} else if input.Description != nil {
		goal.Description = normalizeDescription(input.Description)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidGoalStatus
		}
		goal.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		goal.Priority = *input.Priority
	}
	if input.ClearDueDate {
		goal.DueDate = nil
	} else if input.DueDate != nil {
		goal.DueDate = input.DueDate
	}

	if err := s.store.Goals().Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	s.events.Emit(ctx, events.GoalUpdated, goal.ID, boardID, userID)
	return goal, nil
}

// ArchiveGoal handles goal deletion: the row stays and its status becomes
// archived. Archiving an archived goal succeeds.
func (s *GoalService) ArchiveGoal(ctx context.Context, userID, goalID uint64) error {
	goal, boardID, err := s.writableGoal(ctx, userID, goalID)
	if err != nil {
		return err
	}

	if err := s.store.Goals().Archive(ctx, goal.ID); err != nil {
		return fmt.Errorf("failed to archive goal: %w", err)
	}

	s.events.Emit(ctx, events.GoalArchived, goal.ID, boardID, userID)
	return nil
}

// writableGoal returns the goal and the id of its board.
func (s *GoalService) writableGoal(ctx context.Context, userID, goalID uint64) (*models.Goal, uint64, error) {
	goal, err := s.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, 0, err
	}
	boardID, err := s.policy.AuthorizeOnBoard(ctx, policy.User(userID), policy.GoalTarget(goal), policy.OpWrite)
	if err != nil {
		return nil, 0, writeError(err, ErrReadOnlyRole)
	}
	return goal, boardID, nil
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
