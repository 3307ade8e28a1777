package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
)

// CategoryService provides business logic for goal categories.
type CategoryService struct {
	store  repository.Store
	policy *policy.Engine
	events *events.Emitter
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store repository.Store, engine *policy.Engine, emitter *events.Emitter) *CategoryService {
	return &CategoryService{
		store:  store,
		policy: engine,
		events: emitter,
	}
}

// CreateCategoryInput represents parameters to create a new category.
type CreateCategoryInput struct {
	UserID  uint64
	BoardID uint64
	Title   string
}

// CreateCategory creates a category on a board the caller can write to.
func (s *CategoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.GoalCategory, error) {
	title, err := normalizeTitle(input.Title, constants.MaxCategoryTitleLength)
	if err != nil {
		return nil, err
	}

	board, err := s.store.Boards().FindByID(ctx, input.BoardID)
	if err != nil {
		return nil, lookupError(err, ErrParentBoardNotFound, "board")
	}

	if err := s.policy.CanCreateCategory(ctx, policy.User(input.UserID), board); err != nil {
		return nil, err
	}

	category := &models.GoalCategory{
		UserID:  input.UserID,
		BoardID: board.ID,
		Title:   title,
	}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.events.Emit(ctx, events.CategoryCreated, category.ID, board.ID, input.UserID)
	return category, nil
}

// ListCategories returns visible categories on the viewer's boards.
func (s *CategoryService) ListCategories(ctx context.Context, filter repository.CategoryFilter) ([]models.GoalCategory, int64, error) {
	categories, total, err := s.store.Categories().List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}

// GetCategory returns a visible category the caller can read.
func (s *CategoryService) GetCategory(ctx context.Context, userID, categoryID uint64) (*models.GoalCategory, error) {
	category, err := s.store.Categories().FindVisibleByID(ctx, categoryID)
	if err != nil {
		return nil, lookupError(err, ErrCategoryNotFound, "category")
	}
	if err := s.policy.Authorize(ctx, policy.User(userID), policy.CategoryTarget(category), policy.OpRead); err != nil {
		return nil, readError(err, ErrCategoryNotFound)
	}
	return category, nil
}

// UpdateCategory renames a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, categoryID uint64, title string) (*models.GoalCategory, error) {
	category, err := s.writableCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	title, err = normalizeTitle(title, constants.MaxCategoryTitleLength)
	if err != nil {
		return nil, err
	}

	if err := s.store.Categories().UpdateTitle(ctx, category.ID, title); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	category.Title = title

	s.events.Emit(ctx, events.CategoryUpdated, category.ID, category.BoardID, userID)
	return category, nil
}

// DeleteCategory soft-deletes a category and archives its goals.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID uint64) error {
	category, err := s.writableCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	if err := s.store.Categories().SoftDelete(ctx, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.events.Emit(ctx, events.CategoryDeleted, category.ID, category.BoardID, userID)
	return nil
}

func (s *CategoryService) writableCategory(ctx context.Context, userID, categoryID uint64) (*models.GoalCategory, error) {
	category, err := s.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(ctx, policy.User(userID), policy.CategoryTarget(category), policy.OpWrite); err != nil {
		return nil, writeError(err, ErrReadOnlyRole)
	}
	return category, nil
}
