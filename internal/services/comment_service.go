package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/goal-boards-api/internal/events"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/policy"
	"github.com/yukikurage/goal-boards-api/internal/repository"
)

// CommentService provides business logic for goal comments.
type CommentService struct {
	store  repository.Store
	policy *policy.Engine
	events *events.Emitter
}

// NewCommentService creates a new CommentService.
func NewCommentService(store repository.Store, engine *policy.Engine, emitter *events.Emitter) *CommentService {
	return &CommentService{
		store:  store,
		policy: engine,
		events: emitter,
	}
}

// CreateCommentInput represents parameters to create a new comment.
type CreateCommentInput struct {
	UserID uint64
	GoalID uint64
	Text   string
}

// CreateComment adds a comment to a goal on a board the caller can write to.
func (s *CommentService) CreateComment(ctx context.Context, input CreateCommentInput) (*models.GoalComment, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrTextRequired
	}

	goal, err := s.store.Goals().FindByID(ctx, input.GoalID)
	if err != nil {
		return nil, lookupError(err, ErrParentGoalNotFound, "goal")
	}
	category, err := s.store.Categories().FindByID(ctx, goal.CategoryID)
	if err != nil {
		return nil, lookupError(err, ErrParentGoalNotFound, "category")
	}

	if err := s.policy.CanCreateComment(ctx, policy.User(input.UserID), goal); err != nil {
		return nil, err
	}

	comment := &models.GoalComment{
		UserID: input.UserID,
		GoalID: goal.ID,
		Text:   text,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.events.Emit(ctx, events.CommentCreated, comment.ID, category.BoardID, input.UserID)
	return comment, nil
}

// ListComments returns comments visible to the viewer, newest first.
func (s *CommentService) ListComments(ctx context.Context, filter repository.CommentFilter) ([]models.GoalComment, int64, error) {
	comments, total, err := s.store.Comments().List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

// GetComment returns a comment on a board the caller participates in.
func (s *CommentService) GetComment(ctx context.Context, userID, commentID uint64) (*models.GoalComment, error) {
	comment, err := s.store.Comments().FindVisibleByID(ctx, commentID)
	if err != nil {
		return nil, lookupError(err, ErrCommentNotFound, "comment")
	}
	if err := s.policy.Authorize(ctx, policy.User(userID), policy.CommentTarget(comment), policy.OpRead); err != nil {
		return nil, readError(err, ErrCommentNotFound)
	}
	return comment, nil
}

// UpdateComment replaces the text of the caller's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uint64, text string) (*models.GoalComment, error) {
	comment, boardID, err := s.authoredComment(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}

	if err := s.store.Comments().UpdateText(ctx, comment.ID, text); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	comment.Text = text

	s.events.Emit(ctx, events.CommentUpdated, comment.ID, boardID, userID)
	return comment, nil
}

// DeleteComment removes the caller's own comment.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, boardID, err := s.authoredComment(ctx, userID, commentID)
	if err != nil {
		return err
	}

	if err := s.store.Comments().Delete(ctx, comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.events.Emit(ctx, events.CommentDeleted, comment.ID, boardID, userID)
	return nil
}

// authoredComment returns the caller's comment and the id of its board.
func (s *CommentService) authoredComment(ctx context.Context, userID, commentID uint64) (*models.GoalComment, uint64, error) {
	comment, err := s.GetComment(ctx, userID, commentID)
	if err != nil {
		return nil, 0, err
	}
	boardID, err := s.policy.AuthorizeOnBoard(ctx, policy.User(userID), policy.CommentTarget(comment), policy.OpWrite)
	if err != nil {
		return nil, 0, writeError(err, ErrNotCommentAuthor)
	}
	return comment, boardID, nil
}
