package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/database"
	"github.com/yukikurage/goal-boards-api/internal/models"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *models.GoalComment) error {
	return r.db.WithContext(ctx).Omit("User", "Goal").Create(comment).Error
}

func (r *GormCommentRepository) FindVisibleByID(ctx context.Context, id uint64) (*models.GoalComment, error) {
	var comment models.GoalComment
	if err := r.db.WithContext(ctx).
		Joins("JOIN goals ON goals.id = goal_comments.goal_id").
		Preload("User").
		Scopes(database.VisibleGoals).
		Where("goal_comments.id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// List returns comments on visible goals of the viewer's boards, newest first
func (r *GormCommentRepository) List(ctx context.Context, filter CommentFilter) ([]models.GoalComment, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.GoalComment{}).
			Joins("JOIN goals ON goals.id = goal_comments.goal_id").
			Scopes(database.VisibleGoals, database.ParticipantOf(filter.ViewerID))
		if filter.GoalID != nil {
			q = q.Where("goal_comments.goal_id = ?", *filter.GoalID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query().Order("goal_comments.created_at DESC, goal_comments.id DESC")
	if filter.Page != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Page))
	}

	var comments []models.GoalComment
	if err := listQuery.Preload("User").Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

func (r *GormCommentRepository) UpdateText(ctx context.Context, id uint64, text string) error {
	return r.db.WithContext(ctx).
		Model(&models.GoalComment{}).
		Where("id = ?", id).
		Update("text", text).Error
}

func (r *GormCommentRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.GoalComment{}, id).Error
}
