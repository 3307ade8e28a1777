package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/database"
	"github.com/yukikurage/goal-boards-api/internal/models"
)

var goalOrderings = map[string]string{
	"title":     "goals.title ASC, goals.id ASC",
	"-title":    "goals.title DESC, goals.id DESC",
	"created":   "goals.created_at ASC, goals.id ASC",
	"-created":  "goals.created_at DESC, goals.id DESC",
	"due_date":  "CASE WHEN goals.due_date IS NULL THEN 1 ELSE 0 END, goals.due_date ASC, goals.id ASC",
	"-due_date": "CASE WHEN goals.due_date IS NULL THEN 1 ELSE 0 END, goals.due_date DESC, goals.id DESC",
}

// GormGoalRepository is a GORM implementation of GoalRepository
type GormGoalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &GormGoalRepository{db: db}
}

func (r *GormGoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).Omit("User", "Category").Create(goal).Error
}

func (r *GormGoalRepository) FindByID(ctx context.Context, id uint64) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).First(&goal, id).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *GormGoalRepository) FindVisibleByID(ctx context.Context, id uint64) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(database.VisibleGoals).
		Where("goals.id = ?", id).
		First(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// List retrieves visible goals on boards the viewer participates in
func (r *GormGoalRepository) List(ctx context.Context, filter GoalFilter) ([]models.Goal, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Goal{}).
			Scopes(database.VisibleGoals, database.ParticipantOf(filter.ViewerID))

		if len(filter.CategoryIDs) > 0 {
			q = q.Where("goals.category_id IN ?", filter.CategoryIDs)
		}
		if len(filter.Statuses) > 0 {
			q = q.Where("goals.status IN ?", filter.Statuses)
		}
		if filter.ExcludeArchived {
			q = q.Where("goals.status <> ?", models.GoalStatusArchived)
		}
		if len(filter.Priorities) > 0 {
			q = q.Where("goals.priority IN ?", filter.Priorities)
		}
		if filter.DueDateFrom != nil {
			q = q.Where("goals.due_date >= ?", *filter.DueDateFrom)
		}
		if filter.DueDateTo != nil {
			q = q.Where("goals.due_date <= ?", *filter.DueDateTo)
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			q = q.Where("(goals.title LIKE ? OR goals.description LIKE ?)", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := goalOrderings[filter.OrderBy]
	if !ok {
		order = goalOrderings["title"]
	}

	listQuery := query().Order(order)
	if filter.Page != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Page))
	}

	var goals []models.Goal
	if err := listQuery.Preload("User").Find(&goals).Error; err != nil {
		return nil, 0, err
	}

	return goals, total, nil
}

// Update saves the mutable goal fields. Creator and category never change.
func (r *GormGoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).
		Model(goal).
		Select("title", "description", "status", "priority", "due_date").
		Updates(goal).Error
}

func (r *GormGoalRepository) Archive(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("id = ?", id).
		Update("status", models.GoalStatusArchived).Error
}
