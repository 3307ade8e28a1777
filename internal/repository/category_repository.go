package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/database"
	"github.com/yukikurage/goal-boards-api/internal/models"
)

var categoryOrderings = map[string]string{
	"title":    "goal_categories.title ASC, goal_categories.id ASC",
	"-title":   "goal_categories.title DESC, goal_categories.id DESC",
	"created":  "goal_categories.created_at ASC, goal_categories.id ASC",
	"-created": "goal_categories.created_at DESC, goal_categories.id DESC",
}

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(ctx context.Context, category *models.GoalCategory) error {
	return r.db.WithContext(ctx).Omit("User", "Board").Create(category).Error
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uint64) (*models.GoalCategory, error) {
	var category models.GoalCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) FindVisibleByID(ctx context.Context, id uint64) (*models.GoalCategory, error) {
	var category models.GoalCategory
	if err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(database.VisibleCategories).
		Where("goal_categories.id = ?", id).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List retrieves visible categories on boards the viewer participates in
func (r *GormCategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]models.GoalCategory, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.GoalCategory{}).
			Scopes(database.VisibleCategories, database.ParticipantOf(filter.ViewerID))
		if filter.BoardID != nil {
			q = q.Where("goal_categories.board_id = ?", *filter.BoardID)
		}
		if filter.Title != "" {
			q = q.Where("goal_categories.title = ?", filter.Title)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := categoryOrderings[filter.OrderBy]
	if !ok {
		order = categoryOrderings["title"]
	}

	listQuery := query().Order(order)
	if filter.Page != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Page))
	}

	var categories []models.GoalCategory
	if err := listQuery.Preload("User").Find(&categories).Error; err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

func (r *GormCategoryRepository) UpdateTitle(ctx context.Context, id uint64, title string) error {
	return r.db.WithContext(ctx).
		Model(&models.GoalCategory{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// SoftDelete flags the category and archives its goals
func (r *GormCategoryRepository) SoftDelete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GoalCategory{}).
			Where("id = ?", id).
			Update("is_deleted", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.Goal{}).
			Where("category_id = ?", id).
			Update("status", models.GoalStatusArchived).Error
	})
}
