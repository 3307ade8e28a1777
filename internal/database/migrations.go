package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/models"
)

// AddIndexes adds the composite indexes used by the list endpoints.
// Single-column indexes come from the model tags.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		{&models.GoalCategory{}, "goal_categories", "idx_goal_categories_board_deleted", "board_id, is_deleted"},
		{&models.Goal{}, "goals", "idx_goals_category_status", "category_id, status"},
		{&models.Goal{}, "goals", "idx_goals_due_date", "due_date"},
		{&models.GoalComment{}, "goal_comments", "idx_goal_comments_goal_created", "goal_id, created_at"},
		{&models.BoardParticipant{}, "board_participants", "idx_board_participants_user_role", "user_id, role"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
