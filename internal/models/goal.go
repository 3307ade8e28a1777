package models

import (
	"time"
)

type GoalStatus string

const (
	GoalStatusToDo       GoalStatus = "to_do"
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusDone       GoalStatus = "done"
	GoalStatusArchived   GoalStatus = "archived"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusToDo, GoalStatusInProgress, GoalStatusDone, GoalStatusArchived:
		return true
	}
	return false
}

type GoalPriority string

const (
	GoalPriorityLow      GoalPriority = "low"
	GoalPriorityMedium   GoalPriority = "medium"
	GoalPriorityHigh     GoalPriority = "high"
	GoalPriorityCritical GoalPriority = "critical"
)

func (p GoalPriority) Valid() bool {
	switch p {
	case GoalPriorityLow, GoalPriorityMedium, GoalPriorityHigh, GoalPriorityCritical:
		return true
	}
	return false
}

type Goal struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	UserID      uint64       `gorm:"not null;index" json:"user_id"`
	CategoryID  uint64       `gorm:"not null;index" json:"category_id"`
	Title       string       `gorm:"type:varchar(256);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Status      GoalStatus   `gorm:"type:varchar(20);not null;default:'to_do';index" json:"status"`
	Priority    GoalPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time   `gorm:"type:date" json:"due_date"`
	IsDeleted   bool         `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	User     User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category GoalCategory `gorm:"foreignKey:CategoryID" json:"-"`
}
