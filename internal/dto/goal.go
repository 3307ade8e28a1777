package dto

import (
	"time"

	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/services"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

// CategoryDTO represents a goal category in API responses
type CategoryDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	BoardID   uint64    `json:"board_id"`
	UserID    uint64    `json:"user_id"`
	User      *UserDTO  `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GoalDTO represents a goal in API responses
type GoalDTO struct {
	ID          uint64              `json:"id"`
	CategoryID  uint64              `json:"category_id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      models.GoalStatus   `json:"status"`
	Priority    models.GoalPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	UserID      uint64              `json:"user_id"`
	User        *UserDTO            `json:"user,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CommentDTO represents a goal comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	GoalID    uint64    `json:"goal_id"`
	Text      string    `json:"text"`
	UserID    uint64    `json:"user_id"`
	User      *UserDTO  `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryListResponse struct {
	Categories []CategoryDTO            `json:"categories"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

type GoalListResponse struct {
	Goals      []GoalDTO                `json:"goals"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

type CommentListResponse struct {
	Comments   []CommentDTO             `json:"comments"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// GoalDraftListResponse holds AI suggestions. Drafts have no id because
// they are not stored.
type GoalDraftListResponse struct {
	Goals []services.GoalDraft `json:"goals"`
}

// BotUserDTO represents a verified chat link
type BotUserDTO struct {
	ID     uint64   `json:"id"`
	ChatID int64    `json:"chat_id"`
	User   *UserDTO `json:"user,omitempty"`
}

func ToCategoryDTO(category models.GoalCategory) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID,
		Title:     category.Title,
		BoardID:   category.BoardID,
		UserID:    category.UserID,
		User:      userRef(category.User),
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func ToGoalDTO(goal models.Goal) GoalDTO {
	return GoalDTO{
		ID:          goal.ID,
		CategoryID:  goal.CategoryID,
		Title:       goal.Title,
		Description: goal.Description,
		Status:      goal.Status,
		Priority:    goal.Priority,
		DueDate:     goal.DueDate,
		UserID:      goal.UserID,
		User:        userRef(goal.User),
		CreatedAt:   goal.CreatedAt,
		UpdatedAt:   goal.UpdatedAt,
	}
}

func ToCommentDTO(comment models.GoalComment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		GoalID:    comment.GoalID,
		Text:      comment.Text,
		UserID:    comment.UserID,
		User:      userRef(comment.User),
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func ToBotUserDTO(botUser models.BotUser) BotUserDTO {
	dto := BotUserDTO{
		ID:     botUser.ID,
		ChatID: botUser.ChatID,
	}
	if botUser.User != nil {
		dto.User = userRef(*botUser.User)
	}
	return dto
}

func ToCategoryListResponse(categories []models.GoalCategory, params utils.PaginationParams, total int64) CategoryListResponse {
	items := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		items[i] = ToCategoryDTO(c)
	}
	return CategoryListResponse{Categories: items, Pagination: utils.NewPaginationResponse(params, total)}
}

func ToGoalListResponse(goals []models.Goal, params utils.PaginationParams, total int64) GoalListResponse {
	items := make([]GoalDTO, len(goals))
	for i, g := range goals {
		items[i] = ToGoalDTO(g)
	}
	return GoalListResponse{Goals: items, Pagination: utils.NewPaginationResponse(params, total)}
}

func ToCommentListResponse(comments []models.GoalComment, params utils.PaginationParams, total int64) CommentListResponse {
	items := make([]CommentDTO, len(comments))
	for i, c := range comments {
		items[i] = ToCommentDTO(c)
	}
	return CommentListResponse{Comments: items, Pagination: utils.NewPaginationResponse(params, total)}
}
