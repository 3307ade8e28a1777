package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/goal-boards-api/internal/dto"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/services"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

type GoalHandler struct {
	goalService *services.GoalService
	drafter     services.GoalDrafter
}

func NewGoalHandler(goalService *services.GoalService, drafter services.GoalDrafter) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		drafter:     drafter,
	}
}

// ListGoals returns visible goals on the current user's boards
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	categoryIDs, err := queryUintList(c, "category")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	dueFrom, err := queryDate(c, "due_date_gte")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	dueTo, err := queryDate(c, "due_date_lte")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	var statuses []models.GoalStatus
	for _, s := range queryList(c, "status") {
		status := models.GoalStatus(s)
		if !status.Valid() {
			apierrors.BadRequest(c, "invalid status: "+s)
			return
		}
		statuses = append(statuses, status)
	}
	var priorities []models.GoalPriority
	for _, p := range queryList(c, "priority") {
		priority := models.GoalPriority(p)
		if !priority.Valid() {
			apierrors.BadRequest(c, "invalid priority: "+p)
			return
		}
		priorities = append(priorities, priority)
	}

	params := utils.GetPaginationParams(c)
	goals, total, err := h.goalService.ListGoals(c.Request.Context(), repository.GoalFilter{
		ViewerID:    userID,
		CategoryIDs: categoryIDs,
		Statuses:    statuses,
		Priorities:  priorities,
		DueDateFrom: dueFrom,
		DueDateTo:   dueTo,
		Search:      c.Query("search"),
		OrderBy:     c.Query("ordering"),
		Page:        &params,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalListResponse(goals, params, total))
}

func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := requireObjectID(c, "goal")
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), userID, goalID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTO(*goal))
}

// CreateGoal creates a goal in a category
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateGoalRequest struct {
		Category    uint64              `json:"category" binding:"required"`
		Title       string              `json:"title" binding:"required"`
		Description *string             `json:"description"`
		Status      models.GoalStatus   `json:"status"`
		Priority    models.GoalPriority `json:"priority"`
		DueDate     *string             `json:"due_date"`
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateGoalInput{
		UserID:      userID,
		CategoryID:  req.Category,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Source:      services.SourceAPI,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date")
			return
		}
		input.DueDate = dueDate
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGoalDTO(*goal))
}

// UpdateGoal applies a partial update. Sending null clears description and
// due_date.
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := requireObjectID(c, "goal")
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateGoalInput
	if title, ok := rawReq["title"]; ok {
		titleStr, ok := title.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid title")
			return
		}
		input.Title = &titleStr
	}
	if description, ok := rawReq["description"]; ok {
		switch v := description.(type) {
		case nil:
			input.ClearDescription = true
		case string:
			input.Description = &v
		default:
			apierrors.BadRequest(c, "Invalid description")
			return
		}
	}
	if status, ok := rawReq["status"]; ok {
		statusStr, ok := status.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		s := models.GoalStatus(statusStr)
		input.Status = &s
	}
	if priority, ok := rawReq["priority"]; ok {
		priorityStr, ok := priority.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		p := models.GoalPriority(priorityStr)
		input.Priority = &p
	}
	if dueDate, ok := rawReq["due_date"]; ok {
		switch v := dueDate.(type) {
		case nil:
			input.ClearDueDate = true
		case string:
			parsed, err := parseDate(v)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			input.DueDate = parsed
		default:
			apierrors.BadRequest(c, "Invalid due_date")
			return
		}
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), userID, goalID, input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalDTO(*goal))
}

// DeleteGoal archives the goal; the row is kept
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := requireObjectID(c, "goal")
	if !ok {
		return
	}

	if err := h.goalService.ArchiveGoal(c.Request.Context(), userID, goalID); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Goal archived successfully",
	})
}

// GenerateGoals drafts goals for a category from free text using AI.
// Nothing is stored.
func (h *GoalHandler) GenerateGoals(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type GenerateGoalsRequest struct {
		Text     string `json:"text" binding:"required"`
		Category uint64 `json:"category" binding:"required"`
	}

	var req GenerateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.goalService.CategoryForNewGoal(c.Request.Context(), userID, req.Category)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	if h.drafter == nil {
		apierrors.RespondWithServiceError(c, services.ErrAIUnavailable)
		return
	}

	drafts, err := h.drafter.DraftGoals(c.Request.Context(), category.Title, req.Text)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GoalDraftListResponse{Goals: drafts})
}
