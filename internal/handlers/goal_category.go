package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/goal-boards-api/internal/dto"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/repository"
	"github.com/yukikurage/goal-boards-api/internal/services"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// CreateCategory adds a category to a board
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateCategoryRequest struct {
		Title string `json:"title" binding:"required"`
		Board uint64 `json:"board" binding:"required"`
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), services.CreateCategoryInput{
		UserID:  userID,
		BoardID: req.Board,
		Title:   req.Title,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(*category))
}

// ListCategories returns visible categories, filtered by board and title
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	boardID, err := queryUint(c, "board")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	params := utils.GetPaginationParams(c)
	categories, total, err := h.categoryService.ListCategories(c.Request.Context(), repository.CategoryFilter{
		ViewerID: userID,
		BoardID:  boardID,
		Title:    c.Query("title"),
		OrderBy:  c.Query("ordering"),
		Page:     &params,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryListResponse(categories, params, total))
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	categoryID, ok := requireObjectID(c, "category")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), userID, categoryID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	categoryID, ok := requireObjectID(c, "category")
	if !ok {
		return
	}

	type UpdateCategoryRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), userID, categoryID, req.Title)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// DeleteCategory soft-deletes the category and archives its goals
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	categoryID, ok := requireObjectID(c, "category")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), userID, categoryID); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
