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

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateCommentRequest struct {
		Goal uint64 `json:"goal" binding:"required"`
		Text string `json:"text" binding:"required"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), services.CreateCommentInput{
		UserID: userID,
		GoalID: req.Goal,
		Text:   req.Text,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

// ListComments returns comments newest first, optionally for one goal
func (h *CommentHandler) ListComments(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	goalID, err := queryUint(c, "goal")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	params := utils.GetPaginationParams(c)
	comments, total, err := h.commentService.ListComments(c.Request.Context(), repository.CommentFilter{
		ViewerID: userID,
		GoalID:   goalID,
		Page:     &params,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentListResponse(comments, params, total))
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := requireObjectID(c, "comment")
	if !ok {
		return
	}

	comment, err := h.commentService.GetComment(c.Request.Context(), userID, commentID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}

// UpdateComment edits the text of the current user's comment
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := requireObjectID(c, "comment")
	if !ok {
		return
	}

	type UpdateCommentRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), userID, commentID, req.Text)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCommentDTO(*comment))
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	commentID, ok := requireObjectID(c, "comment")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}
