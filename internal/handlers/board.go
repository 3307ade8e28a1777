package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/goal-boards-api/internal/dto"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/services"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// CreateBoard creates a board owned by the current user
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateBoardRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	board, err := h.boardService.CreateBoard(c.Request.Context(), services.CreateBoardInput{
		Title:   req.Title,
		OwnerID: userID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBoardDTO(*board))
}

// ListBoards returns the live boards the current user participates in
func (h *BoardHandler) ListBoards(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	boards, total, err := h.boardService.ListBoards(c.Request.Context(), userID, params)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardListResponse(boards, params, total))
}

// GetBoard returns a board with its participants
func (h *BoardHandler) GetBoard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	boardID, ok := requireObjectID(c, "board")
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(c.Request.Context(), userID, boardID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*board))
}

// UpdateBoard renames the board and, when participants are sent, replaces
// the participant list (the owner is kept)
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	boardID, ok := requireObjectID(c, "board")
	if !ok {
		return
	}

	type ParticipantRequest struct {
		Username string      `json:"username"`
		Role     models.Role `json:"role"`
	}
	type UpdateBoardRequest struct {
		Title        *string               `json:"title"`
		Participants *[]ParticipantRequest `json:"participants"`
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateBoardInput{Title: req.Title}
	if req.Participants != nil {
		participants := make([]services.ParticipantInput, len(*req.Participants))
		for i, p := range *req.Participants {
			participants[i] = services.ParticipantInput{Username: p.Username, Role: p.Role}
		}
		input.Participants = &participants
	}

	board, err := h.boardService.UpdateBoard(c.Request.Context(), userID, boardID, input)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*board))
}

// DeleteBoard soft-deletes the board with its categories and goals
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	boardID, ok := requireObjectID(c, "board")
	if !ok {
		return
	}

	if err := h.boardService.DeleteBoard(c.Request.Context(), userID, boardID); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Board deleted successfully",
	})
}
