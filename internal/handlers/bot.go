package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/goal-boards-api/internal/dto"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
	"github.com/yukikurage/goal-boards-api/internal/services"
)

type BotHandler struct {
	botUserService *services.BotUserService
}

func NewBotHandler(botUserService *services.BotUserService) *BotHandler {
	return &BotHandler{
		botUserService: botUserService,
	}
}

// Verify links the chat that was given verification_code to the current user
func (h *BotHandler) Verify(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type VerifyRequest struct {
		VerificationCode string `json:"verification_code" binding:"required"`
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	botUser, err := h.botUserService.Verify(c.Request.Context(), userID, req.VerificationCode)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBotUserDTO(*botUser))
}
