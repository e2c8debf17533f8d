package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/middleware"
	"github.com/fitpulse/fitpulse-backend/internal/service"
)

// ReactionHandler handles message reactions
type ReactionHandler struct {
	service service.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(service service.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

type toggleReactionRequest struct {
	Glyph string `json:"glyph" binding:"required"`
}

// Toggle handles POST /api/v1/messages/:id/reactions
// @Summary Toggle a reaction glyph on a message
// @Tags reactions
// @Router /api/v1/messages/{id}/reactions [post]
func (h *ReactionHandler) Toggle(c *gin.Context) {
	userID := middleware.GetUserID(c)
	messageID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", nil)
		return
	}

	var req toggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	action, err := h.service.Toggle(messageID, userID, req.Glyph)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"action": action})
}

// Summary handles GET /api/v1/messages/:id/reactions
// @Summary Reaction summary for a message
// @Tags reactions
// @Router /api/v1/messages/{id}/reactions [get]
func (h *ReactionHandler) Summary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	messageID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", nil)
		return
	}

	items, err := h.service.Summary(messageID, userID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, items)
}
