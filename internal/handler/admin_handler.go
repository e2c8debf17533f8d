package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/fitpulse/fitpulse-backend/internal/middleware"
	"github.com/fitpulse/fitpulse-backend/internal/service"
)

// AdminHandler handles the admin messaging gateway
type AdminHandler struct {
	service service.AdminMessageService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service service.AdminMessageService) *AdminHandler {
	return &AdminHandler{service: service}
}

type adminMessageRequest struct {
	ReceiverID uint64 `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// SendMessage handles POST /api/v1/admin/messages
// @Summary Send an admin message to any member
// @Tags admin
// @Router /api/v1/admin/messages [post]
func (h *AdminHandler) SendMessage(c *gin.Context) {
	adminID := middleware.GetUserID(c)

	var req adminMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := h.service.SendAdminMessage(adminID, req.ReceiverID, req.Content)
	if err != nil {
		common.FromError(c, err)
		return
	}

	middleware.CountMessageSent(string(domain.KindAdmin))
	common.Created(c, msg)
}

// ListConversations handles GET /api/v1/admin/conversations
// @Summary List the admin's conversations
// @Tags admin
// @Router /api/v1/admin/conversations [get]
func (h *AdminHandler) ListConversations(c *gin.Context) {
	adminID := middleware.GetUserID(c)

	convs, err := h.service.GetAdminConversations(adminID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, convs)
}
