package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/middleware"
	"github.com/fitpulse/fitpulse-backend/internal/service"
)

// NotificationHandler handles notification feed requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	memberID := middleware.GetUserID(c)

	summary, err := h.service.GetUnreadCount(memberID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to count notifications", err)
		return
	}
	common.Success(c, summary)
}

// GetList handles GET /api/v1/notifications
func (h *NotificationHandler) GetList(c *gin.Context) {
	memberID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.GetList(memberID, page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}
	common.Success(c, result)
}

// MarkAsRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	memberID := middleware.GetUserID(c)
	id, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid notification ID", nil)
		return
	}

	if err := h.service.MarkAsRead(id, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Notification not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to mark notification", err)
		return
	}
	common.Success(c, gin.H{"read": true})
}

// MarkAllAsRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	memberID := middleware.GetUserID(c)

	if err := h.service.MarkAllAsRead(memberID); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to mark notifications", err)
		return
	}
	common.Success(c, gin.H{"read": true})
}
