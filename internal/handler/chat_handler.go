package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/fitpulse/fitpulse-backend/internal/middleware"
	"github.com/fitpulse/fitpulse-backend/internal/service"
)

// ChatHandler handles direct-messaging requests
type ChatHandler struct {
	service service.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type createConversationRequest struct {
	PeerID uint64 `json:"peer_id" binding:"required"`
}

// CreateConversation handles POST /api/v1/conversations
// @Summary Get or create the conversation with a peer
// @Tags conversations
// @Router /api/v1/conversations [post]
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	conv, err := h.service.GetOrCreateConversation(userID, req.PeerID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, conv.ToResponse(userID, "", ""))
}

// ListConversations handles GET /api/v1/conversations
// @Summary List the caller's conversations
// @Tags conversations
// @Router /api/v1/conversations [get]
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)

	convs, err := h.service.ListConversations(userID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, convs)
}

// ListMessages handles GET /api/v1/conversations/:id/messages
// @Summary Paginated conversation history
// @Tags messages
// @Router /api/v1/conversations/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	conversationID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid conversation ID", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, meta, err := h.service.ListMessages(conversationID, userID, page, limit)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.SuccessWithMeta(c, messages, meta)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
// @Summary Send a message on the normal path
// @Tags messages
// @Router /api/v1/conversations/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	conversationID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid conversation ID", nil)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := h.service.SendMessage(userID, conversationID, &req)
	if err != nil {
		common.FromError(c, err)
		return
	}

	middleware.CountMessageSent(string(msg.Kind))
	common.Created(c, msg)
}

// MarkDelivered handles POST /api/v1/messages/:id/delivered
// @Summary Acknowledge reception of a message
// @Tags messages
// @Router /api/v1/messages/{id}/delivered [post]
func (h *ChatHandler) MarkDelivered(c *gin.Context) {
	userID := middleware.GetUserID(c)
	messageID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", nil)
		return
	}

	if err := h.service.MarkDelivered(messageID, userID); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"message_id": messageID, "status": domain.StatusDelivered})
}

// MarkRead handles POST /api/v1/messages/:id/read
// @Summary Mark a message as read
// @Tags messages
// @Router /api/v1/messages/{id}/read [post]
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	messageID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", nil)
		return
	}

	if err := h.service.MarkRead(messageID, userID); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"message_id": messageID, "status": domain.StatusRead})
}

// MarkFailed handles POST /api/v1/messages/:id/failed
// @Summary Record a transport failure for an own sent message
// @Tags messages
// @Router /api/v1/messages/{id}/failed [post]
func (h *ChatHandler) MarkFailed(c *gin.Context) {
	userID := middleware.GetUserID(c)
	messageID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", nil)
		return
	}

	if err := h.service.MarkFailed(messageID, userID); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"message_id": messageID, "status": domain.StatusFailed})
}

// MarkAllRead handles POST /api/v1/conversations/:id/read-all
// @Summary Mark every incoming message in a conversation as read
// @Tags messages
// @Router /api/v1/conversations/{id}/read-all [post]
func (h *ChatHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	conversationID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid conversation ID", nil)
		return
	}

	n, err := h.service.MarkAllRead(conversationID, userID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"updated": n})
}

// DeleteMessage handles DELETE /api/v1/messages/:id
// @Summary Soft-delete an own message from the sender's view
// @Tags messages
// @Router /api/v1/messages/{id} [delete]
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	messageID, err := parseID(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", nil)
		return
	}

	if err := h.service.DeleteMessage(messageID, userID); err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"deleted": true})
}

// UnreadBadge handles GET /api/v1/conversations/unread-count
// @Summary Total unread messages across all conversations
// @Tags conversations
// @Router /api/v1/conversations/unread-count [get]
func (h *ChatHandler) UnreadBadge(c *gin.Context) {
	userID := middleware.GetUserID(c)

	count, err := h.service.UnreadBadge(userID)
	if err != nil {
		common.FromError(c, err)
		return
	}
	common.Success(c, gin.H{"total_unread": count})
}

// parseID parses a uint64 path parameter
func parseID(c *gin.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
