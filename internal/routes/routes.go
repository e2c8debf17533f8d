package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fitpulse/fitpulse-backend/internal/handler"
	"github.com/fitpulse/fitpulse-backend/internal/middleware"
	"github.com/fitpulse/fitpulse-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	chatHandler *handler.ChatHandler,
	adminHandler *handler.AdminHandler,
	reactionHandler *handler.ReactionHandler,
	notificationHandler *handler.NotificationHandler,
	attachmentHandler *handler.AttachmentHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
) {
	api := router.Group("/api/v1", middleware.JWTAuth(jwtManager))

	// Conversations
	conversations := api.Group("/conversations")
	{
		conversations.POST("", chatHandler.CreateConversation)
		conversations.GET("", chatHandler.ListConversations)
		conversations.GET("/unread-count", chatHandler.UnreadBadge)
		conversations.GET("/:id/messages", chatHandler.ListMessages)
		conversations.POST("/:id/messages",
			middleware.RateLimitPerUser(redisClient, 60), chatHandler.SendMessage)
		conversations.POST("/:id/read-all", chatHandler.MarkAllRead)
	}

	// Per-message operations
	messages := api.Group("/messages")
	{
		messages.POST("/:id/delivered", chatHandler.MarkDelivered)
		messages.POST("/:id/read", chatHandler.MarkRead)
		messages.POST("/:id/failed", chatHandler.MarkFailed)
		messages.DELETE("/:id", chatHandler.DeleteMessage)
		messages.POST("/:id/reactions", reactionHandler.Toggle)
		messages.GET("/:id/reactions", reactionHandler.Summary)
	}

	// Attachments
	api.POST("/attachments",
		middleware.RateLimitPerUser(redisClient, 20), attachmentHandler.Upload)

	// Notification feed
	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.GetList)
		notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
		notifications.POST("/:id/read", notificationHandler.MarkAsRead)
		notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
	}

	// Real-time event stream
	api.GET("/ws", wsHandler.Connect)

	// Admin gateway. RequireAdmin gates on the token claim; the services
	// re-check the role against the members table inside the call.
	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.POST("/messages", adminHandler.SendMessage)
		admin.GET("/conversations", adminHandler.ListConversations)
	}
}
