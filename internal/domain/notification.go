package domain

import "time"

// Notification event types
const (
	NotificationNewMessage    = "new_message"
	NotificationReactionAdded = "reaction_added"
	NotificationAdminMessage  = "admin_message"
)

// Notification is a persisted entry in a member's notification feed
type Notification struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MemberID       uint64    `gorm:"column:member_id;index" json:"member_id"`
	Type           string    `gorm:"column:type;size:30" json:"type"`
	Title          string    `gorm:"column:title;size:255" json:"title"`
	Content        string    `gorm:"column:content;type:text" json:"content"`
	SenderID       uint64    `gorm:"column:sender_id" json:"sender_id,omitempty"`
	ConversationID uint64    `gorm:"column:conversation_id" json:"conversation_id,omitempty"`
	MessageID      uint64    `gorm:"column:message_id" json:"message_id,omitempty"`
	IsRead         bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the table name
func (Notification) TableName() string {
	return "notifications"
}

// NotificationSummaryResponse represents unread count response
type NotificationSummaryResponse struct {
	TotalUnread int64 `json:"total_unread"`
}

// NotificationListResponse represents notification list response
type NotificationListResponse struct {
	Items       []NotificationItem `json:"items"`
	Total       int64              `json:"total"`
	UnreadCount int64              `json:"unread_count"`
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
}

// NotificationItem represents a single notification in list
type NotificationItem struct {
	ID             uint64 `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	SenderID       uint64 `json:"sender_id,omitempty"`
	ConversationID uint64 `json:"conversation_id,omitempty"`
	MessageID      uint64 `json:"message_id,omitempty"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}
