package service

import "github.com/fitpulse/fitpulse-backend/internal/domain"

// NotificationEmitter pushes real-time events to a participant's connected
// clients. Fire-and-forget from the core's perspective: implementations must
// never fail the message write, and callers never inspect an error.
type NotificationEmitter interface {
	Emit(memberID uint64, eventType string, payload interface{})
}

// NotificationStore persists feed entries. Like the emitter, a failed insert
// is logged and swallowed, never failing the message write.
type NotificationStore interface {
	Create(n *domain.Notification) error
}

// NewMessagePayload is the emitter payload for new_message / admin_message events
type NewMessagePayload struct {
	ConversationID uint64 `json:"conversation_id"`
	MessageID      uint64 `json:"message_id"`
	SenderID       uint64 `json:"sender_id"`
	Preview        string `json:"preview"`
	IsAdminMessage bool   `json:"is_admin_message,omitempty"`
}

// ReactionPayload is the emitter payload for reaction_added events
type ReactionPayload struct {
	MessageID uint64 `json:"message_id"`
	ReactorID uint64 `json:"reactor_id"`
	Glyph     string `json:"glyph"`
}
