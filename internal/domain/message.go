package domain

import "time"

// DeliveryStatus is the per-message delivery state
type DeliveryStatus string

// Delivery states. Transitions only move forward:
// sent → delivered → read, with failed reachable from sent only.
const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
	StatusFailed    DeliveryStatus = "failed"
)

var statusRank = map[DeliveryStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// CanTransition reports whether moving from one delivery state to another is
// allowed. A request to an equal-or-earlier state is a no-op for the caller,
// not an error; this only answers whether the write may happen.
func (s DeliveryStatus) CanTransition(to DeliveryStatus) bool {
	if s == StatusFailed {
		return false // terminal
	}
	if to == StatusFailed {
		return s == StatusSent
	}
	fromRank, ok := statusRank[s]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// MessageKind classifies message content
type MessageKind string

// Message kinds
const (
	KindText   MessageKind = "text"
	KindImage  MessageKind = "image"
	KindFile   MessageKind = "file"
	KindSystem MessageKind = "system"
	KindAdmin  MessageKind = "admin"
)

// Valid reports whether the kind is known
func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile, KindSystem, KindAdmin:
		return true
	}
	return false
}

// Attachment holds optional attachment metadata carried by image/file messages
type Attachment struct {
	URL          string `gorm:"column:attachment_url;size:500" json:"url,omitempty"`
	Name         string `gorm:"column:attachment_name;size:255" json:"name,omitempty"`
	Size         int64  `gorm:"column:attachment_size" json:"size,omitempty"`
	MimeType     string `gorm:"column:attachment_mime;size:100" json:"mime_type,omitempty"`
	ThumbnailURL string `gorm:"column:attachment_thumb_url;size:500" json:"thumbnail_url,omitempty"`
}

// Message is one entry in a conversation's append-only ledger.
// Content is immutable after creation; only the delivery sub-state
// (DeliveryStatus, DeliveredAt, IsRead, ReadAt) and the sender-side
// soft-delete flag ever change.
type Message struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ConversationID  uint64         `gorm:"column:conversation_id;index:idx_messages_history,priority:1;not null" json:"conversation_id"`
	SenderID        uint64         `gorm:"column:sender_id;index" json:"sender_id"`
	ReceiverID      uint64         `gorm:"column:receiver_id;index" json:"receiver_id"`
	Content         string         `gorm:"column:content;type:text" json:"content"`
	Kind            MessageKind    `gorm:"column:kind;size:20;default:text" json:"kind"`
	IsAdminMessage  bool           `gorm:"column:is_admin_message;default:false" json:"is_admin_message"`
	Attachment      Attachment     `gorm:"embedded" json:"attachment,omitempty"`
	ReplyToID       *uint64        `gorm:"column:reply_to_id" json:"reply_to_id,omitempty"`
	DeliveryStatus  DeliveryStatus `gorm:"column:delivery_status;size:20;default:sent;index" json:"delivery_status"`
	DeliveredAt     *time.Time     `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	IsRead          bool           `gorm:"column:is_read;default:false" json:"is_read"`
	ReadAt          *time.Time     `gorm:"column:read_at" json:"read_at,omitempty"`
	DeletedBySender bool           `gorm:"column:deleted_by_sender;default:false" json:"-"`
	CreatedAt       time.Time      `gorm:"column:created_at;index:idx_messages_history,priority:2" json:"created_at"`

	Reactions []Reaction `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name
func (Message) TableName() string {
	return "messages"
}

// HasAttachment reports whether attachment metadata is present
func (m *Message) HasAttachment() bool {
	return m.Attachment.URL != ""
}

// SendMessageRequest is the normal-path send payload
type SendMessageRequest struct {
	Content    string      `json:"content"`
	Kind       MessageKind `json:"kind"`
	Attachment *Attachment `json:"attachment,omitempty"`
	ReplyToID  *uint64     `json:"reply_to_id,omitempty"`
}

// MessageResponse is a message in API responses
type MessageResponse struct {
	ID             uint64         `json:"id"`
	ConversationID uint64         `json:"conversation_id"`
	SenderID       uint64         `json:"sender_id"`
	ReceiverID     uint64         `json:"receiver_id"`
	Content        string         `json:"content"`
	Kind           MessageKind    `json:"kind"`
	IsAdminMessage bool           `json:"is_admin_message,omitempty"`
	Attachment     *Attachment    `json:"attachment,omitempty"`
	ReplyToID      *uint64        `json:"reply_to_id,omitempty"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
	DeliveredAt    string         `json:"delivered_at,omitempty"`
	IsRead         bool           `json:"is_read"`
	ReadAt         string         `json:"read_at,omitempty"`
	CreatedAt      string         `json:"created_at"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	resp := &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		Kind:           m.Kind,
		IsAdminMessage: m.IsAdminMessage,
		ReplyToID:      m.ReplyToID,
		DeliveryStatus: m.DeliveryStatus,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.HasAttachment() {
		a := m.Attachment
		resp.Attachment = &a
	}
	if m.DeliveredAt != nil {
		resp.DeliveredAt = m.DeliveredAt.Format(time.RFC3339)
	}
	if m.ReadAt != nil {
		resp.ReadAt = m.ReadAt.Format(time.RFC3339)
	}
	return resp
}
