package domain

import (
	"fmt"
	"time"
)

// Conversation is the single thread between an unordered pair of participants.
// PairKey is the canonical "min:max" key; its unique index guarantees at most
// one conversation per pair even under concurrent creation.
//
// Unread1/Unread2 are denormalized unread counters, one per participant slot.
// Every message insert and delivery transition mutates them in the same
// transaction as the message write, so they never drift from the message set.
type Conversation struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PairKey          string    `gorm:"column:pair_key;size:50;uniqueIndex" json:"-"`
	Participant1ID   uint64    `gorm:"column:participant1_id;index" json:"participant1_id"`
	Participant1Kind Role      `gorm:"column:participant1_kind;size:20" json:"participant1_kind"`
	Participant2ID   uint64    `gorm:"column:participant2_id;index" json:"participant2_id"`
	Participant2Kind Role      `gorm:"column:participant2_kind;size:20" json:"participant2_kind"`
	LastMessageID    *uint64   `gorm:"column:last_message_id" json:"last_message_id,omitempty"`
	LastMessageAt    time.Time `gorm:"column:last_message_at;index" json:"last_message_at"`
	Unread1          int64     `gorm:"column:unread1;default:0" json:"unread1"`
	Unread2          int64     `gorm:"column:unread2;default:0" json:"unread2"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name
func (Conversation) TableName() string {
	return "conversations"
}

// PairKeyFor builds the canonical unordered key for two participant ids
func PairKeyFor(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// SlotOf returns the participant slot (1 or 2) of userID, or 0 if not a participant
func (c *Conversation) SlotOf(userID uint64) int {
	switch userID {
	case c.Participant1ID:
		return 1
	case c.Participant2ID:
		return 2
	default:
		return 0
	}
}

// HasParticipant reports whether userID is one of the two participants
func (c *Conversation) HasParticipant(userID uint64) bool {
	return c.SlotOf(userID) != 0
}

// Peer returns the other participant's id and kind relative to userID
func (c *Conversation) Peer(userID uint64) (uint64, Role) {
	if userID == c.Participant1ID {
		return c.Participant2ID, c.Participant2Kind
	}
	return c.Participant1ID, c.Participant1Kind
}

// UnreadFor returns the unread counter of userID's slot
func (c *Conversation) UnreadFor(userID uint64) int64 {
	switch c.SlotOf(userID) {
	case 1:
		return c.Unread1
	case 2:
		return c.Unread2
	default:
		return 0
	}
}

// UnreadColumn returns the counter column name of userID's slot
func (c *Conversation) UnreadColumn(userID uint64) string {
	if c.SlotOf(userID) == 1 {
		return "unread1"
	}
	return "unread2"
}

// ConversationResponse is a conversation row annotated for one participant's list view
type ConversationResponse struct {
	ID            uint64 `json:"id"`
	PeerID        uint64 `json:"peer_id"`
	PeerKind      Role   `json:"peer_kind"`
	PeerNickname  string `json:"peer_nickname,omitempty"`
	LastMessage   string `json:"last_message,omitempty"`
	LastMessageAt string `json:"last_message_at"`
	UnreadCount   int64  `json:"unread_count"`
}

// ToResponse projects the conversation for one participant
func (c *Conversation) ToResponse(viewerID uint64, lastContent, peerNickname string) *ConversationResponse {
	peerID, peerKind := c.Peer(viewerID)
	return &ConversationResponse{
		ID:            c.ID,
		PeerID:        peerID,
		PeerKind:      peerKind,
		PeerNickname:  peerNickname,
		LastMessage:   lastContent,
		LastMessageAt: c.LastMessageAt.Format(time.RFC3339),
		UnreadCount:   c.UnreadFor(viewerID),
	}
}
