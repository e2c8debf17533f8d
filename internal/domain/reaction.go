package domain

import "time"

// Reaction is one participant's glyph on one message. The
// (message_id, reactor_id, glyph) triple is unique: a reactor may hold
// several distinct glyphs on a message but never the same glyph twice.
type Reaction struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MessageID uint64    `gorm:"column:message_id;index:idx_reactions_triple,unique,priority:1;not null" json:"message_id"`
	ReactorID uint64    `gorm:"column:reactor_id;index:idx_reactions_triple,unique,priority:2" json:"reactor_id"`
	Glyph     string    `gorm:"column:glyph;size:32;index:idx_reactions_triple,unique,priority:3" json:"glyph"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the table name
func (Reaction) TableName() string {
	return "reactions"
}

// ToggleAction is the outcome of a reaction toggle
type ToggleAction string

// Toggle outcomes
const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// ReactionSummaryItem is one glyph's aggregate on a message
type ReactionSummaryItem struct {
	Glyph      string   `json:"glyph"`
	Count      int      `json:"count"`
	ReactorIDs []uint64 `json:"reactor_ids"`
}
